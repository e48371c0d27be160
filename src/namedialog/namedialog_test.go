package namedialog

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screen-capper/src/session"
)

func typeKeys(m model, keys ...tea.KeyMsg) (model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModelEditing(t *testing.T) {
	m, cmd := typeKeys(newModel(""),
		runes("dem"),
		runes("x"),
		tea.KeyMsg{Type: tea.KeyBackspace},
		runes("o"),
		tea.KeyMsg{Type: tea.KeySpace},
		runes("1"),
	)
	assert.Nil(t, cmd)
	assert.Equal(t, "demo 1", m.Value())
	assert.Contains(t, m.View(), "demo 1")

	m, _ = typeKeys(m, tea.KeyMsg{Type: tea.KeyCtrlU})
	assert.Equal(t, "", m.Value())
}

func TestModelSubmitAndCancel(t *testing.T) {
	m, cmd := typeKeys(newModel(""), runes("doc"), tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.submitted)
	assert.Equal(t, "doc", m.Value())
	assert.Empty(t, m.View())

	m, cmd = typeKeys(newModel(""), runes("doc"), tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.True(t, m.cancelled)
}

func TestModelShowsHint(t *testing.T) {
	m := newModel(`"demo space" is not allowed. Try "demo-space".`)
	assert.Contains(t, m.View(), "demo-space")
}

func TestModelCharLimit(t *testing.T) {
	m, _ := typeKeys(newModel(""), runes(strings.Repeat("a", charLimit+10)))
	assert.Len(t, m.Value(), charLimit)
}

type countingNamer struct{ calls int }

func (c *countingNamer) PromptSessionName(context.Context, string) (string, error) {
	c.calls++
	return "typed", nil
}

func TestPresetUsedOnce(t *testing.T) {
	next := &countingNamer{}
	p := &Preset{Name: "doc", Next: next}

	name, err := p.PromptSessionName(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "doc", name)
	assert.Equal(t, 0, next.calls)

	name, err = p.PromptSessionName(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "typed", name)
	assert.Equal(t, 1, next.calls)

	_, err = (&Preset{}).PromptSessionName(context.Background(), "")
	assert.ErrorIs(t, err, session.ErrCancelled)
}

func TestDialogRaisesTerminalBeforeEditing(t *testing.T) {
	raised := 0
	d := Dialog{In: strings.NewReader(""), Out: io.Discard, Focus: func() { raised++ }}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.PromptSessionName(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, raised)
}
