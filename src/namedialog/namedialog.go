// Package namedialog asks the user for a session name in the terminal.
package namedialog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"screen-capper/src/session"
)

const charLimit = 128

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#74c7ec")).Bold(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fab387"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8"))
	boxStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475a")).
			Padding(0, 1)
)

// model is a single-line name editor.
type model struct {
	hint      string
	input     []rune
	submitted bool
	cancelled bool
}

func newModel(hint string) model { return model{hint: hint} }

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyEnter:
		m.submitted = true
		return m, tea.Quit
	case tea.KeyEsc, tea.KeyCtrlC:
		m.cancelled = true
		return m, tea.Quit
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeySpace:
		m.appendRunes([]rune{' '})
	case tea.KeyRunes:
		m.appendRunes(key.Runes)
	}
	return m, nil
}

func (m *model) appendRunes(r []rune) {
	if room := charLimit - len(m.input); room > 0 {
		if len(r) > room {
			r = r[:room]
		}
		m.input = append(m.input, r...)
	}
}

func (m model) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Session name") + "\n")
	if m.hint != "" {
		sb.WriteString(hintStyle.Render(m.hint) + "\n")
	}
	sb.WriteString("> " + string(m.input) + "█\n")
	sb.WriteString(mutedStyle.Render("letters, digits, . _ - only  •  enter confirm  •  esc cancel"))
	return boxStyle.Render(sb.String()) + "\n"
}

// Value is the text entered so far.
func (m model) Value() string { return string(m.input) }

// Dialog is a session.Namer backed by a bubbletea program on the given
// terminal streams. Nil streams mean stdin/stdout.
type Dialog struct {
	In  io.Reader
	Out io.Writer
	// Focus brings the terminal in front of the overlay before the editor
	// starts. Nil means the console window of this process.
	Focus func()
}

// PromptSessionName runs the editor until the user confirms or cancels. The
// entered text is returned unvalidated.
func (d Dialog) PromptSessionName(ctx context.Context, hint string) (string, error) {
	focus := d.Focus
	if focus == nil {
		focus = raiseConsole
	}
	focus()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if d.In != nil {
		opts = append(opts, tea.WithInput(d.In))
	}
	if d.Out != nil {
		opts = append(opts, tea.WithOutput(d.Out))
	}
	final, err := tea.NewProgram(newModel(hint), opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, tea.ErrProgramKilled) {
			return "", session.ErrCancelled
		}
		return "", fmt.Errorf("session name dialog: %w", err)
	}
	m, ok := final.(model)
	if !ok || m.cancelled || !m.submitted {
		return "", session.ErrCancelled
	}
	return m.Value(), nil
}

// Preset answers the first prompt with Name and delegates every later prompt
// to Next. It backs --session and SESSION_NAME.
type Preset struct {
	Name string
	Next session.Namer
	used bool
}

func (p *Preset) PromptSessionName(ctx context.Context, hint string) (string, error) {
	if !p.used && p.Name != "" {
		p.used = true
		return p.Name, nil
	}
	if p.Next == nil {
		return "", session.ErrCancelled
	}
	return p.Next.PromptSessionName(ctx, hint)
}
