package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	lctrl  uint16 = 162
	rctrl  uint16 = 163
	lshift uint16 = 160
	keyL   uint16 = 76
	keyP   uint16 = 80
	keyQ   uint16 = 81
	keyS   uint16 = 83
	pause  uint16 = 19
)

func newDefaultMatcher(t *testing.T) *Matcher {
	t.Helper()
	m, err := NewMatcher(DefaultBindings)
	require.NoError(t, err)
	return m
}

func TestMatcherDefaultChords(t *testing.T) {
	tests := []struct {
		name string
		keys []uint16
		want Action
	}{
		{"activate", []uint16{lctrl, lshift, keyS}, ActivateSelection},
		{"capture ctrl+p", []uint16{lctrl, keyP}, Capture},
		{"capture right ctrl", []uint16{rctrl, keyP}, Capture},
		{"capture pause", []uint16{pause}, Capture},
		{"lock", []uint16{lctrl, keyL}, ToggleLock},
		{"quit", []uint16{lctrl, keyQ}, Quit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newDefaultMatcher(t)
			var got []Action
			for _, k := range tt.keys {
				if a, ok := m.KeyDown(k); ok {
					got = append(got, a)
				}
			}
			assert.Equal(t, []Action{tt.want}, got)
		})
	}
}

func TestMatcherRequiresModifiers(t *testing.T) {
	m := newDefaultMatcher(t)
	_, ok := m.KeyDown(keyP)
	assert.False(t, ok, "plain P must not capture")

	// Shift+S without Ctrl is not the activate chord.
	m = newDefaultMatcher(t)
	m.KeyDown(lshift)
	_, ok = m.KeyDown(keyS)
	assert.False(t, ok)
}

func TestMatcherIgnoresAutoRepeat(t *testing.T) {
	m := newDefaultMatcher(t)
	m.KeyDown(lctrl)

	fired := 0
	for i := 0; i < 10; i++ {
		if _, ok := m.KeyDown(keyP); ok {
			fired++
		}
	}
	assert.Equal(t, 1, fired, "held key must fire once")

	m.KeyUp(keyP)
	a, ok := m.KeyDown(keyP)
	require.True(t, ok, "new press after release fires again")
	assert.Equal(t, Capture, a)
}

func TestMatcherPauseRepeat(t *testing.T) {
	m := newDefaultMatcher(t)
	count := 0
	for cycle := 0; cycle < 3; cycle++ {
		for i := 0; i < 5; i++ {
			if _, ok := m.KeyDown(pause); ok {
				count++
			}
		}
		m.KeyUp(pause)
	}
	assert.Equal(t, 3, count)
}

func TestMatcherPrefersLongestChord(t *testing.T) {
	m, err := NewMatcher([]Binding{
		{Chord: "Ctrl+S", Action: Capture},
		{Chord: "Ctrl+Shift+S", Action: ActivateSelection},
	})
	require.NoError(t, err)
	m.KeyDown(lctrl)
	m.KeyDown(lshift)
	a, ok := m.KeyDown(keyS)
	require.True(t, ok)
	assert.Equal(t, ActivateSelection, a)
}

func TestNewMatcherRejectsUnknownKey(t *testing.T) {
	_, err := NewMatcher([]Binding{{Chord: "Ctrl+Nope", Action: Quit}})
	assert.Error(t, err)
	_, err = NewMatcher([]Binding{{Chord: " + ", Action: Quit}})
	assert.ErrorIs(t, err, errEmptyChord)
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{ActivateSelection, Capture, ToggleLock, Quit, NewSession} {
		got, err := ParseAction(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}
	_, err := ParseAction("explode")
	assert.Error(t, err)
}
