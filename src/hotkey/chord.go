package hotkey

import (
	"errors"
	"fmt"
)

// Action is a semantic command produced by a chord, the tray or a delegated
// request.
type Action int

const (
	ActivateSelection Action = iota + 1
	Capture
	ToggleLock
	Quit
	NewSession
)

func (a Action) String() string {
	switch a {
	case ActivateSelection:
		return "activate"
	case Capture:
		return "capture"
	case ToggleLock:
		return "lock"
	case Quit:
		return "quit"
	case NewSession:
		return "new-session"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ParseAction is the inverse of Action.String.
func ParseAction(s string) (Action, error) {
	for _, a := range []Action{ActivateSelection, Capture, ToggleLock, Quit, NewSession} {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Binding ties a chord like "Ctrl+Shift+S" to an action.
type Binding struct {
	Chord  string
	Action Action
}

// DefaultBindings is the fixed keyboard surface.
var DefaultBindings = []Binding{
	{Chord: "Ctrl+Shift+S", Action: ActivateSelection},
	{Chord: "Ctrl+P", Action: Capture},
	{Chord: "Pause", Action: Capture},
	{Chord: "Ctrl+L", Action: ToggleLock},
	{Chord: "Ctrl+Q", Action: Quit},
}

var errEmptyChord = errors.New("empty chord")

// chord is a compiled binding: every modifier group must be held when the
// trigger key goes down. Each group lists interchangeable rawcodes (left and
// right Ctrl, for example).
type chord struct {
	text    string
	mods    [][]uint16
	trigger []uint16
	action  Action
}

func compile(b Binding) (chord, error) {
	keys := parseHotkey(b.Chord)
	if len(keys) == 0 {
		return chord{}, fmt.Errorf("%w: %q", errEmptyChord, b.Chord)
	}
	c := chord{text: b.Chord, action: b.Action}
	for i, k := range keys {
		codes := keyNameToRawcodes(k)
		if len(codes) == 0 {
			return chord{}, fmt.Errorf("chord %q: unknown key %q", b.Chord, k)
		}
		if i == len(keys)-1 {
			c.trigger = codes
		} else {
			c.mods = append(c.mods, codes)
		}
	}
	return c, nil
}

// Matcher turns a stream of raw key presses and releases into actions.
// A chord fires once when its trigger key goes down with all modifiers held;
// repeated downs of a key that is already held (hardware auto-repeat, or the
// hook reporting both "pressed" and "typed") are ignored until it is released.
// Not safe for concurrent use.
type Matcher struct {
	chords []chord
	held   map[uint16]bool
}

// NewMatcher compiles bindings.
func NewMatcher(bindings []Binding) (*Matcher, error) {
	m := &Matcher{held: make(map[uint16]bool)}
	for _, b := range bindings {
		c, err := compile(b)
		if err != nil {
			return nil, err
		}
		m.chords = append(m.chords, c)
	}
	return m, nil
}

// KeyDown records a press and reports the action it completes, if any. When
// several chords match, the one with the most modifiers wins.
func (m *Matcher) KeyDown(raw uint16) (Action, bool) {
	if m.held[raw] {
		return 0, false
	}
	m.held[raw] = true

	best := -1
	for i, c := range m.chords {
		if !contains(c.trigger, raw) || !m.allHeld(c.mods) {
			continue
		}
		if best < 0 || len(c.mods) > len(m.chords[best].mods) {
			best = i
		}
	}
	if best < 0 {
		return 0, false
	}
	return m.chords[best].action, true
}

// KeyUp records a release.
func (m *Matcher) KeyUp(raw uint16) {
	delete(m.held, raw)
}

func (m *Matcher) allHeld(groups [][]uint16) bool {
	for _, g := range groups {
		down := false
		for _, code := range g {
			if m.held[code] {
				down = true
				break
			}
		}
		if !down {
			return false
		}
	}
	return true
}

func contains(codes []uint16, raw uint16) bool {
	for _, c := range codes {
		if c == raw {
			return true
		}
	}
	return false
}
