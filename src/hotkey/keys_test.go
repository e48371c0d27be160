package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyNameToRawcodes(t *testing.T) {
	tests := map[string][]uint16{
		"ctrl":  {162, 163},
		"Shift": {160, 161},
		"super": {91, 92},
		"a":     {65},
		"z":     {90},
		"0":     {48},
		"9":     {57},
		"f1":    {112},
		"F24":   {135},
		"pause": {19},
		"PgDn":  {34},
		"esc":   {27},
		"f0":    nil,
		"f25":   nil,
		"ß":     nil,
		"bogus": nil,
	}
	for name, want := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, want, keyNameToRawcodes(name))
		})
	}
}

func TestParseHotkeyNormalizesNames(t *testing.T) {
	tests := []struct {
		chord string
		want  []string
	}{
		{"Ctrl+Shift+S", []string{"ctrl", "shift", "s"}},
		{"Control+P", []string{"ctrl", "p"}},
		{"Win+L", []string{"cmd", "l"}},
		{" Super + Alt + F4 ", []string{"cmd", "alt", "f4"}},
		{"Pause", []string{"pause"}},
		{"Ctrl++Q", []string{"ctrl", "q"}},
		{"", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.chord, func(t *testing.T) {
			assert.Equal(t, tt.want, parseHotkey(tt.chord))
		})
	}
}

// Every default chord must map to real rawcodes.
func TestDefaultChordsResolve(t *testing.T) {
	for _, b := range DefaultBindings {
		for _, k := range parseHotkey(b.Chord) {
			assert.NotEmpty(t, keyNameToRawcodes(k), "%s in %s", k, b.Chord)
		}
	}
}
