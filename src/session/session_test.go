package session

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"demo-1.2", true},
		{"doc", true},
		{"Quarter_Report.v2", true},
		{"demo space", false},
		{"", false},
		{"...", false},
		{"a/b", false},
		{"résumé", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.name)
			if tt.valid && err != nil {
				t.Errorf("ValidateName(%q) = %v, expected nil", tt.name, err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidSessionName) {
				t.Errorf("ValidateName(%q) = %v, expected ErrInvalidSessionName", tt.name, err)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"demo space", "demo-space"},
		{"  hello   world ", "hello-world"},
		{"--x--", "x"},
		{"a/b\\c", "a-b-c"},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Suggest(tt.in); got != tt.want {
			t.Errorf("Suggest(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 999, time.Local)
	if got := FileName("doc", at); got != "doc-2024-01-02_03-04-05.png" {
		t.Errorf("FileName = %q", got)
	}
}

func TestNextPathCollisionSuffix(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.Local)
	dir := filepath.Join("out", "shots")
	taken := map[string]bool{
		filepath.Join(dir, "doc-2024-01-02_03-04-05.png"):   true,
		filepath.Join(dir, "doc-2024-01-02_03-04-05-2.png"): true,
	}
	got := NextPath(dir, "doc", at, func(p string) bool { return taken[p] })
	if want := filepath.Join(dir, "doc-2024-01-02_03-04-05-3.png"); got != want {
		t.Errorf("NextPath = %q, expected %q", got, want)
	}
	if got := NextPath(dir, "doc", at.Add(time.Second), func(p string) bool { return taken[p] }); got != filepath.Join(dir, "doc-2024-01-02_03-04-06.png") {
		t.Errorf("NextPath next second = %q", got)
	}
}

func TestNewSession(t *testing.T) {
	now := time.Now()
	s, err := New("doc", now)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Name != "doc" || !s.CreatedAt.Equal(now) {
		t.Errorf("unexpected session %+v", s)
	}
	if _, err := New("bad name", now); !errors.Is(err, ErrInvalidSessionName) {
		t.Errorf("expected ErrInvalidSessionName, got %v", err)
	}
}
