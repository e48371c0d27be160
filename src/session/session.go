package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrCancelled is returned by a Namer when the user dismisses the dialog.
	ErrCancelled = errors.New("session naming cancelled")
	// ErrInvalidSessionName is returned for names outside [A-Za-z0-9._-]+.
	ErrInvalidSessionName = errors.New("invalid session name")
)

// TimestampLayout is the capture timestamp embedded in every filename.
const TimestampLayout = "2006-01-02_15-04-05"

const fileExt = ".png"

var validName = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// Session groups captures under one user-chosen name.
type Session struct {
	Name      string
	CreatedAt time.Time
}

// New validates name and stamps the session with now.
func New(name string, now time.Time) (Session, error) {
	if err := ValidateName(name); err != nil {
		return Session{}, err
	}
	return Session{Name: name, CreatedAt: now}, nil
}

// Namer asks the user for a session name. hint carries the reason for a
// re-prompt and is empty on the first attempt.
type Namer interface {
	PromptSessionName(ctx context.Context, hint string) (string, error)
}

// ValidateName accepts only non-empty names of letters, digits, dot, dash and
// underscore. Names made of dots only are rejected since they would name the
// current or parent directory once a timestamp is stripped.
func ValidateName(name string) error {
	if !validName.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionName, name)
	}
	if strings.Trim(name, ".") == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSessionName, name)
	}
	return nil
}

var (
	invalidChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// Suggest turns rejected input into a name that would pass ValidateName, or
// returns "" when nothing usable is left. It is only ever offered as a hint.
func Suggest(name string) string {
	s := invalidChars.ReplaceAllString(strings.TrimSpace(name), "-")
	s = dashRuns.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-.")
	if ValidateName(s) != nil {
		return ""
	}
	return s
}

// FileName is the bit-exact capture name: {name}-{YYYY-MM-DD_HH-MM-SS}.png in
// t's location.
func FileName(name string, t time.Time) string {
	return name + "-" + t.Format(TimestampLayout) + fileExt
}

// NextPath returns the path for a capture taken at t inside dir. When the
// plain name is taken (two captures in one second), a "-2", "-3", ... suffix
// is added before the extension so nothing is overwritten.
func NextPath(dir, name string, t time.Time, taken func(path string) bool) string {
	base := FileName(name, t)
	p := filepath.Join(dir, base)
	if taken == nil || !taken(p) {
		return p
	}
	stem := strings.TrimSuffix(base, fileExt)
	for n := 2; ; n++ {
		p = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, n, fileExt))
		if !taken(p) {
			return p
		}
	}
}
