package notification

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	short := "Session name \"a b\" is invalid"
	if got := truncate(short); got != short {
		t.Errorf("short message changed: %q", got)
	}
	long := strings.Repeat("x", maxMessageLen+50)
	got := truncate(long)
	if len(got) != maxMessageLen+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncate produced %d chars", len(got))
	}
}
