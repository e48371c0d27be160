package logutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRotatingWriterRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), LogFileName)
	w, err := NewRotatingWriter(path, 16)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer w.Close()

	for _, line := range []string{"first line\n", "second line\n", "third line\n", "fourth line\n", "fifth line\n"} {
		if _, err := w.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	cur, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read current: %v", err)
	}
	if string(cur) != "fifth line\n" {
		t.Errorf("current log = %q", cur)
	}
	newest, _ := os.ReadFile(archiveName(path, 1))
	if !strings.Contains(string(newest), "fourth") {
		t.Errorf(".1 = %q, expected the fourth line", newest)
	}
	if _, err := os.Stat(archiveName(path, maxArchives+1)); !os.IsNotExist(err) {
		t.Errorf("more than %d archives kept", maxArchives)
	}
}
