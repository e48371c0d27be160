package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

// ErrUnavailable is returned when the system clipboard could not be
// initialised.
var ErrUnavailable = errors.New("clipboard unavailable")

var (
	writeMu sync.Mutex
	ready   bool
)

// Init prepares the system clipboard. Without it every write fails with
// ErrUnavailable.
func Init() error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if err := clipboard.Init(); err != nil {
		return errors.Join(ErrUnavailable, err)
	}
	ready = true
	return nil
}

// WriteImage puts PNG-encoded bytes on the clipboard as an image.
func WriteImage(png []byte) error {
	return write(clipboard.FmtImage, png)
}

func write(format clipboard.Format, data []byte) error {
	writeMu.Lock()
	defer writeMu.Unlock()
	if !ready {
		return ErrUnavailable
	}
	clipboard.Write(format, data)
	return nil
}
