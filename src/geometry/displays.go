package geometry

import (
	"image"
	"log"

	"github.com/kbinani/screenshot"
)

// KbinaniDisplays enumerates monitors through github.com/kbinani/screenshot.
type KbinaniDisplays struct{}

func (KbinaniDisplays) NumActiveDisplays() int { return screenshot.NumActiveDisplays() }

func (KbinaniDisplays) DisplayBounds(i int) image.Rectangle { return screenshot.GetDisplayBounds(i) }

// LogMonitorConfiguration writes the current topology to the log.
func (s *Service) LogMonitorConfiguration() {
	monitors := s.Monitors()
	log.Printf("MONITOR: Detected %d monitors", len(monitors))
	for i, m := range monitors {
		log.Printf("MONITOR: Display %d bounds %s", i, m)
	}
	if vb, err := s.VirtualBounds(); err == nil {
		log.Printf("MONITOR: Virtual screen %s", vb)
	}
}
