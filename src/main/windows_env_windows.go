//go:build windows

package main

import (
	"log"
	"syscall"
)

const processPerMonitorDPIAware = 2

// enableDPIAwareness makes the process per-monitor DPI aware so overlay and
// capture coordinates are physical pixels on every monitor. Windows 8.1+ has
// Shcore.SetProcessDpiAwareness; older systems only get system awareness.
func enableDPIAwareness() {
	perMonitor := syscall.NewLazyDLL("Shcore.dll").NewProc("SetProcessDpiAwareness")
	if perMonitor.Find() == nil {
		// Returns an HRESULT; S_OK is 0.
		if hr, _, _ := perMonitor.Call(processPerMonitorDPIAware); hr != 0 {
			log.Printf("DPI: SetProcessDpiAwareness failed, hresult 0x%x", hr)
			return
		}
		log.Printf("DPI: per-monitor awareness enabled")
		return
	}

	system := syscall.NewLazyDLL("user32.dll").NewProc("SetProcessDPIAware")
	if system.Find() != nil {
		log.Printf("DPI: no DPI awareness API available")
		return
	}
	// Returns a BOOL.
	if ok, _, _ := system.Call(); ok == 0 {
		log.Printf("DPI: SetProcessDPIAware failed")
		return
	}
	log.Printf("DPI: system awareness enabled (fallback)")
}
