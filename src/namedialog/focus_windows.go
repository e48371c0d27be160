//go:build windows

package namedialog

import (
	"log"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	kernel32DLL          = windows.NewLazySystemDLL("kernel32.dll")
	procGetConsoleWindow = kernel32DLL.NewProc("GetConsoleWindow")
)

// raiseConsole moves the console hosting the dialog above the overlay.
func raiseConsole() {
	hwnd, _, _ := procGetConsoleWindow.Call()
	if hwnd == 0 {
		log.Printf("namedialog: no console window to raise")
		return
	}
	if !win.SetForegroundWindow(win.HWND(hwnd)) {
		log.Printf("namedialog: console could not be brought to the foreground")
	}
}
