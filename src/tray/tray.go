package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"

	"screen-capper/src/hotkey"
)

type Config struct {
	Title   string
	Tooltip string
	// OnAction receives menu clicks. It is called from the tray goroutine.
	OnAction func(hotkey.Action)
	OnExit   func()
}

// Tray is the system tray control panel: the same actions as the keyboard
// shortcuts, plus starting a new session.
type Tray struct {
	cfg Config

	mu       sync.Mutex
	ready    bool
	status   string
	locked   bool
	lockItem *systray.MenuItem
}

func New(cfg Config) *Tray {
	if cfg.Title == "" {
		cfg.Title = "Screen Capper"
	}
	return &Tray{cfg: cfg, status: cfg.Tooltip}
}

// Run blocks until the tray is destroyed.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy removes the icon and ends Run.
func (t *Tray) Destroy() {
	systray.Quit()
}

// SetStatus updates the tooltip.
func (t *Tray) SetStatus(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = text
	if t.ready {
		systray.SetTooltip(text)
	}
}

// SetLocked flips the lock menu entry label.
func (t *Tray) SetLocked(locked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.locked = locked
	if t.ready && t.lockItem != nil {
		t.lockItem.SetTitle(lockTitle(locked))
	}
}

func lockTitle(locked bool) string {
	if locked {
		return "Unlock region\tCtrl+L"
	}
	return "Lock region\tCtrl+L"
}

func (t *Tray) onReady() {
	systray.SetIcon(Icon())
	systray.SetTitle(t.cfg.Title)

	mActivate := systray.AddMenuItem("Select region\tCtrl+Shift+S", "Show the overlay and drag a region")
	mCapture := systray.AddMenuItem("Capture\tCtrl+P", "Save the selected region")
	mLock := systray.AddMenuItem(lockTitle(false), "Freeze the region and let clicks through")
	mNew := systray.AddMenuItem("New session...", "Ask for a new session name")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit\tCtrl+Q", "Quit the application")

	t.mu.Lock()
	t.ready = true
	t.lockItem = mLock
	systray.SetTooltip(t.status)
	mLock.SetTitle(lockTitle(t.locked))
	t.mu.Unlock()

	go func() {
		for {
			var a hotkey.Action
			select {
			case <-mActivate.ClickedCh:
				a = hotkey.ActivateSelection
			case <-mCapture.ClickedCh:
				a = hotkey.Capture
			case <-mLock.ClickedCh:
				a = hotkey.ToggleLock
			case <-mNew.ClickedCh:
				a = hotkey.NewSession
			case <-mQuit.ClickedCh:
				a = hotkey.Quit
			}
			log.Printf("tray: %s clicked", a)
			if t.cfg.OnAction != nil {
				t.cfg.OnAction(a)
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.mu.Lock()
	t.ready = false
	t.mu.Unlock()
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}
