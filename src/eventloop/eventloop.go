package eventloop

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"screen-capper/src/config"
	"screen-capper/src/geometry"
	"screen-capper/src/hotkey"
	"screen-capper/src/overlay"
	"screen-capper/src/popup"
	"screen-capper/src/screenshot"
	"screen-capper/src/selection"
	"screen-capper/src/session"
	"screen-capper/src/singleinstance"
	"screen-capper/src/worker"
)

// SessionState is the naming state of the controller.
type SessionState int

const (
	NoSession SessionState = iota
	AwaitingName
	Ready
)

func (s SessionState) String() string {
	switch s {
	case NoSession:
		return "no-session"
	case AwaitingName:
		return "awaiting-name"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("session-state(%d)", int(s))
	}
}

// Indicator shows controller status outside the overlay (the tray icon).
type Indicator interface {
	SetStatus(text string)
	SetLocked(locked bool)
}

// Suspender pauses global shortcuts while the naming dialog owns the keyboard.
type Suspender interface {
	Suspend()
	Resume()
}

type nopIndicator struct{}

func (nopIndicator) SetStatus(string) {}
func (nopIndicator) SetLocked(bool)   {}

type nopSuspender struct{}

func (nopSuspender) Suspend() {}
func (nopSuspender) Resume()  {}

// Deps are the collaborators of the loop. Geometry, Backend and Namer are
// required; the rest have working defaults.
type Deps struct {
	Geometry *geometry.Service
	// Surface may be nil when the platform has no overlay; the loop then
	// runs degraded (no visual selection, preset regions only).
	Surface   overlay.Surface
	Backend   screenshot.Backend
	Namer     session.Namer
	Pool      *worker.Pool
	Hotkeys   <-chan hotkey.Action
	Server    singleinstance.Server
	Indicator Indicator
	Suspender Suspender
	Now       func() time.Time
	Sleep     func(time.Duration)
	Warn      func(title, message string)
	// CopyImage, when set and enabled in config, receives each saved capture
	// as PNG bytes.
	CopyImage func(png []byte) error
}

type saveResult struct {
	path string
	err  error
}

// Loop is the single-goroutine capture session controller. It owns the
// selection model and the session; every mutation of either happens on the
// goroutine running Run (or on the caller of the Handle methods in tests).
type Loop struct {
	cfg       config.Config
	geo       *geometry.Service
	model     *selection.Model
	overlay   *overlay.Overlay
	backend   screenshot.Backend
	namer     session.Namer
	pool      *worker.Pool
	ownPool   bool
	hotkeys   <-chan hotkey.Action
	srv       singleinstance.Server
	indicator Indicator
	suspender Suspender
	now       func() time.Time
	sleep     func(time.Duration)
	warn      func(title, message string)
	copyImage func([]byte) error

	state            SessionState
	session          session.Session
	promptPending    bool
	reserved         map[string]bool
	actions          chan hotkey.Action
	results          chan saveResult
	quit             bool
	degradedNotified bool
}

// New creates a loop. A nil cfg means defaults.
func New(cfg *config.Config, deps Deps) (*Loop, error) {
	if deps.Geometry == nil || deps.Backend == nil || deps.Namer == nil {
		return nil, errors.New("eventloop: geometry, backend and namer are required")
	}
	c := config.Config{OutputDir: ".", CaptureHideDelay: config.DefaultCaptureHideDelay}
	if cfg != nil {
		c = *cfg
	}

	l := &Loop{
		cfg:       c,
		geo:       deps.Geometry,
		model:     selection.New(geometry.Rect{}),
		backend:   deps.Backend,
		namer:     deps.Namer,
		pool:      deps.Pool,
		hotkeys:   deps.Hotkeys,
		srv:       deps.Server,
		indicator: deps.Indicator,
		suspender: deps.Suspender,
		now:       deps.Now,
		sleep:     deps.Sleep,
		warn:      deps.Warn,
		copyImage: deps.CopyImage,
		reserved:  make(map[string]bool),
		actions:   make(chan hotkey.Action, 8),
		results:   make(chan saveResult, 16),
	}
	if l.pool == nil {
		l.pool = worker.New(1, 4, l.backend.SaveImage)
		l.ownPool = true
	}
	if l.indicator == nil {
		l.indicator = nopIndicator{}
	}
	if l.suspender == nil {
		l.suspender = nopSuspender{}
	}
	if l.now == nil {
		l.now = time.Now
	}
	if l.sleep == nil {
		l.sleep = time.Sleep
	}
	if l.warn == nil {
		l.warn = popup.Warn
	}

	if deps.Surface != nil {
		l.overlay = overlay.New(deps.Surface, l.model)
	}
	l.model.Subscribe(l.onTransition)
	l.updateStatus()
	return l, nil
}

// State returns the session state.
func (l *Loop) State() SessionState { return l.state }

// Session returns the active session; its Name is empty unless Ready.
func (l *Loop) Session() session.Session { return l.session }

// Model exposes the selection model for inspection.
func (l *Loop) Model() *selection.Model { return l.model }

// Post queues an action from another goroutine (the tray). It never blocks;
// when the queue is full the action is dropped.
func (l *Loop) Post(a hotkey.Action) {
	select {
	case l.actions <- a:
	default:
		log.Printf("Post: action queue full, dropping %s", a)
	}
}

// PresetRegion installs r as a locked selection, as if the user had dragged
// and locked it.
func (l *Loop) PresetRegion(ctx context.Context, r geometry.Rect) error {
	bounds, err := l.geo.VirtualBounds()
	if err != nil {
		return err
	}
	l.model.Activate(bounds)
	if l.overlay != nil {
		if err := l.overlay.Show(bounds); err != nil {
			log.Printf("PresetRegion: show overlay: %v", err)
		}
	}
	if err := l.model.Lock(r); err != nil {
		return err
	}
	log.Printf("PresetRegion: locked %s", l.model.Rect())
	l.afterEvent(ctx)
	return nil
}

// Run processes shortcut actions, tray actions, pointer input, delegated
// requests and save results until Quit or ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if l.srv != nil {
		if err := l.srv.Start(ctx); err != nil {
			return err
		}
		if p := l.srv.Port(); p > 0 {
			log.Printf("Resident listening on 127.0.0.1:%d", p)
		}
		defer l.srv.Close()
	}
	defer l.shutdown()

	// Accept loop in background to avoid blocking result handling
	var reqCh chan singleinstance.Conn
	if l.srv != nil {
		reqCh = make(chan singleinstance.Conn, 4)
		go func() {
			defer close(reqCh)
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				reqCh <- conn
			}
		}()
	}

	var pointer <-chan overlay.PointerEvent
	if l.overlay != nil {
		pointer = l.overlay.Events()
	}

	for !l.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case a := <-l.hotkeys:
			l.HandleAction(ctx, a)
		case a := <-l.actions:
			l.HandleAction(ctx, a)
		case ev := <-pointer:
			l.HandlePointer(ctx, ev)
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
	return nil
}

// HandleAction performs one action and returns a short outcome description.
func (l *Loop) HandleAction(ctx context.Context, a hotkey.Action) string {
	log.Printf("HandleAction: %s (session=%s, selection=%s)", a, l.state, l.model.State())
	var outcome string
	switch a {
	case hotkey.ActivateSelection:
		outcome = l.activate()
	case hotkey.Capture:
		outcome = l.capture()
	case hotkey.ToggleLock:
		outcome = l.toggleLock()
	case hotkey.NewSession:
		outcome = l.newSession()
	case hotkey.Quit:
		outcome = l.quitApp()
	default:
		outcome = fmt.Sprintf("unknown action %s", a)
	}
	l.afterEvent(ctx)
	return outcome
}

// HandlePointer forwards overlay input to the selection model.
func (l *Loop) HandlePointer(ctx context.Context, ev overlay.PointerEvent) {
	if l.overlay == nil {
		return
	}
	l.overlay.HandlePointer(ev)
	l.afterEvent(ctx)
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	defer conn.Close()
	a, err := hotkey.ParseAction(conn.Request().Action)
	if err != nil {
		_ = conn.RespondError(err.Error())
		return
	}
	_ = conn.RespondSuccess(l.HandleAction(ctx, a))
}

// onTransition runs synchronously inside every selection model call.
func (l *Loop) onTransition(t selection.Transition) {
	if t.From == t.To {
		return
	}
	log.Printf("selection: %s -> %s %s", t.From, t.To, t.Rect)
	l.indicator.SetLocked(t.To == selection.Locked)

	finished := t.To == selection.SelectedUnlocked && t.From == selection.Selecting
	preset := t.To == selection.Locked && t.From == selection.Inactive
	if (finished || preset) && l.state == NoSession {
		l.state = AwaitingName
		l.promptPending = true
	}
	l.updateStatus()
}

// afterEvent runs deferred work once the current event is fully applied, so
// the naming dialog never opens from inside a model notification.
func (l *Loop) afterEvent(ctx context.Context) {
	if l.promptPending && !l.quit {
		l.promptPending = false
		l.promptForName(ctx)
	}
}

func (l *Loop) promptForName(ctx context.Context) {
	l.state = AwaitingName
	l.updateStatus()
	l.suspender.Suspend()
	defer l.suspender.Resume()
	if l.overlay != nil {
		_ = l.overlay.Yield(true)
		defer func() { _ = l.overlay.Yield(false) }()
	}

	hint := ""
	for {
		name, err := l.namer.PromptSessionName(ctx, hint)
		if err != nil {
			l.state = NoSession
			l.unlockUnnamed()
			l.updateStatus()
			switch {
			case errors.Is(err, session.ErrCancelled):
				log.Printf("promptForName: cancelled, selection kept unlocked without a session")
			case ctx.Err() != nil:
				log.Printf("promptForName: aborted: %v", err)
			default:
				log.Printf("promptForName: dialog failed: %v", err)
				l.warn("Session name", fmt.Sprintf("Could not ask for a session name: %v", err))
			}
			return
		}
		s, err := session.New(name, l.now())
		if err != nil {
			log.Printf("promptForName: %v", err)
			hint = invalidNameHint(name)
			continue
		}
		l.session = s
		l.state = Ready
		log.Printf("promptForName: session %q ready", s.Name)
		l.updateStatus()
		return
	}
}

// unlockUnnamed returns a locked selection to SelectedUnlocked when naming
// fails, so a locked region never outlives its missing session.
func (l *Loop) unlockUnnamed() {
	if l.model.State() != selection.Locked {
		return
	}
	if err := l.model.ToggleLock(); err != nil {
		log.Printf("promptForName: unlock: %v", err)
	}
}

func invalidNameHint(name string) string {
	msg := fmt.Sprintf("%q is not a valid session name. Use letters, digits, '.', '_' or '-'.", name)
	if s := session.Suggest(name); s != "" {
		msg += fmt.Sprintf(" Try %q.", s)
	}
	return msg
}

func (l *Loop) activate() string {
	bounds, err := l.geo.VirtualBounds()
	if err != nil {
		log.Printf("activate: %v", err)
		l.warn("No displays", "No displays are available to select a region on.")
		return err.Error()
	}
	l.model.Activate(bounds)
	if l.overlay == nil {
		if !l.degradedNotified {
			l.degradedNotified = true
			l.warn("Overlay unavailable", "The selection overlay is not supported here. Use --region to capture a fixed area.")
		}
		return "overlay unavailable"
	}
	if err := l.overlay.Show(bounds); err != nil {
		log.Printf("activate: show overlay: %v", err)
		l.warn("Overlay unavailable", err.Error())
		return err.Error()
	}
	return "overlay shown over " + bounds.String()
}

func (l *Loop) toggleLock() string {
	if err := l.model.ToggleLock(); err != nil {
		log.Printf("toggleLock: %v", err)
		return "no finished selection to lock"
	}
	return l.model.State().String()
}

func (l *Loop) newSession() string {
	if l.state == Ready {
		log.Printf("newSession: leaving session %q", l.session.Name)
	}
	l.session = session.Session{}
	l.state = NoSession
	switch l.model.State() {
	case selection.SelectedUnlocked, selection.Locked:
		l.state = AwaitingName
		l.promptPending = true
		l.updateStatus()
		return "session cleared, asking for a new name"
	}
	l.updateStatus()
	return "session cleared, a name will be asked after the next selection"
}

func (l *Loop) quitApp() string {
	l.model.Reset()
	if l.overlay != nil {
		if err := l.overlay.Release(); err != nil {
			log.Printf("quit: release overlay: %v", err)
		}
	}
	l.quit = true
	return "quitting"
}

func (l *Loop) capture() string {
	if l.state != Ready {
		log.Printf("capture: ignored, no session name set (%s)", l.state)
		return "no session name set"
	}
	st := l.model.State()
	if (st != selection.SelectedUnlocked && st != selection.Locked) || !l.model.HasRegion() {
		log.Printf("capture: ignored, no valid capture area (%s)", st)
		return "no valid capture area"
	}

	at := l.now()
	rect := l.model.Rect()
	for _, p := range l.geo.Split(rect) {
		log.Printf("capture: display %d global=%s local=%s", p.Display, p.Global, p.Local)
	}
	img, err := l.grab(rect)
	if err != nil {
		log.Printf("capture: grab %s failed: %v", rect, err)
		l.warn("Capture failed", err.Error())
		return "capture failed: " + err.Error()
	}

	path := session.NextPath(l.cfg.OutputDir, l.session.Name, at, l.taken)
	l.reserved[path] = true
	if !l.pool.Submit(img, path, l.deliver) {
		delete(l.reserved, path)
		log.Printf("capture: save queue full, dropped %s", path)
		l.warn("Capture dropped", "Earlier captures are still being saved. Try again.")
		return "busy"
	}
	log.Printf("capture: %s -> %s", rect, path)
	return "saving " + path
}

// deliver runs on a pool worker.
func (l *Loop) deliver(path string, err error) {
	l.results <- saveResult{path: path, err: err}
}

// grab snapshots the pixels of r. When the overlay would show up in the
// grab it is hidden for the duration.
func (l *Loop) grab(r geometry.Rect) (*image.RGBA, error) {
	hidden := false
	if l.overlay != nil && l.overlay.Visible() && !l.overlay.ExcludedFromCapture() {
		if err := l.overlay.Hide(); err == nil {
			hidden = true
			l.sleep(l.cfg.CaptureHideDelay)
		}
	}
	img, err := l.backend.CaptureRegion(r)
	if hidden {
		if serr := l.overlay.Show(l.overlay.Bounds()); serr != nil {
			log.Printf("capture: re-show overlay: %v", serr)
		}
	}
	return img, err
}

func (l *Loop) taken(path string) bool {
	if l.reserved[path] {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}

func (l *Loop) handleResult(res saveResult) {
	delete(l.reserved, res.path)
	if res.err != nil {
		log.Printf("handleResult: save failed: %v", res.err)
		l.warn("Save failed", fmt.Sprintf("Could not save %s: %v", res.path, res.err))
		l.indicator.SetStatus("Save failed: " + filepath.Base(res.path))
		return
	}
	log.Printf("handleResult: saved %s", res.path)
	l.indicator.SetStatus(l.statusText() + " - saved " + filepath.Base(res.path))
	if l.cfg.CopyToClipboard && l.copyImage != nil {
		l.copySaved(res.path)
	}
}

func (l *Loop) copySaved(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("handleResult: clipboard read %s: %v", path, err)
		return
	}
	if err := l.copyImage(data); err != nil {
		log.Printf("handleResult: clipboard: %v", err)
	}
}

func (l *Loop) statusText() string {
	s := "Screen Capper"
	switch l.state {
	case Ready:
		s += " - session " + l.session.Name
	case AwaitingName:
		s += " - naming session"
	default:
		s += " - no session"
	}
	if l.model.State() == selection.Locked {
		s += " (locked)"
	}
	return s
}

func (l *Loop) updateStatus() { l.indicator.SetStatus(l.statusText()) }

// shutdown waits for queued saves, reporting their results.
func (l *Loop) shutdown() {
	if !l.ownPool {
		l.drainReserved()
		return
	}
	done := make(chan struct{})
	go func() {
		l.pool.Close()
		close(done)
	}()
	for {
		select {
		case res := <-l.results:
			l.handleResult(res)
		case <-done:
			l.drainReserved()
			return
		}
	}
}

func (l *Loop) drainReserved() {
	for len(l.reserved) > 0 {
		select {
		case res := <-l.results:
			l.handleResult(res)
		case <-time.After(5 * time.Second):
			log.Printf("shutdown: %d saves still pending", len(l.reserved))
			return
		}
	}
}
