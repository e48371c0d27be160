package hotkey

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	gohook "github.com/robotn/gohook"
)

const stopWait = 500 * time.Millisecond

// ErrHookUnavailable is returned when the global keyboard hook cannot start.
var ErrHookUnavailable = errors.New("global keyboard hook unavailable")

// Source delivers raw hook events. The production source is gohook's
// process-wide hook.
type Source interface {
	Start() chan gohook.Event
	End()
}

type gohookSource struct{}

func (gohookSource) Start() chan gohook.Event { return gohook.Start() }
func (gohookSource) End()                     { gohook.End() }

// Dispatcher listens for global chords regardless of window focus and posts
// the matching actions to a bounded queue. Matching happens on the hook
// goroutine; consumers read Actions() from their own goroutine.
type Dispatcher struct {
	src     Source
	matcher *Matcher
	actions chan Action

	suspended atomic.Bool
	started   atomic.Bool
	stopOnce  sync.Once
	done      chan struct{}
}

// New creates a dispatcher on the real keyboard hook.
func New(bindings []Binding, queue int) (*Dispatcher, error) {
	return NewWithSource(gohookSource{}, bindings, queue)
}

// NewWithSource creates a dispatcher reading from src.
func NewWithSource(src Source, bindings []Binding, queue int) (*Dispatcher, error) {
	m, err := NewMatcher(bindings)
	if err != nil {
		return nil, err
	}
	if queue <= 0 {
		queue = 8
	}
	return &Dispatcher{
		src:     src,
		matcher: m,
		actions: make(chan Action, queue),
		done:    make(chan struct{}),
	}, nil
}

// Actions is the queue of recognised actions.
func (d *Dispatcher) Actions() <-chan Action { return d.actions }

// Start installs the hook and begins matching in a background goroutine.
func (d *Dispatcher) Start() error {
	if !d.started.CompareAndSwap(false, true) {
		return nil
	}
	log.Printf("hotkey: starting gohook event loop...")
	evChan := d.src.Start()
	if evChan == nil {
		log.Printf("hotkey: ERROR: gohook.Start() returned nil channel")
		close(d.done)
		return ErrHookUnavailable
	}
	for _, c := range d.matcher.chords {
		log.Printf("hotkey: %s -> %s", c.text, c.action)
	}

	go func() {
		defer close(d.done)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("hotkey: PANIC in hook goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			d.handle(ev)
		}
		log.Printf("hotkey: event channel closed")
	}()
	return nil
}

func (d *Dispatcher) handle(ev gohook.Event) {
	switch ev.Kind {
	case gohook.KeyHold, gohook.KeyDown:
		action, ok := d.matcher.KeyDown(ev.Rawcode)
		if !ok {
			return
		}
		if d.suspended.Load() {
			log.Printf("hotkey: %s ignored while suspended", action)
			return
		}
		select {
		case d.actions <- action:
			log.Printf("hotkey: %s", action)
		default:
			log.Printf("hotkey: action queue full, dropping %s", action)
		}
	case gohook.KeyUp:
		d.matcher.KeyUp(ev.Rawcode)
	}
}

// Suspend stops emitting actions (the name dialog owns the keyboard). Key
// state is still tracked so chords resume cleanly.
func (d *Dispatcher) Suspend() { d.suspended.Store(true) }

// Resume re-enables action delivery.
func (d *Dispatcher) Resume() { d.suspended.Store(false) }

// Stop removes the hook and waits briefly for the matching goroutine to
// drain. Some hook backends never close their channel, so the wait is capped.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		if !d.started.Load() {
			return
		}
		d.src.End()
		select {
		case <-d.done:
		case <-time.After(stopWait):
			log.Printf("hotkey: hook goroutine still running after %v", stopWait)
		}
	})
}
