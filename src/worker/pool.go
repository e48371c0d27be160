package worker

import (
	"image"
	"log"
	"runtime"
	"sync"
)

// SaveFunc persists one captured image.
type SaveFunc func(img image.Image, path string) error

// ResultCallback is invoked on save completion (from a worker goroutine).
// The event loop should pass a closure that posts back into the event loop safely.
type ResultCallback func(path string, err error)

// Pool is a fixed-size save worker pool with a bounded input queue.
type Pool struct {
	save SaveFunc
	jobs chan job
	wg   sync.WaitGroup
	once sync.Once
}

type job struct {
	img  image.Image
	path string
	cb   ResultCallback
}

// New creates a worker pool. Size defaults to NumCPU when size<=0, queue to 1
// slot when queue<=0.
func New(size, queue int, save SaveFunc) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if queue <= 0 {
		queue = 1
	}
	p := &Pool{save: save, jobs: make(chan job, queue)}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				b := j.img.Bounds()
				log.Printf("Worker: saving %dx%d capture to %s", b.Dx(), b.Dy(), j.path)
				err := p.save(j.img, j.path)
				log.Printf("Worker: save completed, path=%s, err=%v", j.path, err)
				if j.cb != nil {
					j.cb(j.path, err)
				}
			}
		}()
	}
}

// Submit enqueues a save job if the queue has room. Returns false if dropped.
// img must not be modified by the caller afterwards.
func (p *Pool) Submit(img image.Image, path string, cb ResultCallback) bool {
	select {
	case p.jobs <- job{img: img, path: path, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining queued work. It is safe to call twice.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}
