package worker

import (
	"errors"
	"image"
	"sync"
	"testing"
)

func TestPoolSubmitDropWhenBusy(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	p := New(1, 1, func(image.Image, string) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	})
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	if !p.Submit(img, "a.png", nil) {
		t.Fatal("first submit should succeed")
	}
	<-started
	// The worker is blocked on the first job; one more fits in the queue.
	if !p.Submit(img, "b.png", nil) {
		t.Fatal("second submit should fill the queue slot")
	}
	if p.Submit(img, "c.png", nil) {
		t.Fatal("third submit should drop given 1-slot queue and one in-flight")
	}
	close(release)
	p.Close()
}

func TestPoolReportsResults(t *testing.T) {
	boom := errors.New("disk full")
	p := New(2, 4, func(_ image.Image, path string) error {
		if path == "bad.png" {
			return boom
		}
		return nil
	})

	var mu sync.Mutex
	results := map[string]error{}
	var wg sync.WaitGroup
	for _, path := range []string{"ok.png", "bad.png"} {
		wg.Add(1)
		if !p.Submit(image.NewRGBA(image.Rect(0, 0, 1, 1)), path, func(path string, err error) {
			mu.Lock()
			results[path] = err
			mu.Unlock()
			wg.Done()
		}) {
			t.Fatalf("submit %s dropped", path)
		}
	}
	wg.Wait()
	p.Close()
	p.Close()

	if results["ok.png"] != nil {
		t.Errorf("ok.png: unexpected error %v", results["ok.png"])
	}
	if !errors.Is(results["bad.png"], boom) {
		t.Errorf("bad.png: expected %v, got %v", boom, results["bad.png"])
	}
}
