package main

import (
	"sync"
	"time"
)

// workers tracks the background loops that use the journal. Shutdown waits
// for them before the journal is closed.
type workers struct {
	wg sync.WaitGroup
}

func (w *workers) Go(fn func()) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		fn()
	}()
}

// Wait reports whether every worker returned within timeout.
func (w *workers) Wait(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
