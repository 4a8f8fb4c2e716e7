// Package trigger admits one run at a time from asynchronous sources such
// as a terminal key or an in-page shortcut.
package trigger

import (
	"errors"
	"sync"
)

// ErrBusy is returned when a run is already in progress.
var ErrBusy = errors.New("a run is already in progress")

// Gate runs at most one function at a time. A trigger that arrives while a
// run is active is rejected, not queued.
type Gate struct {
	mu      sync.Mutex
	running bool
	wg      sync.WaitGroup
}

// TryStart runs fn on its own goroutine unless a run is active, in which
// case it returns ErrBusy immediately.
func (g *Gate) TryStart(fn func()) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return ErrBusy
	}
	g.running = true
	g.wg.Add(1)
	g.mu.Unlock()

	go func() {
		defer func() {
			g.mu.Lock()
			g.running = false
			g.mu.Unlock()
			g.wg.Done()
		}()
		fn()
	}()
	return nil
}

// Running reports whether a run is active.
func (g *Gate) Running() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running
}

// Wait blocks until the active run, if any, has finished.
func (g *Gate) Wait() {
	g.wg.Wait()
}
