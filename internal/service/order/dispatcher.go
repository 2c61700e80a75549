package order

import "sync"

// Dispatcher runs order notifications in the background and lets shutdown
// wait for the ones in flight. Several Services may share one Dispatcher.
type Dispatcher struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	closed bool
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Go starts fn unless the dispatcher is closed, and reports whether it did.
func (d *Dispatcher) Go(fn func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn()
	}()
	return true
}

// Close refuses new work and blocks until running notifications finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.wg.Wait()
}
