package cleanup

import "sync"

// destinationLocks serializes work on the same destination root.
type destinationLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newDestinationLocks() *destinationLocks {
	return &destinationLocks{locks: make(map[string]*sync.Mutex)}
}

// lock blocks until root is free and returns the matching unlock.
func (d *destinationLocks) lock(root string) func() {
	d.mu.Lock()
	l, ok := d.locks[root]
	if !ok {
		l = &sync.Mutex{}
		d.locks[root] = l
	}
	d.mu.Unlock()

	l.Lock()
	return l.Unlock
}
