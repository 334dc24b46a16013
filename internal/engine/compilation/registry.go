package compilation

import "sync"

// registry tracks the roots created by a manager.
type registry struct {
	mu      sync.Mutex
	entries []entry
}

// entry is a registered root. A non-nil release gate marks a parked analysis worker.
type entry struct {
	root    string
	release *gate
}

func (r *registry) register(root string, release *gate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{root: root, release: release})
}

func (r *registry) drain() []entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries
	r.entries = nil
	return entries
}

func (r *registry) roots() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	roots := make([]string, len(r.entries))
	for i, e := range r.entries {
		roots[i] = e.root
	}
	return roots
}

// gate is a single-use signal.
type gate struct {
	ch   chan struct{}
	once sync.Once
}

func newGate() *gate {
	return &gate{ch: make(chan struct{})}
}

func (g *gate) open() {
	g.once.Do(func() { close(g.ch) })
}

func (g *gate) done() <-chan struct{} {
	return g.ch
}
