package stage

import "sync"

// Pipeline is the handoff contract between stages: it holds the snapshot of
// the studio stage's currently active result. The snapshot is copied on both
// publish and read, so later mutation of either side's selections never
// reaches the other; only a new active-asset change upstream re-propagates.
type Pipeline struct {
	mu       sync.RWMutex
	snapshot *Result
}

// NewPipeline returns an empty handoff.
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// Publish stores a copy of the upstream stage's active result.
func (p *Pipeline) Publish(r Result) {
	clone := r.Clone()
	p.mu.Lock()
	p.snapshot = &clone
	p.mu.Unlock()
}

// Snapshot returns a copy of the latest handoff, if any.
func (p *Pipeline) Snapshot() (Result, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.snapshot == nil {
		return Result{}, false
	}
	return p.snapshot.Clone(), true
}

// Ready reports whether the upstream stage has produced a result. Downstream
// stages stay disabled until this capability flag turns true.
func (p *Pipeline) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshot != nil
}
