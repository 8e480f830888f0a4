package cache

import (
	"context"
	"sync"
)

// Memory keeps one snapshot in process.
type Memory struct {
	mu   sync.RWMutex
	snap *Snapshot
	gen  uint64
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Get(ctx context.Context, load Loader) (Snapshot, error) {
	m.mu.RLock()
	if m.snap != nil {
		s := *m.snap
		m.mu.RUnlock()
		return s, nil
	}
	gen := m.gen
	m.mu.RUnlock()

	s, err := load(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	// an invalidation that raced with the load wins; the loaded data may be stale
	if m.gen == gen {
		m.snap = &s
	}
	m.mu.Unlock()
	return s, nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	m.snap = nil
	m.gen++
	m.mu.Unlock()
	return nil
}
