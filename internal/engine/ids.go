package engine

import (
	"fmt"
	"sync"
	"time"
)

// IDGenerator produces ids for newly created steps and repeat groups. It is
// injected so tests can use a deterministic sequence.
type IDGenerator interface {
	NextID() string
}

// seqIDs combines a coarse wall-clock stamp with a process-wide counter.
// The counter alone guarantees uniqueness within a process; the stamp just
// lowers the odds of colliding with ids minted in an earlier session.
// Groups and steps share the same generator.
type seqIDs struct {
	mu      sync.Mutex
	counter uint64
	now     func() time.Time
}

// NewIDGenerator returns the default wall-clock plus counter generator.
func NewIDGenerator() IDGenerator {
	return &seqIDs{now: time.Now}
}

func (g *seqIDs) NextID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("step-%d-%d", g.now().UnixMilli(), g.counter)
}

// SequentialIDs is a deterministic generator for tests: prefix-1, prefix-2, ...
type SequentialIDs struct {
	mu      sync.Mutex
	prefix  string
	counter int
}

// NewSequentialIDs returns a generator that yields prefix-1, prefix-2, ...
func NewSequentialIDs(prefix string) *SequentialIDs {
	return &SequentialIDs{prefix: prefix}
}

func (g *SequentialIDs) NextID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("%s-%d", g.prefix, g.counter)
}
