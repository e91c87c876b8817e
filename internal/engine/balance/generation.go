package balance

import (
	"sync"

	"github.com/google/uuid"
)

// ErrStaleComputation indicates a balance computation was superseded by a
// newer one for the same viewer before it finished
type ErrStaleComputation struct {
	ViewerID uuid.UUID
}

func (e ErrStaleComputation) Error() string {
	return "balance computation for viewer " + e.ViewerID.String() + " was superseded"
}

// Is implements the errors.Is interface for ErrStaleComputation
func (e ErrStaleComputation) Is(target error) bool {
	t, ok := target.(ErrStaleComputation)
	if !ok {
		return false
	}
	return t.ViewerID == uuid.Nil || e.ViewerID == t.ViewerID
}

// GenerationTracker hands out monotonically increasing generation numbers per
// viewer so that concurrent recomputations can detect when they have been
// superseded. Only the result of the newest generation may be surfaced.
type GenerationTracker struct {
	mu          sync.Mutex
	generations map[uuid.UUID]uint64
}

// NewGenerationTracker creates an empty tracker
func NewGenerationTracker() *GenerationTracker {
	return &GenerationTracker{
		generations: make(map[uuid.UUID]uint64),
	}
}

// Begin registers a new computation for the viewer and returns its generation
// number, invalidating any in-flight computations for the same viewer.
func (t *GenerationTracker) Begin(viewerID uuid.UUID) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.generations[viewerID]++
	return t.generations[viewerID]
}

// IsCurrent reports whether the given generation is still the newest one for
// the viewer
func (t *GenerationTracker) IsCurrent(viewerID uuid.UUID, generation uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.generations[viewerID] == generation
}
