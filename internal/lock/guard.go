package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrCycleInFlight is returned when a generation cycle already holds the
// guard for a user.
var ErrCycleInFlight = errors.New("generation cycle already in flight for user")

// CycleGuard grants per-user exclusivity for a generation cycle. Acquire
// returns a release function that must be called when the cycle finishes;
// releasing twice is harmless.
type CycleGuard interface {
	Acquire(ctx context.Context, userID uuid.UUID) (release func(), err error)
}

// MemoryGuard is an in-process guard for single-instance deployments and
// tests. It does not expire holds; callers are expected to release.
type MemoryGuard struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

// NewMemoryGuard creates a new in-process cycle guard
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{held: make(map[uuid.UUID]struct{})}
}

// Acquire takes the guard for a user or fails with ErrCycleInFlight
func (g *MemoryGuard) Acquire(_ context.Context, userID uuid.UUID) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, taken := g.held[userID]; taken {
		return nil, ErrCycleInFlight
	}
	g.held[userID] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.held, userID)
			g.mu.Unlock()
		})
	}
	return release, nil
}

var _ CycleGuard = (*MemoryGuard)(nil)

// releaseTimeout bounds the detached release write so a stuck backend cannot
// hang a finishing cycle.
const releaseTimeout = 5 * time.Second
