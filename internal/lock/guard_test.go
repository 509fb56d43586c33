package lock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryGuard_SecondAcquireFails(t *testing.T) {
	t.Parallel()

	guard := NewMemoryGuard()
	userID := uuid.New()

	release, err := guard.Acquire(context.Background(), userID)
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}

	if _, err := guard.Acquire(context.Background(), userID); !errors.Is(err, ErrCycleInFlight) {
		t.Errorf("second Acquire() error = %v, want ErrCycleInFlight", err)
	}

	release()

	releaseAgain, err := guard.Acquire(context.Background(), userID)
	if err != nil {
		t.Errorf("Acquire() after release error = %v", err)
	}
	releaseAgain()
}

func TestMemoryGuard_UsersIndependent(t *testing.T) {
	t.Parallel()

	guard := NewMemoryGuard()

	releaseA, err := guard.Acquire(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Acquire(a) error = %v", err)
	}
	defer releaseA()

	releaseB, err := guard.Acquire(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Acquire(b) error = %v", err)
	}
	defer releaseB()
}

func TestMemoryGuard_DoubleReleaseHarmless(t *testing.T) {
	t.Parallel()

	guard := NewMemoryGuard()
	userID := uuid.New()

	release, err := guard.Acquire(context.Background(), userID)
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	release()
	release() // no panic, no double delete of a newer hold

	releaseAgain, err := guard.Acquire(context.Background(), userID)
	if err != nil {
		t.Fatalf("Acquire() after double release error = %v", err)
	}

	// A stale release func from the first hold must not free the new hold.
	release()
	if _, err := guard.Acquire(context.Background(), userID); !errors.Is(err, ErrCycleInFlight) {
		t.Errorf("stale release freed an active hold: Acquire() error = %v", err)
	}
	releaseAgain()
}

func TestMemoryGuard_ConcurrentAcquireSingleWinner(t *testing.T) {
	t.Parallel()

	guard := NewMemoryGuard()
	userID := uuid.New()

	const contenders = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	var releases []func()

	for range contenders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := guard.Acquire(context.Background(), userID)
			if err == nil {
				mu.Lock()
				winners++
				releases = append(releases, release)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
	for _, release := range releases {
		release()
	}
}
