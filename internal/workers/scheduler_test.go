package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/models"
	"github.com/chroniclehq/feedgen/internal/queue"
)

// mockUserRepo is a mock implementation of database.UserRepositoryInterface
type mockUserRepo struct {
	listActiveSinceFunc func(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
	lastCutoff          time.Time
}

func (m *mockUserRepo) GetByID(_ context.Context, _ uuid.UUID) (*models.FeedUser, error) {
	return nil, database.ErrUserNotFound
}

func (m *mockUserRepo) Touch(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (m *mockUserRepo) SetGenerationPaused(_ context.Context, _ uuid.UUID, _ bool) error {
	return nil
}

func (m *mockUserRepo) ListActiveSince(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	m.lastCutoff = cutoff
	if m.listActiveSinceFunc != nil {
		return m.listActiveSinceFunc(ctx, cutoff)
	}
	return nil, nil
}

// mockPruner is a mock implementation of CooldownPruner
type mockPruner struct {
	pruneFunc  func(ctx context.Context, cutoff time.Time) (int64, error)
	lastCutoff time.Time
}

func (m *mockPruner) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.lastCutoff = cutoff
	if m.pruneFunc != nil {
		return m.pruneFunc(ctx, cutoff)
	}
	return 0, nil
}

var (
	_ database.UserRepositoryInterface = (*mockUserRepo)(nil)
	_ CooldownPruner                   = (*mockPruner)(nil)
)

func TestScheduleDailyCycles_EnqueuesJobPerActiveUser(t *testing.T) {
	t.Parallel()

	userIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	users := &mockUserRepo{
		listActiveSinceFunc: func(_ context.Context, _ time.Time) ([]uuid.UUID, error) {
			return userIDs, nil
		},
	}
	jobQueue := &mockJobQueue{}

	s := NewCycleScheduler(jobQueue, users, nil, zap.NewNop())

	before := time.Now().UTC()
	if err := s.ScheduleDailyCycles(context.Background()); err != nil {
		t.Fatalf("ScheduleDailyCycles() error = %v", err)
	}

	if len(jobQueue.enqueued) != len(userIDs) {
		t.Fatalf("enqueued %d jobs, want %d", len(jobQueue.enqueued), len(userIDs))
	}

	for i, job := range jobQueue.enqueued {
		if job.Type != queue.JobTypeGenerationCycle {
			t.Errorf("job %d type = %q, want %q", i, job.Type, queue.JobTypeGenerationCycle)
		}
		if job.UserID != userIDs[i] {
			t.Errorf("job %d user = %s, want %s", i, job.UserID, userIDs[i])
		}
		if job.NotBefore == nil {
			t.Fatalf("job %d has no NotBefore", i)
		}
		if job.NotBefore.Hour() != defaultScheduleHourUTC {
			t.Errorf("job %d slot hour = %d, want %d", i, job.NotBefore.Hour(), defaultScheduleHourUTC)
		}
		if job.NotBefore.Before(before.Add(-time.Second)) {
			t.Errorf("job %d slot %v is in the past", i, job.NotBefore)
		}
		if job.NotAfter == nil || !job.NotAfter.Equal(job.NotBefore.Add(24*time.Hour)) {
			t.Errorf("job %d NotAfter = %v, want slot+24h", i, job.NotAfter)
		}
		if job.Metadata["trigger"] != "schedule" {
			t.Errorf("job %d trigger metadata = %v, want %q", i, job.Metadata["trigger"], "schedule")
		}
		if job.RetryCount != 0 {
			t.Errorf("job %d retry count = %d, want 0", i, job.RetryCount)
		}
	}

	// The activity window is the engine's seven-day lookback.
	wantCutoff := before.Add(-defaultActivityWindow)
	if users.lastCutoff.Before(wantCutoff.Add(-time.Minute)) || users.lastCutoff.After(wantCutoff.Add(time.Minute)) {
		t.Errorf("activity cutoff = %v, want about %v", users.lastCutoff, wantCutoff)
	}
}

func TestScheduleDailyCycles_ListFailureReturnsError(t *testing.T) {
	t.Parallel()

	users := &mockUserRepo{
		listActiveSinceFunc: func(context.Context, time.Time) ([]uuid.UUID, error) {
			return nil, errors.New("connection refused")
		},
	}
	jobQueue := &mockJobQueue{}

	s := NewCycleScheduler(jobQueue, users, nil, zap.NewNop())

	if err := s.ScheduleDailyCycles(context.Background()); err == nil {
		t.Fatal("ScheduleDailyCycles() = nil error, want failure when user list is unavailable")
	}
	if len(jobQueue.enqueued) != 0 {
		t.Errorf("enqueued %d jobs, want 0", len(jobQueue.enqueued))
	}
}

func TestScheduleDailyCycles_EnqueueFailureSkipsUser(t *testing.T) {
	t.Parallel()

	userIDs := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	users := &mockUserRepo{
		listActiveSinceFunc: func(context.Context, time.Time) ([]uuid.UUID, error) {
			return userIDs, nil
		},
	}

	var enqueued []*queue.Job
	calls := 0
	jobQueue := &mockJobQueue{
		enqueueFunc: func(_ context.Context, job *queue.Job) error {
			calls++
			if calls == 2 {
				return errors.New("broker unavailable")
			}
			enqueued = append(enqueued, job)
			return nil
		},
	}

	s := NewCycleScheduler(jobQueue, users, nil, zap.NewNop())

	// One lost user must not fail the whole pass.
	if err := s.ScheduleDailyCycles(context.Background()); err != nil {
		t.Fatalf("ScheduleDailyCycles() error = %v", err)
	}

	if len(enqueued) != 2 {
		t.Fatalf("enqueued %d jobs, want 2", len(enqueued))
	}
	if enqueued[0].UserID != userIDs[0] || enqueued[1].UserID != userIDs[2] {
		t.Errorf("enqueued users = %s, %s; want first and third", enqueued[0].UserID, enqueued[1].UserID)
	}
}

func TestPruneStaleCooldowns(t *testing.T) {
	t.Parallel()

	pruner := &mockPruner{
		pruneFunc: func(_ context.Context, _ time.Time) (int64, error) {
			return 7, nil
		},
	}

	s := NewCycleScheduler(&mockJobQueue{}, &mockUserRepo{}, pruner, zap.NewNop())

	pruned, err := s.PruneStaleCooldowns(context.Background())
	if err != nil {
		t.Fatalf("PruneStaleCooldowns() error = %v", err)
	}
	if pruned != 7 {
		t.Errorf("pruned = %d, want 7", pruned)
	}

	wantCutoff := time.Now().UTC().AddDate(0, 0, -models.DefaultCooldownDays)
	if pruner.lastCutoff.Before(wantCutoff.Add(-time.Minute)) || pruner.lastCutoff.After(wantCutoff.Add(time.Minute)) {
		t.Errorf("prune cutoff = %v, want about %v", pruner.lastCutoff, wantCutoff)
	}
}

func TestPruneStaleCooldowns_NilPrunerIsNoOp(t *testing.T) {
	t.Parallel()

	s := NewCycleScheduler(&mockJobQueue{}, &mockUserRepo{}, nil, zap.NewNop())

	pruned, err := s.PruneStaleCooldowns(context.Background())
	if err != nil {
		t.Fatalf("PruneStaleCooldowns() error = %v", err)
	}
	if pruned != 0 {
		t.Errorf("pruned = %d, want 0", pruned)
	}
}
