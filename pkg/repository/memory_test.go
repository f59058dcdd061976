package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/domain/model/session"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/repository"
	"github.com/mindwell-lab/serene/pkg/utils/clock"
)

func frozen(at time.Time) context.Context {
	return clock.With(context.Background(), func() time.Time { return at })
}

func TestCreateAndGet(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := frozen(now)
	store := repository.NewMemory()

	id, err := store.Create(ctx, "alex", "US")
	gt.NoError(t, err)
	gt.Value(t, id).NotEqual(types.SessionID(""))

	s, err := store.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, s.ID, id)
	gt.Equal(t, s.UserName, "alex")
	gt.Equal(t, s.Country, "US")
	gt.Equal(t, s.CurrentPhase, types.PhaseGreeting)
}

func TestGetUnknownSession(t *testing.T) {
	store := repository.NewMemory()

	_, err := store.Get(context.Background(), types.NewSessionID())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, errs.ErrSessionNotFound))
}

func TestExpiredSessionIsAbsent(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemory(repository.WithTimeout(30 * time.Minute))

	id, err := store.Create(frozen(start), "", "")
	gt.NoError(t, err)

	// Lazy expiry: the lookup itself treats the session as gone
	_, err = store.Get(frozen(start.Add(31*time.Minute)), id)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, errs.ErrSessionNotFound))
}

func TestReadExtendsLife(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemory(repository.WithTimeout(30 * time.Minute))

	id, err := store.Create(frozen(start), "", "")
	gt.NoError(t, err)

	// A read at +20m refreshes the idle window
	_, err = store.Get(frozen(start.Add(20*time.Minute)), id)
	gt.NoError(t, err)

	// +45m from start is only +25m from the last read, so still alive
	s, err := store.Get(frozen(start.Add(45*time.Minute)), id)
	gt.NoError(t, err)
	gt.Equal(t, s.LastActivity, start.Add(45*time.Minute))
}

func TestSweepExpired(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemory(repository.WithTimeout(10 * time.Minute))

	for i := 0; i < 3; i++ {
		_, err := store.Create(frozen(start), "", "")
		gt.NoError(t, err)
	}
	survivor, err := store.Create(frozen(start.Add(8*time.Minute)), "", "")
	gt.NoError(t, err)

	removed := store.SweepExpired(frozen(start.Add(11 * time.Minute)))
	gt.Equal(t, removed, 3)

	_, err = store.Get(frozen(start.Add(11*time.Minute)), survivor)
	gt.NoError(t, err)
}

func TestCapacityEvictsOldest(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemory(
		repository.WithTimeout(time.Hour),
		repository.WithMaxSessions(3),
	)

	oldest, err := store.Create(frozen(start), "", "")
	gt.NoError(t, err)
	id2, err := store.Create(frozen(start.Add(time.Minute)), "", "")
	gt.NoError(t, err)
	id3, err := store.Create(frozen(start.Add(2*time.Minute)), "", "")
	gt.NoError(t, err)

	// Fourth create at capacity evicts exactly the oldest-by-activity
	id4, err := store.Create(frozen(start.Add(3*time.Minute)), "", "")
	gt.NoError(t, err)

	ctx := frozen(start.Add(4 * time.Minute))
	_, err = store.Get(ctx, oldest)
	gt.True(t, errors.Is(err, errs.ErrSessionNotFound))
	for _, id := range []types.SessionID{id2, id3, id4} {
		_, err := store.Get(ctx, id)
		gt.NoError(t, err)
	}
	gt.Equal(t, store.Stats(ctx).TotalActive, 3)
}

func TestCapacitySweepsBeforeEvicting(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store := repository.NewMemory(
		repository.WithTimeout(10*time.Minute),
		repository.WithMaxSessions(2),
	)

	_, err := store.Create(frozen(start), "", "")
	gt.NoError(t, err)
	keeper, err := store.Create(frozen(start.Add(9*time.Minute)), "", "")
	gt.NoError(t, err)

	// First session is expired by now; sweep frees a slot, nothing live is
	// evicted
	ctx := frozen(start.Add(12 * time.Minute))
	_, err = store.Create(ctx, "", "")
	gt.NoError(t, err)

	_, err = store.Get(ctx, keeper)
	gt.NoError(t, err)
}

func TestTypedUpdate(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()

	id, err := store.Create(ctx, "", "")
	gt.NoError(t, err)

	phase := types.PhaseTriage
	detected := true
	gt.NoError(t, store.Update(ctx, id, session.Update{
		Phase:          &phase,
		CrisisDetected: &detected,
	}))

	s, err := store.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, s.CurrentPhase, types.PhaseTriage)
	gt.True(t, s.CrisisDetected)

	// Update on a vanished session reports not found
	gt.NoError(t, store.Delete(ctx, id))
	err = store.Update(ctx, id, session.Update{Phase: &phase})
	gt.True(t, errors.Is(err, errs.ErrSessionNotFound))
}

func TestAppendOperations(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()

	id, err := store.Create(ctx, "", "")
	gt.NoError(t, err)

	gt.NoError(t, store.AddResponse(ctx, id, "phq9_1", "several days", 1))
	gt.NoError(t, store.AddResponse(ctx, id, "phq9_2", "nearly every day", 3))
	gt.NoError(t, store.AddConversation(ctx, id, "hello", "welcome", types.PhaseGreeting))

	s, err := store.Get(ctx, id)
	gt.NoError(t, err)
	gt.Array(t, s.Responses).Length(2)
	gt.Equal(t, s.TotalScore(), 4)
	gt.Array(t, s.History).Length(1)
	gt.Equal(t, s.History[0].AIResponse, "welcome")
}

func TestGetReturnsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()

	id, err := store.Create(ctx, "", "")
	gt.NoError(t, err)
	gt.NoError(t, store.AddResponse(ctx, id, "gad7_1", "sometimes", 1))

	snap, err := store.Get(ctx, id)
	gt.NoError(t, err)
	snap.Responses[0].MappedScore = 99
	snap.CrisisDetected = true

	fresh, err := store.Get(ctx, id)
	gt.NoError(t, err)
	gt.Equal(t, fresh.Responses[0].MappedScore, 1)
	gt.False(t, fresh.CrisisDetected)
}

func TestWithSessionSerializesMutation(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()

	id, err := store.Create(ctx, "", "")
	gt.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.WithSession(ctx, id, func(ctx context.Context, s *session.Session) error {
				// read-then-write inside one pass
				count := len(s.Responses)
				s.AddResponse(ctx, fmt.Sprintf("q_%d", count+1), "often", 2)
				return nil
			})
		}(i)
	}
	wg.Wait()

	s, err := store.Get(ctx, id)
	gt.NoError(t, err)
	gt.Array(t, s.Responses).Length(50)
	gt.Equal(t, s.TotalScore(), 100)
}

func TestConcurrentCreateRespectsCapacity(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory(repository.WithMaxSessions(10))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Create(ctx, "", "")
		}()
	}
	wg.Wait()

	gt.Equal(t, store.Stats(ctx).TotalActive, 10)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory(repository.WithMaxSessions(100))

	idA, err := store.Create(ctx, "", "")
	gt.NoError(t, err)
	_, err = store.Create(ctx, "", "")
	gt.NoError(t, err)

	phase := types.PhaseCrisisResponse
	detected := true
	gt.NoError(t, store.Update(ctx, idA, session.Update{Phase: &phase, CrisisDetected: &detected}))

	stats := store.Stats(ctx)
	gt.Equal(t, stats.TotalActive, 2)
	gt.Equal(t, stats.CrisisActive, 1)
	gt.Equal(t, stats.ByPhase[types.PhaseCrisisResponse], 1)
	gt.Equal(t, stats.ByPhase[types.PhaseGreeting], 1)
	gt.Equal(t, stats.MaxSessions, 100)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemory()

	for i := 0; i < 5; i++ {
		_, err := store.Create(ctx, "", "")
		gt.NoError(t, err)
	}
	store.ClearAll(ctx)
	gt.Equal(t, store.Stats(ctx).TotalActive, 0)
}
