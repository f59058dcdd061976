package repository

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/interfaces"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/domain/model/session"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/utils/clock"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

const (
	DefaultTimeout     = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// Memory is the in-memory session store. One mutex guards the whole table;
// operations are short and CPU-only, so coarse locking keeps capacity
// eviction and sweeping simple. Sessions are gone on process restart, which
// is the intended privacy trade-off.
type Memory struct {
	mu       sync.Mutex
	sessions map[types.SessionID]*session.Session

	timeout     time.Duration
	maxSessions int
}

var _ interfaces.SessionStore = &Memory{}

type Option func(*Memory)

// WithTimeout sets the idle timeout. Reads refresh the window, so this is a
// true idle timeout, not an absolute session lifetime.
func WithTimeout(d time.Duration) Option {
	return func(m *Memory) {
		m.timeout = d
	}
}

func WithMaxSessions(n int) Option {
	return func(m *Memory) {
		m.maxSessions = n
	}
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		sessions:    make(map[types.SessionID]*session.Session),
		timeout:     DefaultTimeout,
		maxSessions: DefaultMaxSessions,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (r *Memory) Create(ctx context.Context, userName, country string) (types.SessionID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.maxSessions {
		if removed := r.sweepLocked(ctx); removed > 0 {
			logging.From(ctx).Debug("swept expired sessions before create", "removed", removed)
		}
		if len(r.sessions) >= r.maxSessions {
			r.evictOldestLocked(ctx)
		}
	}

	s := session.New(ctx, userName, country)
	for {
		if _, exists := r.sessions[s.ID]; !exists {
			break
		}
		s.ID = types.NewSessionID()
	}

	r.sessions[s.ID] = s
	return s.ID, nil
}

// Get returns a snapshot of the session, refreshing its idle window. An
// expired session is removed and reported as not found, whether or not the
// background sweep has reached it yet.
func (r *Memory) Get(ctx context.Context, id types.SessionID) (*session.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookupLocked(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Clone(), nil
}

// WithSession runs fn with exclusive access to the live session. The store
// lock is held for the duration of fn, so a full message-handling pass
// cannot interleave with other mutations of the same session. fn must not
// block.
func (r *Memory) WithSession(ctx context.Context, id types.SessionID, fn func(ctx context.Context, s *session.Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookupLocked(ctx, id)
	if err != nil {
		return err
	}
	return fn(ctx, s)
}

func (r *Memory) Update(ctx context.Context, id types.SessionID, update session.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookupLocked(ctx, id)
	if err != nil {
		return err
	}
	update.Apply(s)
	s.Touch(ctx)
	return nil
}

func (r *Memory) AddResponse(ctx context.Context, id types.SessionID, questionID, userText string, score int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookupLocked(ctx, id)
	if err != nil {
		return err
	}
	s.AddResponse(ctx, questionID, userText, score)
	return nil
}

func (r *Memory) AddConversation(ctx context.Context, id types.SessionID, userMsg, aiMsg string, phase types.Phase) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookupLocked(ctx, id)
	if err != nil {
		return err
	}
	s.AddEntry(ctx, userMsg, aiMsg, phase)
	return nil
}

func (r *Memory) Delete(ctx context.Context, id types.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return goerr.Wrap(errs.ErrSessionNotFound, "delete failed",
			goerr.TV(errs.SessionIDKey, id))
	}
	delete(r.sessions, id)
	return nil
}

// SweepExpired removes every session past its idle timeout and returns the
// count. Called periodically by the Sweeper and on demand via the API.
func (r *Memory) SweepExpired(ctx context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweepLocked(ctx)
}

func (r *Memory) Stats(ctx context.Context) session.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := session.Stats{
		TotalActive: len(r.sessions),
		ByPhase:     make(map[types.Phase]int),
		Timeout:     r.timeout,
		TimeoutMin:  int(r.timeout / time.Minute),
		MaxSessions: r.maxSessions,
	}
	for _, s := range r.sessions {
		if s.Completed {
			stats.Completed++
		}
		if s.CrisisDetected {
			stats.CrisisActive++
		}
		stats.ByPhase[s.CurrentPhase]++
	}
	return stats
}

// ClearAll drops every session. Used by shutdown and tests.
func (r *Memory) ClearAll(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[types.SessionID]*session.Session)
}

// lookupLocked implements the lookup-and-touch semantics every operation is
// defined in terms of: expired sessions are deleted on sight, live ones get
// their activity refreshed.
func (r *Memory) lookupLocked(ctx context.Context, id types.SessionID) (*session.Session, error) {
	s, exists := r.sessions[id]
	if !exists {
		return nil, goerr.Wrap(errs.ErrSessionNotFound, "unknown session",
			goerr.TV(errs.SessionIDKey, id))
	}
	if s.Expired(ctx, r.timeout) {
		delete(r.sessions, id)
		return nil, goerr.Wrap(errs.ErrSessionNotFound, "session expired",
			goerr.TV(errs.SessionIDKey, id),
			goerr.V("last_activity", s.LastActivity))
	}
	s.Touch(ctx)
	return s, nil
}

func (r *Memory) sweepLocked(ctx context.Context) int {
	var expired []types.SessionID
	for id, s := range r.sessions {
		if s.Expired(ctx, r.timeout) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(r.sessions, id)
	}
	return len(expired)
}

func (r *Memory) evictOldestLocked(ctx context.Context) {
	var oldest types.SessionID
	var oldestAt time.Time
	for id, s := range r.sessions {
		if oldest == "" || s.LastActivity.Before(oldestAt) {
			oldest = id
			oldestAt = s.LastActivity
		}
	}
	if oldest != "" {
		delete(r.sessions, oldest)
		logging.From(ctx).Warn("evicted oldest session at capacity",
			"session_id", oldest,
			"last_activity", oldestAt,
			"age", clock.Since(ctx, oldestAt).String())
	}
}
