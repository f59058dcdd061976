package interfaces

import (
	"context"

	"github.com/mindwell-lab/serene/pkg/domain/model/session"
	"github.com/mindwell-lab/serene/pkg/domain/types"
)

// SessionStore is the single owner of session mutation. Get returns a
// snapshot; in-place mutation happens only inside WithSession, which holds
// the store lock for the whole read-then-write pass so concurrent messages
// for the same session are serialized.
//
// Absent and expired sessions are reported as errs.ErrSessionNotFound, never
// as a panic or a silent success.
type SessionStore interface {
	Create(ctx context.Context, userName, country string) (types.SessionID, error)
	Get(ctx context.Context, id types.SessionID) (*session.Session, error)
	WithSession(ctx context.Context, id types.SessionID, fn func(ctx context.Context, s *session.Session) error) error
	Update(ctx context.Context, id types.SessionID, update session.Update) error
	AddResponse(ctx context.Context, id types.SessionID, questionID, userText string, score int) error
	AddConversation(ctx context.Context, id types.SessionID, userMsg, aiMsg string, phase types.Phase) error
	Delete(ctx context.Context, id types.SessionID) error
	SweepExpired(ctx context.Context) int
	Stats(ctx context.Context) session.Stats
	ClearAll(ctx context.Context)
}
