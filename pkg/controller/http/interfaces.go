package http

import (
	"context"

	"github.com/mindwell-lab/serene/pkg/domain/model/session"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/usecase"
)

// UseCase is the surface of the conversation core consumed by the HTTP
// layer
type UseCase interface {
	StartSession(ctx context.Context, userName, country string) (types.SessionID, string, error)
	ProcessMessage(ctx context.Context, id types.SessionID, text string) (*usecase.Reply, error)
	GetSession(ctx context.Context, id types.SessionID) (*session.Session, error)
	GetSummary(ctx context.Context, id types.SessionID) (*usecase.Summary, error)
	GetHistory(ctx context.Context, id types.SessionID) ([]session.Entry, error)
	DeleteSession(ctx context.Context, id types.SessionID) error
	GetStats(ctx context.Context) session.Stats
	CleanupSessions(ctx context.Context) int
	CalculateScore(ctx context.Context, id types.SessionID, tool types.Tool, responses []usecase.BulkResponse) (*usecase.ScoreResult, error)
	CheckCrisis(ctx context.Context, text string, isIdeationQuestion bool, country string) usecase.CrisisCheck
	GetCrisisStatus(ctx context.Context) usecase.CrisisStatus
	ResetCrisis(ctx context.Context, id types.SessionID) error
}
