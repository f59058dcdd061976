package usecase

import (
	"context"

	"github.com/mindwell-lab/serene/pkg/domain/model/session"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

// StartSession creates a new session and returns its ID together with the
// opening message. The welcome is recorded in the transcript so the first
// user message lands in an already-greeted conversation.
func (u *UseCases) StartSession(ctx context.Context, userName, country string) (types.SessionID, string, error) {
	id, err := u.store.Create(ctx, userName, country)
	if err != nil {
		return "", "", err
	}

	welcome := orDefault(ctx, u.cfg.Intro.Welcome, "intro.welcome", fallbackWelcome)
	if err := u.store.AddConversation(ctx, id, "", welcome, types.PhaseGreeting); err != nil {
		return "", "", err
	}

	logging.From(ctx).Info("session started", "session_id", id, "country", country)
	return id, welcome, nil
}

// GetSession returns a snapshot of the full session state
func (u *UseCases) GetSession(ctx context.Context, id types.SessionID) (*session.Session, error) {
	return u.store.Get(ctx, id)
}

// Summary is the condensed session view served by the info endpoint
type Summary struct {
	ID             types.SessionID `json:"session_id"`
	UserName       string          `json:"user_name,omitempty"`
	Country        string          `json:"country,omitempty"`
	Phase          types.Phase     `json:"current_phase"`
	SelectedTool   types.Tool      `json:"selected_tool,omitempty"`
	AnsweredCount  int             `json:"answered_count"`
	TotalScore     int             `json:"total_score"`
	CrisisDetected bool            `json:"crisis_detected"`
	Completed      bool            `json:"completed"`
	StartedAt      string          `json:"started_at"`
	LastActivity   string          `json:"last_activity"`
}

// GetSummary returns the condensed view of a session
func (u *UseCases) GetSummary(ctx context.Context, id types.SessionID) (*Summary, error) {
	s, err := u.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Summary{
		ID:             s.ID,
		UserName:       s.UserName,
		Country:        s.Country,
		Phase:          s.CurrentPhase,
		SelectedTool:   s.SelectedTool,
		AnsweredCount:  len(s.Responses),
		TotalScore:     s.TotalScore(),
		CrisisDetected: s.CrisisDetected,
		Completed:      s.Completed,
		StartedAt:      s.StartTime.Format("2006-01-02T15:04:05Z07:00"),
		LastActivity:   s.LastActivity.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// GetHistory returns the conversation transcript
func (u *UseCases) GetHistory(ctx context.Context, id types.SessionID) ([]session.Entry, error) {
	s, err := u.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.History, nil
}

// DeleteSession removes a session immediately
func (u *UseCases) DeleteSession(ctx context.Context, id types.SessionID) error {
	if err := u.store.Delete(ctx, id); err != nil {
		return err
	}
	logging.From(ctx).Info("session deleted", "session_id", id)
	return nil
}

// GetStats returns the store's aggregate counters
func (u *UseCases) GetStats(ctx context.Context) session.Stats {
	return u.store.Stats(ctx)
}

// CleanupSessions sweeps expired sessions on demand and returns the number
// removed. The background sweeper does the same on a timer; this is the
// manual trigger.
func (u *UseCases) CleanupSessions(ctx context.Context) int {
	removed := u.store.SweepExpired(ctx)
	if removed > 0 {
		logging.From(ctx).Info("manual cleanup removed sessions", "count", removed)
	}
	return removed
}
