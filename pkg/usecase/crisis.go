package usecase

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/mindwell-lab/serene/pkg/domain/model/session"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/utils/clock"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

// CrisisCheck is the outcome of a standalone crisis evaluation, detached
// from any session
type CrisisCheck struct {
	ShouldOverride bool                `json:"should_override"`
	Level          types.CrisisLevel   `json:"level"`
	Message        string              `json:"message,omitempty"`
	TriggeredBy    []string            `json:"triggered_by,omitempty"`
	Trigger        types.CrisisTrigger `json:"trigger,omitempty"`
}

// CheckCrisis evaluates a single message without touching any session.
// When isIdeationQuestion is set, the ideation classifier runs in addition
// to the trigger-word scan. A positive result latches the process tracker.
func (u *UseCases) CheckCrisis(ctx context.Context, text string, isIdeationQuestion bool, country string) CrisisCheck {
	if result := u.monitor.Check(text); result.Level == types.CrisisLevelCritical {
		u.tracker.Activate(ctx)
		return CrisisCheck{
			ShouldOverride: true,
			Level:          types.CrisisLevelCritical,
			Message:        u.renderCrisisMessage(country),
			TriggeredBy:    result.Triggered,
			Trigger:        types.CrisisTriggerKeywords,
		}
	}

	if isIdeationQuestion && u.monitor.CheckIdeation(text) {
		u.tracker.Activate(ctx)
		return CrisisCheck{
			ShouldOverride: true,
			Level:          types.CrisisLevelCritical,
			Message:        u.renderCrisisMessage(country),
			Trigger:        types.CrisisTriggerIdeation,
		}
	}

	return CrisisCheck{Level: types.CrisisLevelNone}
}

// CrisisStatus is the operational view of the process-wide crisis latch
type CrisisStatus struct {
	Active      bool   `json:"crisis_active"`
	ActivatedAt string `json:"activated_at,omitempty"`
	Age         string `json:"age,omitempty"`
}

// GetCrisisStatus reports whether any conversation in this process has hit
// a crisis since the last reset
func (u *UseCases) GetCrisisStatus(ctx context.Context) CrisisStatus {
	at, active := u.tracker.ActivatedAt()
	if !active {
		return CrisisStatus{}
	}
	return CrisisStatus{
		Active:      true,
		ActivatedAt: at.Format("2006-01-02T15:04:05Z07:00"),
		Age:         humanize.RelTime(at, clock.Now(ctx), "ago", "from now"),
	}
}

// ResetCrisis clears the process latch and, when a session ID is given,
// also clears that session's crisis flag and returns it to GREETING so the
// conversation can resume. An operator action, never triggered by user
// input.
func (u *UseCases) ResetCrisis(ctx context.Context, id types.SessionID) error {
	u.tracker.Reset()

	if id == "" {
		logging.From(ctx).Info("process crisis latch reset")
		return nil
	}

	phase := types.PhaseGreeting
	detected := false
	if err := u.store.Update(ctx, id, session.Update{
		Phase:          &phase,
		CrisisDetected: &detected,
	}); err != nil {
		return err
	}

	logging.From(ctx).Info("session crisis state reset", "session_id", id)
	return nil
}

// renderCrisisMessage builds the crisis text. With an emergency directory
// wired in, the message includes localized contacts; otherwise the
// configured response text is used as-is.
func (u *UseCases) renderCrisisMessage(country string) string {
	if u.emergency != nil {
		return u.emergency.GenerateMessage(country)
	}
	return u.monitor.Message()
}
