package session

import "github.com/mindwell-lab/serene/pkg/domain/types"

// Update is a typed partial update. Nil fields are left untouched. Only the
// fields listed here can be changed after creation; everything else
// (responses, history, timestamps) has its own append operation.
type Update struct {
	Phase            *types.Phase
	SelectedTool     *types.Tool
	CrisisDetected   *bool
	Completed        *bool
	UserName         *string
	Country          *string
	HasPastDiagnosis *bool

	// ClearResponses drops stale answers when a tool is (re)selected during
	// triage.
	ClearResponses bool
}

// Apply mutates s in place. Caller must hold the store lock.
func (u *Update) Apply(s *Session) {
	if u.Phase != nil {
		s.CurrentPhase = *u.Phase
	}
	if u.SelectedTool != nil {
		s.SelectedTool = *u.SelectedTool
	}
	if u.CrisisDetected != nil {
		s.CrisisDetected = *u.CrisisDetected
	}
	if u.Completed != nil {
		s.Completed = *u.Completed
	}
	if u.UserName != nil {
		s.UserName = *u.UserName
	}
	if u.Country != nil {
		s.Country = *u.Country
	}
	if u.HasPastDiagnosis != nil {
		s.HasPastDiagnosis = u.HasPastDiagnosis
	}
	if u.ClearResponses {
		s.Responses = nil
	}
}
