package session

import (
	"context"
	"time"

	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/utils/clock"
)

// QuestionResponse is one answered questionnaire item
type QuestionResponse struct {
	QuestionID  string    `json:"question_id"`
	UserText    string    `json:"user_text"`
	MappedScore int       `json:"mapped_score"`
	Timestamp   time.Time `json:"timestamp"`
}

// Entry is one user/assistant exchange in the transcript
type Entry struct {
	UserMessage string      `json:"user_message"`
	AIResponse  string      `json:"ai_response"`
	Phase       types.Phase `json:"phase"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Session represents one user's end-to-end screening run. All mutation goes
// through the store; the session is never shared outside the store's lock
// except as a copied snapshot.
type Session struct {
	ID               types.SessionID    `json:"id"`
	UserName         string             `json:"user_name,omitempty"`
	Country          string             `json:"country,omitempty"`
	StartTime        time.Time          `json:"start_time"`
	LastActivity     time.Time          `json:"last_activity"`
	CurrentPhase     types.Phase        `json:"current_phase"`
	SelectedTool     types.Tool         `json:"selected_tool,omitempty"`
	Responses        []QuestionResponse `json:"responses"`
	HasPastDiagnosis *bool              `json:"has_past_diagnosis,omitempty"`
	CrisisDetected   bool               `json:"crisis_detected"`
	Completed        bool               `json:"completed"`
	History          []Entry            `json:"conversation_history"`
}

// New creates a session in the initial GREETING phase
func New(ctx context.Context, userName, country string) *Session {
	now := clock.Now(ctx)
	return &Session{
		ID:           types.NewSessionID(),
		UserName:     userName,
		Country:      country,
		StartTime:    now,
		LastActivity: now,
		CurrentPhase: types.PhaseGreeting,
	}
}

// Touch refreshes the idle-timeout window
func (s *Session) Touch(ctx context.Context) {
	s.LastActivity = clock.Now(ctx)
}

func (s *Session) AddResponse(ctx context.Context, questionID, userText string, score int) {
	s.Responses = append(s.Responses, QuestionResponse{
		QuestionID:  questionID,
		UserText:    userText,
		MappedScore: score,
		Timestamp:   clock.Now(ctx),
	})
	s.Touch(ctx)
}

func (s *Session) AddEntry(ctx context.Context, userMessage, aiResponse string, phase types.Phase) {
	s.History = append(s.History, Entry{
		UserMessage: userMessage,
		AIResponse:  aiResponse,
		Phase:       phase,
		Timestamp:   clock.Now(ctx),
	})
	s.Touch(ctx)
}

// Expired reports whether the idle timeout has elapsed since the last
// activity. Both the lazy lookup path and the background sweep use this
// single comparison.
func (s *Session) Expired(ctx context.Context, timeout time.Duration) bool {
	return clock.Now(ctx).After(s.LastActivity.Add(timeout))
}

// TotalScore sums the mapped scores of all recorded responses
func (s *Session) TotalScore() int {
	var total int
	for _, r := range s.Responses {
		total += r.MappedScore
	}
	return total
}

// Clone returns a deep copy safe to hand out after the store's lock is
// released
func (s *Session) Clone() *Session {
	dup := *s
	dup.Responses = append([]QuestionResponse(nil), s.Responses...)
	dup.History = append([]Entry(nil), s.History...)
	if s.HasPastDiagnosis != nil {
		v := *s.HasPastDiagnosis
		dup.HasPastDiagnosis = &v
	}
	return &dup
}
