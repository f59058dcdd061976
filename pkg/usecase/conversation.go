package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/domain/model/session"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

// Fallback texts for configuration gaps. A missing prompt degrades to these
// rather than crashing the flow.
const (
	fallbackWelcome       = "Hello. Would you like to begin a brief wellbeing check-in? Please say 'yes' or 'no'."
	fallbackGreetingRetry = "I didn't quite catch that. Would you like to continue? Please say 'yes' or 'no'."
	fallbackExit          = "That's completely fine. Take care."
	fallbackMoodPrompt    = "Could you tell me a bit about how you've been feeling recently?"
	fallbackTriageRetry   = "Could you tell me if you are feeling more sad, anxious, or just generally stressed?"
	fallbackAnswerRetry   = "I want to make sure I understand you correctly. Could you rephrase your answer?"
	fallbackClosing       = "Take care."
	apologyMessage        = "I'm sorry, I ran into a problem on my end. Could we try that again?"
)

// Next-action signals surfaced to the API layer
const (
	ActionStop         = "stop"
	ActionWaitForIntro = "wait_for_intro_response"
	ActionGetMood      = "get_mood"
)

// Reply is the outcome of one processed message
type Reply struct {
	AIResponse     string              `json:"ai_response"`
	Phase          types.Phase         `json:"current_phase"`
	CrisisDetected bool                `json:"crisis_detected"`
	NextAction     string              `json:"next_action,omitempty"`
	SelectedTool   types.Tool          `json:"selected_tool,omitempty"`
	QuestionNumber int                 `json:"question_number,omitempty"`
	TotalScore     *int                `json:"total_score,omitempty"`
	Severity       string              `json:"severity_level,omitempty"`
	Completed      bool                `json:"completed,omitempty"`
	CrisisTrigger  types.CrisisTrigger `json:"crisis_trigger,omitempty"`
}

// ProcessMessage runs one inbound message through the state machine. The
// whole pass executes inside the store's lock for this session, so the
// guardrail check, the phase dispatch and every mutation are one atomic
// unit; a concurrent message for the same session waits its turn.
//
// Returns errs.ErrSessionNotFound for an absent or expired session. Any
// other failure inside a phase handler is logged and converted to an
// apology that leaves the session untouched.
func (u *UseCases) ProcessMessage(ctx context.Context, id types.SessionID, text string) (*Reply, error) {
	var reply *Reply
	err := u.store.WithSession(ctx, id, func(ctx context.Context, s *session.Session) error {
		reply = u.handleMessage(ctx, s, text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

func (u *UseCases) handleMessage(ctx context.Context, s *session.Session, text string) (reply *Reply) {
	defer func() {
		if r := recover(); r != nil {
			errs.Handle(ctx, goerr.New("panic in conversation handler",
				goerr.T(errs.TagInternal),
				goerr.TV(errs.SessionIDKey, s.ID),
				goerr.TV(errs.PhaseKey, s.CurrentPhase),
				goerr.V("panic", fmt.Sprintf("%v", r)),
			))
			// current phase and session state stay as they were
			reply = &Reply{
				AIResponse:     apologyMessage,
				Phase:          s.CurrentPhase,
				CrisisDetected: s.CrisisDetected,
			}
		}
	}()

	// The guardrail precedes all phase logic, so a crisis signal can never
	// be skipped by the screening flow, including mid-questionnaire.
	if result := u.monitor.Check(text); result.Level == types.CrisisLevelCritical {
		logging.From(ctx).Warn("crisis trigger detected",
			"session_id", s.ID, "triggered", result.Triggered, "phase", s.CurrentPhase)
		return u.enterCrisis(ctx, s, text, types.CrisisTriggerKeywords)
	}

	// A latched session stays in crisis until an explicit reset. The reply
	// repeats the crisis message without mutating the session.
	if s.CrisisDetected {
		msg := u.renderCrisisMessage(s.Country)
		return &Reply{
			AIResponse:     msg,
			Phase:          types.PhaseCrisisResponse,
			CrisisDetected: true,
			NextAction:     ActionStop,
		}
	}

	switch s.CurrentPhase {
	case types.PhaseGreeting:
		return u.handleGreeting(ctx, s, text)
	case types.PhaseTriage:
		return u.handleTriage(ctx, s, text)
	case types.PhaseScreening:
		return u.handleScreening(ctx, s, text)
	case types.PhaseResults:
		return u.handleResults(ctx, s, text)
	case types.PhaseCrisisResponse:
		// reached only when crisisDetected was reset but the phase was not;
		// treat it the same as the latch above
		msg := u.renderCrisisMessage(s.Country)
		return &Reply{
			AIResponse:     msg,
			Phase:          types.PhaseCrisisResponse,
			CrisisDetected: s.CrisisDetected,
			NextAction:     ActionStop,
		}
	default:
		return u.recoverUnknownPhase(ctx, s, text)
	}
}

func (u *UseCases) handleGreeting(ctx context.Context, s *session.Session, text string) *Reply {
	intro := u.cfg.Intro

	// Very first exchange: send the welcome, do not advance
	if len(s.History) == 0 {
		welcome := orDefault(ctx, intro.Welcome, "intro.welcome", fallbackWelcome)
		s.AddEntry(ctx, text, welcome, types.PhaseGreeting)
		return &Reply{
			AIResponse: welcome,
			Phase:      types.PhaseGreeting,
			NextAction: ActionWaitForIntro,
		}
	}

	switch {
	case matchAny(text, intro.YesKeywords):
		prompt := orDefault(ctx, u.cfg.MoodSelection.Prompt, "moodSelection.prompt", fallbackMoodPrompt)
		s.CurrentPhase = types.PhaseTriage
		s.AddEntry(ctx, text, prompt, types.PhaseTriage)
		return &Reply{
			AIResponse: prompt,
			Phase:      types.PhaseTriage,
			NextAction: ActionGetMood,
		}

	case matchAny(text, intro.NoKeywords):
		exit := orDefault(ctx, intro.ExitResponse, "intro.exitResponse", fallbackExit)
		s.Completed = true
		s.AddEntry(ctx, text, exit, types.PhaseGreeting)
		return &Reply{
			AIResponse: exit,
			Phase:      types.PhaseGreeting,
			Completed:  true,
		}

	default:
		retry := orDefault(ctx, intro.ClarifyPrompt, "intro.clarifyPrompt", fallbackGreetingRetry)
		s.AddEntry(ctx, text, retry, types.PhaseGreeting)
		return &Reply{
			AIResponse: retry,
			Phase:      types.PhaseGreeting,
		}
	}
}

func (u *UseCases) handleTriage(ctx context.Context, s *session.Session, text string) *Reply {
	var selected types.Tool
	for _, tool := range types.Tools() {
		// declared tool order breaks ties between overlapping keyword sets
		if matchAny(text, u.cfg.MoodSelection.Routing[tool]) {
			selected = tool
			break
		}
	}

	if selected == "" {
		retry := orDefault(ctx, u.cfg.MoodSelection.ClarifyPrompt, "moodSelection.clarifyPrompt", fallbackTriageRetry)
		s.AddEntry(ctx, text, retry, types.PhaseTriage)
		return &Reply{
			AIResponse: retry,
			Phase:      types.PhaseTriage,
		}
	}

	q, ok := u.cfg.Questionnaire(selected)
	if !ok || len(q.Questions) == 0 {
		logging.From(ctx).Error("selected tool has no questions configured", "tool", selected)
		retry := orDefault(ctx, u.cfg.MoodSelection.ClarifyPrompt, "moodSelection.clarifyPrompt", fallbackTriageRetry)
		s.AddEntry(ctx, text, retry, types.PhaseTriage)
		return &Reply{AIResponse: retry, Phase: types.PhaseTriage}
	}

	s.SelectedTool = selected
	s.Responses = nil // drop anything stale from a previous run
	s.CurrentPhase = types.PhaseScreening

	msg := "I understand. Let's talk a bit more about that. " + q.Questions[0]
	s.AddEntry(ctx, text, msg, types.PhaseScreening)
	return &Reply{
		AIResponse:     msg,
		Phase:          types.PhaseScreening,
		SelectedTool:   selected,
		QuestionNumber: 1,
	}
}

func (u *UseCases) handleScreening(ctx context.Context, s *session.Session, text string) *Reply {
	tool := s.SelectedTool
	if !tool.Validate() {
		// the invariant says this cannot happen while SCREENING; recover
		return u.recoverUnknownPhase(ctx, s, text)
	}

	q, ok := u.cfg.Questionnaire(tool)
	if !ok || len(q.Questions) == 0 {
		logging.From(ctx).Error("questionnaire vanished from config mid-screening", "tool", tool)
		return u.recoverUnknownPhase(ctx, s, text)
	}

	answered := len(s.Responses)
	if answered >= len(q.Questions) {
		// all questions already answered; finish rather than over-append
		return u.finishScreening(ctx, s, text, tool)
	}

	score := u.cfg.ScaleFor(tool).MapResponse(text)
	if score < 0 {
		clarify := orDefault(ctx, u.cfg.AnswerMapping.ClarifyPrompt, "answerMapping.clarifyPrompt", fallbackAnswerRetry)
		s.AddEntry(ctx, text, clarify, types.PhaseScreening)
		return &Reply{
			AIResponse: clarify,
			Phase:      types.PhaseScreening,
		}
	}

	questionID := questionID(tool, answered+1)

	// A positive answer on the tool's direct self-harm item overrides the
	// normal flow. The response is still recorded first.
	if q.CrisisQuestionIndex != nil && answered == *q.CrisisQuestionIndex && score > 0 {
		s.AddResponse(ctx, questionID, text, score)
		logging.From(ctx).Warn("ideation question answered positively",
			"session_id", s.ID, "question_id", questionID, "score", score)
		reply := u.enterCrisis(ctx, s, text, types.CrisisTriggerIdeation)
		return reply
	}

	s.AddResponse(ctx, questionID, text, score)

	if answered+1 < len(q.Questions) {
		next := q.Questions[answered+1]
		s.AddEntry(ctx, text, next, types.PhaseScreening)
		return &Reply{
			AIResponse:     next,
			Phase:          types.PhaseScreening,
			SelectedTool:   tool,
			QuestionNumber: answered + 2,
		}
	}

	return u.finishScreening(ctx, s, text, tool)
}

func (u *UseCases) finishScreening(ctx context.Context, s *session.Session, text string, tool types.Tool) *Reply {
	s.CurrentPhase = types.PhaseResults
	s.Completed = true

	total := s.TotalScore()
	outcome := u.scoring.Score(ctx, tool, total)

	response := outcome.Message
	if outcome.Suggestion != "" {
		response += "\n\nSuggestion: " + outcome.Suggestion
	}

	s.AddEntry(ctx, text, response, types.PhaseResults)
	return &Reply{
		AIResponse:   response,
		Phase:        types.PhaseResults,
		SelectedTool: tool,
		TotalScore:   &total,
		Severity:     outcome.Severity,
		Completed:    true,
	}
}

func (u *UseCases) handleResults(ctx context.Context, s *session.Session, text string) *Reply {
	closing := orDefault(ctx, u.cfg.Intro.ExitResponse, "intro.exitResponse", fallbackClosing)
	s.AddEntry(ctx, text, closing, types.PhaseResults)
	return &Reply{
		AIResponse: closing,
		Phase:      types.PhaseResults,
		Completed:  s.Completed,
	}
}

// recoverUnknownPhase resets a corrupted session back to the start. This is
// a recovery path, not a normal transition.
func (u *UseCases) recoverUnknownPhase(ctx context.Context, s *session.Session, text string) *Reply {
	logging.From(ctx).Warn("resetting session with unrecognized state",
		"session_id", s.ID, "phase", s.CurrentPhase, "tool", s.SelectedTool)

	s.CurrentPhase = types.PhaseGreeting
	msg := "Let's start over. " + orDefault(ctx, u.cfg.Intro.Welcome, "intro.welcome", fallbackWelcome)
	s.AddEntry(ctx, text, msg, types.PhaseGreeting)
	return &Reply{
		AIResponse: msg,
		Phase:      types.PhaseGreeting,
	}
}

// enterCrisis forces the session into the absorbing CRISIS_RESPONSE phase
// and latches both the session flag and the process-wide tracker.
func (u *UseCases) enterCrisis(ctx context.Context, s *session.Session, text string, trigger types.CrisisTrigger) *Reply {
	s.CrisisDetected = true
	s.CurrentPhase = types.PhaseCrisisResponse
	u.tracker.Activate(ctx)

	msg := u.renderCrisisMessage(s.Country)
	s.AddEntry(ctx, text, msg, types.PhaseCrisisResponse)
	return &Reply{
		AIResponse:     msg,
		Phase:          types.PhaseCrisisResponse,
		CrisisDetected: true,
		NextAction:     ActionStop,
		CrisisTrigger:  trigger,
	}
}

func questionID(tool types.Tool, number int) string {
	return strings.ToLower(tool.String()) + "_" + strconv.Itoa(number)
}

// matchAny reports whether any keyword occurs in the normalized text.
// Substring matching on purpose: replies are short spoken-style phrases.
func matchAny(text string, keywords []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	for _, k := range keywords {
		if k != "" && strings.Contains(normalized, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// orDefault returns the configured text, or logs the gap once and falls
// back
func orDefault(ctx context.Context, configured, key, fallback string) string {
	if configured != "" {
		return configured
	}
	logging.From(ctx).Warn("missing configuration text, using fallback", "key", key)
	return fallback
}
