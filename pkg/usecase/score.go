package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/model/errs"
	"github.com/mindwell-lab/serene/pkg/domain/model/session"
	"github.com/mindwell-lab/serene/pkg/domain/types"
)

// BulkResponse is one pre-mapped answer submitted outside the conversation
// flow, for clients that collected the questionnaire themselves.
type BulkResponse struct {
	QuestionID string `json:"question_id"`
	UserText   string `json:"user_text"`
	Score      int    `json:"score"`
}

// ScoreResult is the outcome of a bulk submission
type ScoreResult struct {
	SessionID       types.SessionID `json:"session_id"`
	Tool            types.Tool      `json:"screening_tool"`
	TotalScore      int             `json:"total_score"`
	Severity        string          `json:"severity_level"`
	Message         string          `json:"message"`
	Recommendations []string        `json:"recommendations"`
}

// CalculateScore appends bulk-submitted responses to the session, marks it
// completed in RESULTS with the given tool, and resolves the severity band
// over all recorded responses.
func (u *UseCases) CalculateScore(ctx context.Context, id types.SessionID, tool types.Tool, responses []BulkResponse) (*ScoreResult, error) {
	if !tool.Validate() {
		return nil, goerr.New("unknown screening tool",
			goerr.T(errs.TagValidation), goerr.V("tool", tool))
	}

	q, ok := u.cfg.Questionnaire(tool)
	if !ok {
		return nil, goerr.New("tool has no questionnaire configured",
			goerr.T(errs.TagValidation), goerr.V("tool", tool))
	}
	if len(responses) == 0 || len(responses) > len(q.Questions) {
		return nil, goerr.New("response count does not fit the questionnaire",
			goerr.T(errs.TagValidation),
			goerr.V("tool", tool), goerr.V("given", len(responses)), goerr.V("questions", len(q.Questions)))
	}
	for i, resp := range responses {
		if resp.Score < 0 || resp.Score > 3 {
			return nil, goerr.New("score out of range",
				goerr.T(errs.TagValidation), goerr.V("index", i), goerr.V("score", resp.Score))
		}
	}

	var result *ScoreResult
	err := u.store.WithSession(ctx, id, func(ctx context.Context, s *session.Session) error {
		for _, resp := range responses {
			s.AddResponse(ctx, resp.QuestionID, resp.UserText, resp.Score)
		}
		s.SelectedTool = tool
		s.CurrentPhase = types.PhaseResults
		s.Completed = true

		total := s.TotalScore()
		outcome := u.scoring.Score(ctx, tool, total)

		recommendations := []string{
			"This is a screening tool and not a diagnostic assessment.",
			"Consider speaking with a mental health professional for further evaluation.",
		}
		if outcome.Suggestion != "" {
			recommendations = append(recommendations, outcome.Suggestion)
		}

		result = &ScoreResult{
			SessionID:       s.ID,
			Tool:            tool,
			TotalScore:      total,
			Severity:        outcome.Severity,
			Message:         outcome.Message,
			Recommendations: recommendations,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
