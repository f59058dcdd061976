package scoring

import (
	"context"
	"math/rand/v2"

	"github.com/mindwell-lab/serene/pkg/domain/model/botconfig"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

// fallbackBand is used when a total lands in no configured range or the
// matched band has no result entry. Failing the conversation over a config
// gap is worse than a middle-of-the-road message.
const fallbackBand = "moderate"

// bandAliases maps threshold names that have no result entry of their own
// onto the nearest configured band.
var bandAliases = map[string]string{
	"normal":            "minimal",
	"moderately_severe": "severe",
}

// Outcome is the result of scoring a completed questionnaire
type Outcome struct {
	Total      int    `json:"total_score"`
	Severity   string `json:"severity_level"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Service resolves totals to severity bands. The suggestion pick is random
// cosmetic variety and never influences the severity classification.
type Service struct {
	cfg  *botconfig.Config
	pick func(n int) int
}

type Option func(*Service)

// WithPicker overrides the suggestion picker. Tests use this to make the
// choice deterministic.
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) {
		s.pick = pick
	}
}

func New(cfg *botconfig.Config, opts ...Option) *Service {
	s := &Service{
		cfg:  cfg,
		pick: rand.IntN,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score maps a total to its severity band for the given tool and renders
// the band's message with one suggestion.
func (x *Service) Score(ctx context.Context, tool types.Tool, total int) Outcome {
	severity := x.resolveBand(ctx, tool, total)

	band, ok := x.cfg.Results[severity]
	if !ok {
		if alias, aliased := bandAliases[severity]; aliased {
			severity = alias
			band, ok = x.cfg.Results[severity]
		}
	}
	if !ok {
		logging.From(ctx).Warn("no result configured for severity band, falling back",
			"tool", tool, "severity", severity, "fallback", fallbackBand)
		severity = fallbackBand
		band = x.cfg.Results[fallbackBand]
	}

	outcome := Outcome{
		Total:    total,
		Severity: severity,
		Message:  band.Message,
	}
	if len(band.Suggestions) > 0 {
		outcome.Suggestion = band.Suggestions[x.pick(len(band.Suggestions))]
	}
	return outcome
}

// resolveBand scans the tool's ordered thresholds and returns the first
// band whose inclusive range contains the total.
func (x *Service) resolveBand(ctx context.Context, tool types.Tool, total int) string {
	q, ok := x.cfg.Questionnaire(tool)
	if !ok || len(q.Thresholds) == 0 {
		logging.From(ctx).Warn("no thresholds configured for tool", "tool", tool)
		return fallbackBand
	}

	for _, threshold := range q.Thresholds {
		if total >= threshold.Range[0] && total <= threshold.Range[1] {
			return threshold.Name
		}
	}
	return fallbackBand
}
