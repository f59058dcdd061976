package guardrail

import (
	"context"
	"regexp"
	"strings"

	"github.com/mindwell-lab/serene/pkg/domain/model/botconfig"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

// Ideation replies shorter than this may be dismissed by a negative
// indicator ("no", "never"). Longer replies get the full positive-pattern
// scan even if they contain a negation, to avoid false negatives on
// elaborated answers.
const shortNegativeLimit = 20

var positivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(yes|sometimes|often|nearly every day|several days)\b`),
	regexp.MustCompile(`(?i)\b(more than half|have thought|been thinking)\b`),
	regexp.MustCompile(`(?i)\b(crossed my mind|considered|considering|thinking about)\b`),
	regexp.MustCompile(`(?i)\b(thoughts? of|idea of|wanting to)\b.*\b(die|death|harm)\b`),
}

var negativePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(no|never|not at all|haven't|don't)\b`),
	regexp.MustCompile(`(?i)\b(absolutely not|definitely not|of course not)\b`),
}

// Result is the classification of a single message
type Result struct {
	Level     types.CrisisLevel `json:"level"`
	Triggered []string          `json:"triggered,omitempty"`
	Message   string            `json:"message,omitempty"`
}

// Monitor is the stateless crisis detector. Check is a pure function of the
// input text and the configured triggers; it performs no I/O and never
// fails.
type Monitor struct {
	triggers []string
	message  string
}

func NewMonitor(ctx context.Context, cfg botconfig.Crisis) *Monitor {
	if len(cfg.Keywords) == 0 {
		// A missing crisis configuration must not silently disable
		// detection; it runs with whatever is available, but loudly.
		logging.From(ctx).Error("no crisis trigger keywords configured; crisis detection is running with an empty trigger list")
	}
	return &Monitor{
		triggers: cfg.Keywords,
		message:  cfg.Response,
	}
}

// Check scans text for configured trigger phrases. Matching is substring
// based over the normalized text, so a trigger anywhere in the message
// fires. Empty or non-textual input yields level NONE.
func (x *Monitor) Check(text string) Result {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Result{Level: types.CrisisLevelNone}
	}

	var triggered []string
	for _, trigger := range x.triggers {
		if trigger == "" {
			continue
		}
		if strings.Contains(normalized, strings.ToLower(trigger)) {
			triggered = append(triggered, trigger)
		}
	}

	if len(triggered) > 0 {
		return Result{
			Level:     types.CrisisLevelCritical,
			Triggered: triggered,
			Message:   x.message,
		}
	}
	return Result{Level: types.CrisisLevelNone}
}

// CheckIdeation classifies a reply to a direct self-harm ideation question.
// Short clearly negative replies are dismissed first; anything matching a
// positive indicator afterwards counts as ideation.
func (x *Monitor) CheckIdeation(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}

	if len(normalized) < shortNegativeLimit {
		for _, pattern := range negativePatterns {
			if pattern.MatchString(normalized) {
				return false
			}
		}
	}

	for _, pattern := range positivePatterns {
		if pattern.MatchString(normalized) {
			return true
		}
	}
	return false
}

// Message returns the configured crisis response text
func (x *Monitor) Message() string {
	return x.message
}
