package guardrail_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mindwell-lab/serene/pkg/domain/model/botconfig"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/service/guardrail"
)

func newMonitor(t *testing.T) *guardrail.Monitor {
	t.Helper()
	return guardrail.NewMonitor(context.Background(), botconfig.Crisis{
		Keywords: []string{"suicide", "kill myself", "end it all", "self-harm", "hurt others"},
		Response: "Please reach out for immediate support.",
	})
}

func TestCheckDetectsTriggers(t *testing.T) {
	monitor := newMonitor(t)

	cases := []struct {
		name  string
		text  string
		level types.CrisisLevel
	}{
		{"direct trigger", "I want to kill myself", types.CrisisLevelCritical},
		{"trigger mid-sentence", "sometimes I think about suicide at night", types.CrisisLevelCritical},
		{"case insensitive", "I WANT TO END IT ALL", types.CrisisLevelCritical},
		{"substring not token", "thoughts of self-harming", types.CrisisLevelCritical},
		{"benign", "I had a rough week at work", types.CrisisLevelNone},
		{"empty", "", types.CrisisLevelNone},
		{"whitespace only", "   ", types.CrisisLevelNone},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := monitor.Check(tc.text)
			gt.Equal(t, result.Level, tc.level)
			if tc.level == types.CrisisLevelCritical {
				gt.Array(t, result.Triggered).Longer(0)
				gt.Equal(t, result.Message, "Please reach out for immediate support.")
			} else {
				gt.Array(t, result.Triggered).Length(0)
			}
		})
	}
}

func TestCheckReportsAllMatchedTriggers(t *testing.T) {
	monitor := newMonitor(t)

	result := monitor.Check("I want to kill myself, thoughts of suicide all day")
	gt.Equal(t, result.Level, types.CrisisLevelCritical)
	gt.Array(t, result.Triggered).Length(2)
}

func TestCheckIdeation(t *testing.T) {
	monitor := newMonitor(t)

	cases := []struct {
		name     string
		reply    string
		ideation bool
	}{
		{"short no", "no", false},
		{"short never", "never", false},
		{"not at all", "not at all", false},
		{"affirmative", "yes", true},
		{"sometimes", "sometimes", true},
		{"crossed my mind", "it crossed my mind once or twice", true},
		{"thinking about dying", "I keep thinking about wanting to die", true},
		{"long reply with negation still scanned", "no, well, actually I have been thinking about it more than half the days", true},
		{"empty", "", false},
		{"unrelated", "pizza", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, monitor.CheckIdeation(tc.reply), tc.ideation)
		})
	}
}

func TestMonitorWithoutTriggers(t *testing.T) {
	// Missing crisis config degrades loudly, never panics
	monitor := guardrail.NewMonitor(context.Background(), botconfig.Crisis{})
	result := monitor.Check("I want to kill myself")
	gt.Equal(t, result.Level, types.CrisisLevelNone)
}
