package cli_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/mindwell-lab/serene/pkg/cli"
)

func TestCheckCommand(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name string
		args []string
	}{
		{
			name: "safe message",
			args: []string{"serene", "-q", "check", "I", "had", "a", "nice", "day"},
		},
		{
			name: "trigger keyword",
			args: []string{"serene", "-q", "check", "I", "want", "to", "end", "it", "all"},
		},
		{
			name: "ideation answer",
			args: []string{"serene", "-q", "check", "--ideation", "yes,", "sometimes", "I", "think", "about", "it"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gt.NoError(t, cli.Run(ctx, tc.args))
		})
	}
}

func TestCheckCommandRequiresMessage(t *testing.T) {
	err := cli.Run(context.Background(), []string{"serene", "-q", "check"})
	gt.Error(t, err)
}

func TestInvalidLogLevel(t *testing.T) {
	err := cli.Run(context.Background(), []string{"serene", "--log-level", "verbose", "check", "hello"})
	gt.Error(t, err)
}
