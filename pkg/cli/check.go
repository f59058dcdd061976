package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/cli/config"
	"github.com/mindwell-lab/serene/pkg/domain/types"
	"github.com/mindwell-lab/serene/pkg/service/guardrail"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// cmdCheck runs the crisis guardrail against a message from the command
// line. Useful for verifying a trigger keyword list before deploying it.
func cmdCheck() *cli.Command {
	var (
		botCfg   config.Bot
		ideation bool
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.BoolFlag{
				Name:        "ideation",
				Aliases:     []string{"i"},
				Usage:       "Also run the ideation-answer classifier",
				Destination: &ideation,
			},
		},
		botCfg.Flags(),
	)

	return &cli.Command{
		Name:      "check",
		Aliases:   []string{"c"},
		Usage:     "Check a message against the crisis guardrail",
		ArgsUsage: "<message>",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			message := strings.Join(cmd.Args().Slice(), " ")
			if message == "" {
				return goerr.New("message argument is required")
			}

			botConfig, err := botCfg.Configure()
			if err != nil {
				return err
			}

			monitor := guardrail.NewMonitor(ctx, botConfig.Crisis)
			logging.From(ctx).Debug("checking message", "message", message, "ideation", ideation)

			result := monitor.Check(message)
			if result.Level == types.CrisisLevelCritical {
				fmt.Printf("\n❌ CRISIS: matched trigger keywords\n")
				for _, trigger := range result.Triggered {
					fmt.Printf("  - %q\n", trigger)
				}
				return nil
			}

			if ideation && monitor.CheckIdeation(message) {
				fmt.Printf("\n❌ CRISIS: positive ideation answer\n")
				return nil
			}

			fmt.Printf("\n✅️ No crisis indicators\n")
			return nil
		},
	}
}
