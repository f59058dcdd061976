package config

import (
	"context"
	"log/slog"

	"github.com/mindwell-lab/serene/pkg/service/emergency"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Emergency configures the emergency contact directory
type Emergency struct {
	path string
}

func (x *Emergency) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "emergency-resources",
			Category:    "emergency",
			Usage:       "Path to emergency resource JSON (built-in fallbacks when omitted)",
			Sources:     cli.EnvVars("SERENE_EMERGENCY_RESOURCES"),
			Destination: &x.path,
		},
	}
}

func (x Emergency) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
	)
}

func (x *Emergency) Configure(ctx context.Context) (*emergency.Service, error) {
	svc, err := emergency.New(ctx, x.path)
	if err != nil {
		return nil, err
	}

	if problems := svc.Validate(); len(problems) > 0 {
		logging.Default().Warn("emergency resource configuration has problems",
			"path", x.path, "problems", problems)
	}
	return svc, nil
}
