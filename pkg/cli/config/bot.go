package config

import (
	"log/slog"

	"github.com/mindwell-lab/serene/pkg/domain/model/botconfig"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Bot configures the conversation content: prompts, questionnaires, answer
// scales and crisis keywords
type Bot struct {
	path string
}

func (x *Bot) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bot-config",
			Category:    "bot",
			Usage:       "Path to bot configuration JSON (embedded default when omitted)",
			Sources:     cli.EnvVars("SERENE_BOT_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x Bot) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", x.path),
	)
}

func (x *Bot) Configure() (*botconfig.Config, error) {
	cfg := botconfig.Default()
	if x.path != "" {
		loaded, err := botconfig.Load(x.path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if gaps := cfg.Gaps(); len(gaps) > 0 {
		logging.Default().Warn("bot configuration has gaps, fallback texts will be used",
			"path", x.path, "gaps", gaps)
	}
	return cfg, nil
}
