package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/repository"
	"github.com/urfave/cli/v3"
)

// Session configures the in-memory session store and its background sweep
type Session struct {
	timeout       time.Duration
	maxSessions   int64
	sweepInterval time.Duration
}

func (x *Session) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "session-timeout",
			Category:    "session",
			Usage:       "Idle timeout before a session expires",
			Sources:     cli.EnvVars("SERENE_SESSION_TIMEOUT"),
			Value:       repository.DefaultTimeout,
			Destination: &x.timeout,
		},
		&cli.Int64Flag{
			Name:        "max-sessions",
			Category:    "session",
			Usage:       "Maximum number of concurrent sessions",
			Sources:     cli.EnvVars("SERENE_MAX_SESSIONS"),
			Value:       repository.DefaultMaxSessions,
			Destination: &x.maxSessions,
		},
		&cli.DurationFlag{
			Name:        "sweep-interval",
			Category:    "session",
			Usage:       "Interval of the background expired-session sweep",
			Sources:     cli.EnvVars("SERENE_SWEEP_INTERVAL"),
			Value:       repository.DefaultSweepInterval,
			Destination: &x.sweepInterval,
		},
	}
}

func (x Session) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("timeout", x.timeout),
		slog.Int64("max_sessions", x.maxSessions),
		slog.Duration("sweep_interval", x.sweepInterval),
	)
}

func (x *Session) Configure() (*repository.Memory, *repository.Sweeper, error) {
	if x.timeout <= 0 {
		return nil, nil, goerr.New("session timeout must be positive", goerr.V("timeout", x.timeout))
	}
	if x.maxSessions <= 0 {
		return nil, nil, goerr.New("max sessions must be positive", goerr.V("max_sessions", x.maxSessions))
	}
	if x.sweepInterval <= 0 {
		return nil, nil, goerr.New("sweep interval must be positive", goerr.V("sweep_interval", x.sweepInterval))
	}

	store := repository.NewMemory(
		repository.WithTimeout(x.timeout),
		repository.WithMaxSessions(int(x.maxSessions)),
	)
	sweeper := repository.NewSweeper(store, x.sweepInterval)
	return store, sweeper, nil
}
