package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mindwell-lab/serene/pkg/cli/config"
	server "github.com/mindwell-lab/serene/pkg/controller/http"
	"github.com/mindwell-lab/serene/pkg/repository"
	"github.com/mindwell-lab/serene/pkg/service/guardrail"
	"github.com/mindwell-lab/serene/pkg/usecase"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var (
		addr         string
		sessionCfg   config.Session
		botCfg       config.Bot
		emergencyCfg config.Emergency
		sentryCfg    config.Sentry
	)

	flags := joinFlags(
		[]cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Sources:     cli.EnvVars("SERENE_ADDR"),
				Usage:       "Listen address (default: 127.0.0.1:8080)",
				Value:       "127.0.0.1:8080",
				Destination: &addr,
			},
		},
		sessionCfg.Flags(),
		botCfg.Flags(),
		emergencyCfg.Flags(),
		sentryCfg.Flags(),
	)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Run server",
		Flags:   flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logging.Default().Info("starting server",
				"addr", addr,
				"session", sessionCfg,
				"bot", botCfg,
				"emergency", emergencyCfg,
				"sentry", sentryCfg,
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}

			botConfig, err := botCfg.Configure()
			if err != nil {
				return err
			}

			emergencySvc, err := emergencyCfg.Configure(ctx)
			if err != nil {
				return err
			}

			store, sweeper, err := sessionCfg.Configure()
			if err != nil {
				return err
			}
			sweeper.Start(ctx)
			defer func() {
				if err := sweeper.Stop(shutdownTimeout); err != nil {
					logging.Default().Error("failed to stop session sweeper", "error", err)
				}
			}()

			monitor := guardrail.NewMonitor(ctx, botConfig.Crisis)
			uc := usecase.New(store, botConfig, monitor,
				usecase.WithEmergency(emergencySvc),
			)

			httpServer := http.Server{
				Addr:              addr,
				Handler:           server.New(uc, server.WithEmergency(emergencySvc)),
				ReadTimeout:       30 * time.Second,
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(l net.Listener) context.Context {
					return ctx
				},
			}

			errCh := make(chan error, 1)
			go func() {
				defer close(errCh)
				if err := httpServer.ListenAndServe(); err != nil {
					errCh <- err
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("shutting down", "signal", sig.String())

				ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return shutdownServe(ctx, &httpServer, store)
			}
		},
	}
}

// shutdownServe drains in-flight requests and then drops every session so
// that transcripts do not outlive the process.
func shutdownServe(ctx context.Context, srv *http.Server, store *repository.Memory) error {
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	store.ClearAll(ctx)
	return nil
}
