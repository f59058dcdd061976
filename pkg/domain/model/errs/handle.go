package errs

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

// Handle logs an unexpected error and reports it to Sentry when configured.
// Crisis-path failures must never pass silently, so this is the single sink
// for errors that are not surfaced to the caller.
func Handle(ctx context.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			// Ultimate fallback to stderr if slog crashes
			fmt.Fprintf(os.Stderr, "[CRITICAL] slog crashed during error handling: original_error=%s, slog_panic=%v\n",
				err.Error(), r)
		}
	}()

	logAttrs := []any{slog.Any("error", err)}
	logger := logging.From(ctx)

	hub := sentry.CurrentHub().Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range goerr.Values(err) {
			scope.SetExtra(k, v)
		}
	})
	if evID := hub.CaptureException(err); evID != nil {
		logAttrs = append(logAttrs, slog.Any("sentry.id", evID))
	}

	logger.Error("Error: "+err.Error(), logAttrs...)
}
