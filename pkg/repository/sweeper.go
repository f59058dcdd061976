package repository

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/interfaces"
	"github.com/mindwell-lab/serene/pkg/utils/logging"
)

const DefaultSweepInterval = time.Minute

// Sweeper runs the periodic expiry sweep. It is constructed and started
// explicitly by whoever owns the store, and Stop waits (bounded) for the
// goroutine to finish so shutdown never leaves a detached worker behind.
type Sweeper struct {
	store    interfaces.SessionStore
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSweeper(store interfaces.SessionStore, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Sweeper{
		store:    store,
		interval: interval,
	}
}

// Start launches the sweep loop. Calling Start twice is a programming error
// and panics.
func (x *Sweeper) Start(ctx context.Context) {
	if x.done != nil {
		panic("sweeper already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	x.cancel = cancel
	x.done = make(chan struct{})

	go func() {
		defer close(x.done)

		ticker := time.NewTicker(x.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := x.store.SweepExpired(ctx); removed > 0 {
					logging.From(ctx).Info("removed expired sessions", "count", removed)
				}
			}
		}
	}()
}

// Stop signals the loop and waits up to the given timeout for it to exit.
func (x *Sweeper) Stop(timeout time.Duration) error {
	if x.done == nil {
		return nil
	}
	x.cancel()

	select {
	case <-x.done:
		return nil
	case <-time.After(timeout):
		return goerr.New("sweeper did not stop in time", goerr.V("timeout", timeout))
	}
}
