package clock_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/mindwell-lab/serene/pkg/utils/clock"
)

func TestInjectedClock(t *testing.T) {
	fixed := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := clock.With(context.Background(), func() time.Time { return fixed })

	gt.Equal(t, clock.Now(ctx), fixed)
	gt.Equal(t, clock.Since(ctx, fixed.Add(-10*time.Minute)), 10*time.Minute)
}

func TestDefaultClock(t *testing.T) {
	before := time.Now()
	got := clock.Now(context.Background())
	after := time.Now()

	gt.False(t, got.Before(before))
	gt.False(t, got.After(after))
}
