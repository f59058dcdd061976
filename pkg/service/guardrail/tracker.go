package guardrail

import (
	"context"
	"sync"
	"time"

	"github.com/mindwell-lab/serene/pkg/utils/clock"
)

// Tracker is the process-wide crisis latch used for operational monitoring.
// It is distinct from a session's own crisis flag: the tracker answers "has
// any conversation in this process hit a crisis", and stays set until an
// explicit Reset.
type Tracker struct {
	mu          sync.Mutex
	active      bool
	activatedAt time.Time
}

func NewTracker() *Tracker {
	return &Tracker{}
}

// Activate latches the crisis state. The first activation wins; repeated
// calls keep the original timestamp.
func (x *Tracker) Activate(ctx context.Context) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.active {
		return
	}
	x.active = true
	x.activatedAt = clock.Now(ctx)
}

func (x *Tracker) IsActive() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.active
}

// ActivatedAt returns when the latch was set. The bool is false while
// inactive.
func (x *Tracker) ActivatedAt() (time.Time, bool) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.activatedAt, x.active
}

func (x *Tracker) Reset() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.active = false
	x.activatedAt = time.Time{}
}
