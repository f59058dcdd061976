package usecase

import (
	"github.com/mindwell-lab/serene/pkg/domain/interfaces"
	"github.com/mindwell-lab/serene/pkg/domain/model/botconfig"
	emergencySvc "github.com/mindwell-lab/serene/pkg/service/emergency"
	"github.com/mindwell-lab/serene/pkg/service/guardrail"
	"github.com/mindwell-lab/serene/pkg/service/scoring"
)

// UseCases orchestrates the screening conversation: the session store, the
// crisis guardrail, scoring and the emergency message generator. All
// instances are constructed and owned by the caller; there are no package
// level singletons.
type UseCases struct {
	store     interfaces.SessionStore
	cfg       *botconfig.Config
	monitor   *guardrail.Monitor
	tracker   *guardrail.Tracker
	scoring   *scoring.Service
	emergency *emergencySvc.Service
}

type Option func(*UseCases)

func WithTracker(tracker *guardrail.Tracker) Option {
	return func(u *UseCases) {
		u.tracker = tracker
	}
}

func WithScoring(svc *scoring.Service) Option {
	return func(u *UseCases) {
		u.scoring = svc
	}
}

// WithEmergency wires the emergency-contact message generator. When set,
// crisis messages are rendered by it instead of the bare configured
// response text.
func WithEmergency(svc *emergencySvc.Service) Option {
	return func(u *UseCases) {
		u.emergency = svc
	}
}

func New(store interfaces.SessionStore, cfg *botconfig.Config, monitor *guardrail.Monitor, opts ...Option) *UseCases {
	u := &UseCases{
		store:   store,
		cfg:     cfg,
		monitor: monitor,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.tracker == nil {
		u.tracker = guardrail.NewTracker()
	}
	if u.scoring == nil {
		u.scoring = scoring.New(u.cfg)
	}
	return u
}
