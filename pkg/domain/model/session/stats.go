package session

import (
	"time"

	"github.com/mindwell-lab/serene/pkg/domain/types"
)

// Stats is an aggregate view of the store for monitoring
type Stats struct {
	TotalActive  int                 `json:"total_active_sessions"`
	Completed    int                 `json:"completed_sessions"`
	CrisisActive int                 `json:"crisis_sessions"`
	ByPhase      map[types.Phase]int `json:"sessions_by_phase"`
	Timeout      time.Duration       `json:"-"`
	TimeoutMin   int                 `json:"timeout_minutes"`
	MaxSessions  int                 `json:"max_sessions"`
}
