package types

import "github.com/google/uuid"

// SessionID is the opaque token identifying one screening run
type SessionID string

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

func (x SessionID) String() string {
	return string(x)
}

// Phase represents the conversation's current stage in the screening flow
type Phase string

const (
	PhaseGreeting       Phase = "GREETING"
	PhaseTriage         Phase = "TRIAGE"
	PhaseScreening      Phase = "SCREENING"
	PhaseResults        Phase = "RESULTS"
	PhaseCrisisResponse Phase = "CRISIS_RESPONSE"
)

func (x Phase) String() string {
	return string(x)
}

func (x Phase) Validate() bool {
	switch x {
	case PhaseGreeting, PhaseTriage, PhaseScreening, PhaseResults, PhaseCrisisResponse:
		return true
	}
	return false
}

// Tool represents a screening questionnaire
type Tool string

const (
	ToolPHQ9  Tool = "PHQ9"
	ToolGAD7  Tool = "GAD7"
	ToolGHQ12 Tool = "GHQ12"
)

// Tools lists the available screening tools in declared order. Triage routing
// iterates this slice, so the order doubles as the tie-break for keyword matches.
func Tools() []Tool {
	return []Tool{ToolPHQ9, ToolGAD7, ToolGHQ12}
}

func (x Tool) String() string {
	return string(x)
}

func (x Tool) Validate() bool {
	switch x {
	case ToolPHQ9, ToolGAD7, ToolGHQ12:
		return true
	}
	return false
}
