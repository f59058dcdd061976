package types

// CrisisLevel represents the severity classification of a single message
type CrisisLevel string

const (
	CrisisLevelNone     CrisisLevel = "NONE"
	CrisisLevelCritical CrisisLevel = "CRITICAL"
)

func (x CrisisLevel) String() string {
	return string(x)
}

// CrisisTrigger identifies what caused a crisis override
type CrisisTrigger string

const (
	CrisisTriggerKeywords CrisisTrigger = "TRIGGER_WORDS"
	CrisisTriggerIdeation CrisisTrigger = "IDEATION_QUESTION"
)
