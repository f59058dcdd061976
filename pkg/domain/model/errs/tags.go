package errs

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/mindwell-lab/serene/pkg/domain/types"
)

var (
	// Client errors (4xx)
	TagNotFound       = goerr.NewTag("not_found")       // 404
	TagValidation     = goerr.NewTag("validation")      // 400
	TagInvalidRequest = goerr.NewTag("invalid_request") // 400

	// Server errors (5xx)
	TagInternal = goerr.NewTag("internal") // 500
)

// Value keys attached to errors for structured logging
var (
	SessionIDKey = goerr.NewTypedKey[types.SessionID]("session_id")
	PhaseKey     = goerr.NewTypedKey[types.Phase]("phase")
)
