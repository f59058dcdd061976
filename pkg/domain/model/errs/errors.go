package errs

import (
	"github.com/m-mizutani/goerr/v2"
)

// ErrSessionNotFound covers both absent and expired sessions. Callers treat
// it as a normal, recoverable condition (the API maps it to 404).
var ErrSessionNotFound = goerr.New("session not found or expired", goerr.T(TagNotFound))
