package interfaces

import "github.com/m-mizutani/goerr/v2"

// Errors shared by every repository backend
var (
	ErrNotFound       = goerr.New("not found")
	ErrStatusMismatch = goerr.New("complaint status does not match expected status")
	ErrInvariant      = goerr.New("complaint invariant violated")
)
