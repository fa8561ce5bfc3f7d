package replication

import "errors"

// Core replication errors
var (
	// ErrMalformedBatch rejects a batch whose top-level shape is wrong: nil,
	// not a JSON object, or missing any of the three item lists. Malformed
	// items inside a well-formed batch are skipped and logged instead.
	ErrMalformedBatch = errors.New("malformed batch")

	// ErrInvalidConfig wraps the offending option in Config.Validate failures.
	ErrInvalidConfig = errors.New("invalid configuration")
)
