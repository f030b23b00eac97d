// Package selection runs the pump selection pipeline: solve, gate, score,
// rank. It is the single entry point the transport layer calls.
package selection

import "errors"

var (
	// ErrInvalidInput marks duty/config validation failures. Returned before
	// any per-pump work starts; no partial result exists.
	ErrInvalidInput = errors.New("invalid selection input")

	// ErrTimeout marks a request that exceeded its wall-clock budget.
	// Partial evaluations are discarded, never returned.
	ErrTimeout = errors.New("selection timed out")
)
