// Package oramerrors collects the fatal error kinds of the core: every one
// of them aborts the current client access or homomorphic operation. None
// are retried internally; they all bubble up to the caller.
package oramerrors

import "fmt"

// Sentinel errors distinguishable with errors.Is.
var (
	// ErrDuplicateBlockOnPath signals that two slots on a fetched path carry
	// the same non-negative logical address.
	ErrDuplicateBlockOnPath = fmt.Errorf("onionoram: duplicate block address found on path")

	// ErrUninitializedRead signals a READ access on a block whose position
	// map entry is still -1 (never written).
	ErrUninitializedRead = fmt.Errorf("onionoram: read of a block that was never written")

	// ErrEvictionOverflow signals that an eviction push found its target
	// child bucket entirely occupied by non-dummy blocks.
	ErrEvictionOverflow = fmt.Errorf("onionoram: not enough room for eviction")
)

// InvariantViolation wraps a violated runtime invariant: a select vector not
// containing exactly one set bit, mismatched payload space parameters in a
// homomorphic operation, decrypting a payload already at its plaintext
// space, and similar programmer/protocol errors that must remain real,
// non-compiled-out runtime checks rather than bare assertions.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "onionoram: invariant violation: " + e.Reason
}

// NewInvariantViolation builds an InvariantViolation with a formatted reason.
func NewInvariantViolation(format string, args ...any) error {
	return &InvariantViolation{Reason: fmt.Sprintf(format, args...)}
}

// ExternalFailure wraps a failure reported by an out-of-core collaborator:
// the prime generation oracle, or the statistics library used by bench.
// The randsrc sources do not report failures through it; they panic when
// their entropy read fails.
type ExternalFailure struct {
	Collaborator string
	Err          error
}

func (e *ExternalFailure) Error() string {
	return fmt.Sprintf("onionoram: %s failed: %v", e.Collaborator, e.Err)
}

func (e *ExternalFailure) Unwrap() error {
	return e.Err
}

// NewExternalFailure wraps err as a failure attributed to collaborator
// (e.g. "prime oracle", "stats").
func NewExternalFailure(collaborator string, err error) error {
	return &ExternalFailure{Collaborator: collaborator, Err: err}
}
