package diff

import "fmt"

// DiffConsistencyError is a soft error (§7): UnitTesting reassembled the
// fragment stream and it didn't match the input it was built from. The
// fragment stream is still returned; Result.Error is set so a caller or
// renderer can flag it. Diff reports this condition only through
// Result.Error and does not return a value of this type.
type DiffConsistencyError struct {
	Side string // "old" or "new"
}

func (e *DiffConsistencyError) Error() string {
	return fmt.Sprintf("diff: reassembled %s text does not match input", e.Side)
}

// InvariantViolation is a fatal error (§7): the token arena's internal
// invariants (linked-list symmetry, link-pair mutuality) broke during a
// diff call. This should never happen; it signals a bug in the engine
// rather than anything about the input. Diff does not check these
// invariants and never returns this type.
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("diff: arena invariant violated: %s", e.Detail)
}
