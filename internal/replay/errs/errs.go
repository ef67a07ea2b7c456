// Package errs defines the typed error kinds the replay engine can
// fail with, mirroring the reference resource-not-found error pattern:
// a concrete struct per kind, a constructor, and an Is* predicate.
package errs

import "fmt"

// StructuralMismatchError is raised when an event's shape or ordering
// does not match what the engine expected (wrong sibling position,
// description that doesn't match its event kind, wrong tag counts).
type StructuralMismatchError struct {
	Detail string
}

func (e *StructuralMismatchError) Error() string {
	return fmt.Sprintf("structural mismatch: %s", e.Detail)
}

// NewStructuralMismatchError builds a StructuralMismatchError.
func NewStructuralMismatchError(detail string) error {
	return &StructuralMismatchError{Detail: detail}
}

// IsStructuralMismatch reports whether err is a StructuralMismatchError.
func IsStructuralMismatch(err error) bool {
	_, ok := err.(*StructuralMismatchError)
	return ok
}

// AttributionFailureError is raised when a runner, pitcher, or batter
// referenced by an event cannot be resolved to a known player id.
type AttributionFailureError struct {
	Detail string
}

func (e *AttributionFailureError) Error() string {
	return fmt.Sprintf("attribution failure: %s", e.Detail)
}

// NewAttributionFailureError builds an AttributionFailureError.
func NewAttributionFailureError(detail string) error {
	return &AttributionFailureError{Detail: detail}
}

// IsAttributionFailure reports whether err is an AttributionFailureError.
func IsAttributionFailure(err error) bool {
	_, ok := err.(*AttributionFailureError)
	return ok
}

// InvariantViolationError is raised when a post-condition the engine
// guarantees (divisible outs, no sentinel ids, exactly one winner)
// does not hold.
type InvariantViolationError struct {
	Detail string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Detail)
}

// NewInvariantViolationError builds an InvariantViolationError.
func NewInvariantViolationError(detail string) error {
	return &InvariantViolationError{Detail: detail}
}

// IsInvariantViolation reports whether err is an InvariantViolationError.
func IsInvariantViolation(err error) bool {
	_, ok := err.(*InvariantViolationError)
	return ok
}

// UpstreamError wraps a failure fetching the feed or a roster from an
// external dependency.
type UpstreamError struct {
	Detail string
	Cause  error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("upstream error: %s: %v", e.Detail, e.Cause)
	}
	return fmt.Sprintf("upstream error: %s", e.Detail)
}

func (e *UpstreamError) Unwrap() error { return e.Cause }

// NewUpstreamError builds an UpstreamError.
func NewUpstreamError(detail string, cause error) error {
	return &UpstreamError{Detail: detail, Cause: cause}
}

// IsUpstream reports whether err is an UpstreamError.
func IsUpstream(err error) bool {
	_, ok := err.(*UpstreamError)
	return ok
}

// InternalOverflowError is raised when fraction or counter arithmetic
// would overflow its representable range.
type InternalOverflowError struct {
	Detail string
}

func (e *InternalOverflowError) Error() string {
	return fmt.Sprintf("internal overflow: %s", e.Detail)
}

// NewInternalOverflowError builds an InternalOverflowError.
func NewInternalOverflowError(detail string) error {
	return &InternalOverflowError{Detail: detail}
}

// IsInternalOverflow reports whether err is an InternalOverflowError.
func IsInternalOverflow(err error) bool {
	_, ok := err.(*InternalOverflowError)
	return ok
}
