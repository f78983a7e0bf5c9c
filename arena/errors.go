package arena

import (
	"errors"
	"fmt"
)

// ErrBoundsViolation is the sentinel wrapped by HandleError when a decoded
// pointer would read or write outside its region's backing array. Per the
// core's error-handling design this should be unreachable when the sizing
// pass (ExecutionContext.InitializeExecution) is correct; it is treated as
// an assertion-class, programmer-bug error rather than a recoverable one.
var ErrBoundsViolation = errors.New("arena: pointer out of bounds")

// ErrStaleRegion is wrapped by HandleError when a pointer names a region
// tag the arena does not recognize (e.g. the null region, or a tag from a
// differently-configured arena).
var ErrStaleRegion = errors.New("arena: unknown or stale region tag")

// HandleError reports a failure to dereference a tensor.Pointer: a null
// handle, an unrecognized region tag, or an out-of-bounds offset/length.
// These are assertion-class failures — they should never occur if the
// layering and sizing passes ran correctly — but are returned as errors
// rather than panics so a caller can decide how to surface the bug.
type HandleError struct {
	Op  string
	Err error
}

func (e *HandleError) Error() string {
	return fmt.Sprintf("handle error in %s: %v", e.Op, e.Err)
}

func (e *HandleError) Unwrap() error {
	return e.Err
}

func newHandleError(op string, err error) *HandleError {
	return &HandleError{Op: op, Err: err}
}
