package numkernel

import "errors"

// ErrShapeMismatch is returned when kernel inputs disagree on element
// counts implied by the caller's declared dimensions.
var ErrShapeMismatch = errors.New("numkernel: shape mismatch")
