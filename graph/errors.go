package graph

import (
	"fmt"

	"github.com/corograd/core/tensor"
)

// GraphError reports a structural problem with the graph itself: a
// duplicate registration, a call made before InitializeExecution, or any
// other violation of the registration/execution protocol.
type GraphError struct {
	Op  string
	Msg string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph error in %s: %s", e.Op, e.Msg)
}

func newGraphError(op, msg string) *GraphError {
	return &GraphError{Op: op, Msg: msg}
}

// ShapeError reports an operand-shape incompatibility, carrying both
// offending shapes so callers can render a useful diagnostic.
type ShapeError struct {
	Op    string
	Left  tensor.Shape
	Right tensor.Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("shape error in %s: %v is incompatible with %v", e.Op, e.Left, e.Right)
}

func newShapeError(op string, left, right tensor.Shape) *ShapeError {
	return &ShapeError{Op: op, Left: left, Right: right}
}

// ConfigurationError construction-time errors (e.g. an optimizer built
// without a required batch-size source) live in package optimizer, where
// the relevant constructors are — see optimizer.ConfigurationError.
