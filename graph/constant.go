package graph

import (
	"fmt"

	"github.com/corograd/core/tensor"
)

// Constant is an untrainable leaf: persistent float storage with no
// optimizer, never a target of backward propagation. Typical uses are
// one-hot labels and fixed matrices (identity, zero) in algebraic
// round-trip tests.
type Constant struct {
	baseOp
	shape tensor.Shape
	data  []float32
}

// NewConstant creates a Constant of the given shape from data, which must
// have exactly shape.Stride() elements.
func NewConstant(ctx *ExecutionContext, shape tensor.Shape, data []float32) (*Constant, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	if len(data) != shape.Stride() {
		return nil, newShapeError("NewConstant", shape, tensor.Shape{len(data)})
	}

	stored := make([]float32, len(data))
	copy(stored, data)

	return &Constant{
		baseOp: newBaseOp(ctx, nil, nil),
		shape:  shape,
		data:   stored,
	}, nil
}

// SetData overwrites the constant's storage in place, e.g. to feed a fresh
// input batch into an already-built graph between steps. data must have
// exactly shape.Stride() elements.
func (c *Constant) SetData(data []float32) error {
	if len(data) != len(c.data) {
		return fmt.Errorf("graph: SetData got %d elements, want %d", len(data), len(c.data))
	}

	copy(c.data, data)

	return nil
}

func (c *Constant) MaxResultShape() tensor.Shape { return c.shape }

func (c *Constant) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{c.shape}
}

func (c *Constant) BackwardMemoryAllocations() []tensor.Shape { return nil }

func (c *Constant) ForwardPass() (tensor.Pointer, error) {
	ptr, err := c.ctx.arena.AllocateForward(c.shape)
	if err != nil {
		return tensor.Null, err
	}

	buf, err := c.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	copy(buf, c.data)
	c.lastForwardResult = ptr

	return ptr, nil
}

func (c *Constant) LeftBackwardDerivative() (tensor.Pointer, error)  { return tensor.Null, nil }
func (c *Constant) RightBackwardDerivative() (tensor.Pointer, error) { return tensor.Null, nil }
