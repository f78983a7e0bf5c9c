package graph

import (
	"github.com/corograd/core/optimizer"
	"github.com/corograd/core/tensor"
)

// Variable is a registered graph root: persistent, trainable float storage
// plus the optimizer bound to it. Forward copies its storage into a fresh
// forward-arena slot every step (so the forward arena holds a self-contained
// snapshot); backward defers entirely to the optimizer once the gradient it
// accumulated this step is available.
type Variable struct {
	baseOp
	name      string
	shape     tensor.Shape
	data      []float32
	optimizer optimizer.Optimizer
}

// NewVariable creates a trainable Variable of the given shape. initial may
// be nil (storage starts at zero) or a slice of exactly shape.Stride()
// elements to seed it.
func NewVariable(ctx *ExecutionContext, name string, shape tensor.Shape, initial []float32, opt optimizer.Optimizer) (*Variable, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}

	n := shape.Stride()

	data := make([]float32, n)
	if initial != nil {
		if len(initial) != n {
			return nil, newShapeError("NewVariable", shape, tensor.Shape{len(initial)})
		}

		copy(data, initial)
	}

	v := &Variable{
		baseOp:    newBaseOp(ctx, nil, nil),
		name:      name,
		shape:     shape,
		data:      data,
		optimizer: opt,
	}
	v.requiresGrad = true

	return v, nil
}

// Name identifies the variable for diagnostics; it plays no role in graph
// execution.
func (v *Variable) Name() string { return v.name }

func (v *Variable) MaxResultShape() tensor.Shape { return v.shape }

func (v *Variable) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{v.shape}
}

// BackwardMemoryAllocations is empty: a Variable never calls
// AllocateBackward itself, it only receives a handle its consumer already
// allocated.
func (v *Variable) BackwardMemoryAllocations() []tensor.Shape {
	return nil
}

func (v *Variable) ForwardPass() (tensor.Pointer, error) {
	ptr, err := v.ctx.arena.AllocateForward(v.shape)
	if err != nil {
		return tensor.Null, err
	}

	buf, err := v.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	copy(buf, v.data)
	v.lastForwardResult = ptr

	return ptr, nil
}

func (v *Variable) LeftBackwardDerivative() (tensor.Pointer, error)  { return tensor.Null, nil }
func (v *Variable) RightBackwardDerivative() (tensor.Pointer, error) { return tensor.Null, nil }

// Data, Gradient and Shape satisfy optimizer.Variable.
func (v *Variable) Data() []float32 { return v.data }

func (v *Variable) Gradient() []float32 {
	if v.derivativeChainValue.IsNull() {
		return nil
	}

	buf, err := v.ctx.arena.GetMemoryBuffer(v.derivativeChainValue)
	if err != nil {
		return nil
	}

	return buf
}

func (v *Variable) Shape() []int { return []int(v.shape) }

// step fires the bound optimizer against the gradient this variable
// accumulated during the step just completed, then clears the gradient
// handle so a subsequent step with no contribution leaves storage
// untouched.
func (v *Variable) step() error {
	if v.derivativeChainValue.IsNull() || v.optimizer == nil {
		return nil
	}

	if err := v.optimizer.Step(v); err != nil {
		return err
	}

	v.derivativeChainValue = tensor.Null

	return nil
}
