package graph

import (
	"github.com/corograd/core/internal/numkernel"
	"github.com/corograd/core/tensor"
)

// Add is plain elementwise addition; both operands must already share the
// same shape (use BroadcastBias to replicate a bias vector first). Its
// backward is a zero-copy pass-through: the upstream gradient is identical
// on both sides, so no new arena slot is allocated.
type Add struct {
	baseOp
	shape tensor.Shape
}

// NewAdd creates an elementwise Add of two same-shaped operations.
func NewAdd(ctx *ExecutionContext, left, right Operation) (*Add, error) {
	if !left.MaxResultShape().Equal(right.MaxResultShape()) {
		return nil, newShapeError("NewAdd", left.MaxResultShape(), right.MaxResultShape())
	}

	a := &Add{
		baseOp: newBaseOp(ctx, left, right),
		shape:  left.MaxResultShape(),
	}
	linkNext(a, left, right)

	return a, nil
}

func (a *Add) MaxResultShape() tensor.Shape { return a.shape }

func (a *Add) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{a.shape}
}

func (a *Add) BackwardMemoryAllocations() []tensor.Shape { return nil }

func (a *Add) ForwardPass() (tensor.Pointer, error) {
	lp, err := a.left.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	rp, err := a.right.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	lBuf, err := a.ctx.arena.GetMemoryBuffer(lp)
	if err != nil {
		return tensor.Null, err
	}

	rBuf, err := a.ctx.arena.GetMemoryBuffer(rp)
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := a.ctx.arena.AllocateForward(a.shape)
	if err != nil {
		return tensor.Null, err
	}

	dst, err := a.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.Add(dst, lBuf, rBuf)
	a.lastForwardResult = ptr

	return ptr, nil
}

func (a *Add) LeftBackwardDerivative() (tensor.Pointer, error) {
	if !a.left.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	return a.derivativeChainValue, nil
}

func (a *Add) RightBackwardDerivative() (tensor.Pointer, error) {
	if !a.right.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	return a.derivativeChainValue, nil
}
