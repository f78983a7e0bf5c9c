package graph

import (
	"github.com/corograd/core/internal/numkernel"
	"github.com/corograd/core/tensor"
)

// HadamardProduct is elementwise multiplication. Backward: left = dY ⊙
// right's forward result, right = dY ⊙ left's forward result.
type HadamardProduct struct {
	baseOp
	shape tensor.Shape
}

// NewHadamardProduct creates an elementwise product of two same-shaped
// operations.
func NewHadamardProduct(ctx *ExecutionContext, left, right Operation) (*HadamardProduct, error) {
	if !left.MaxResultShape().Equal(right.MaxResultShape()) {
		return nil, newShapeError("NewHadamardProduct", left.MaxResultShape(), right.MaxResultShape())
	}

	h := &HadamardProduct{
		baseOp: newBaseOp(ctx, left, right),
		shape:  left.MaxResultShape(),
	}
	linkNext(h, left, right)

	return h, nil
}

func (h *HadamardProduct) MaxResultShape() tensor.Shape { return h.shape }

func (h *HadamardProduct) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{h.shape}
}

func (h *HadamardProduct) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{h.shape, h.shape}
}

func (h *HadamardProduct) ForwardPass() (tensor.Pointer, error) {
	lp, err := h.left.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	rp, err := h.right.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	lBuf, err := h.ctx.arena.GetMemoryBuffer(lp)
	if err != nil {
		return tensor.Null, err
	}

	rBuf, err := h.ctx.arena.GetMemoryBuffer(rp)
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := h.ctx.arena.AllocateForward(h.shape)
	if err != nil {
		return tensor.Null, err
	}

	dst, err := h.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.Hadamard(dst, lBuf, rBuf)
	h.lastForwardResult = ptr

	return ptr, nil
}

func (h *HadamardProduct) LeftBackwardDerivative() (tensor.Pointer, error) {
	if !h.left.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	dy, err := h.ctx.arena.GetMemoryBuffer(h.derivativeChainValue)
	if err != nil {
		return tensor.Null, err
	}

	rBuf, err := h.ctx.arena.GetMemoryBuffer(h.right.LastForwardResult())
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := h.ctx.arena.AllocateBackward(h.shape)
	if err != nil {
		return tensor.Null, err
	}

	dst, err := h.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.Hadamard(dst, dy, rBuf)

	return ptr, nil
}

func (h *HadamardProduct) RightBackwardDerivative() (tensor.Pointer, error) {
	if !h.right.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	dy, err := h.ctx.arena.GetMemoryBuffer(h.derivativeChainValue)
	if err != nil {
		return tensor.Null, err
	}

	lBuf, err := h.ctx.arena.GetMemoryBuffer(h.left.LastForwardResult())
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := h.ctx.arena.AllocateBackward(h.shape)
	if err != nil {
		return tensor.Null, err
	}

	dst, err := h.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.Hadamard(dst, dy, lBuf)

	return ptr, nil
}
