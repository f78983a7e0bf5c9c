package graph

import (
	"github.com/corograd/core/internal/numkernel"
	"github.com/corograd/core/tensor"
)

// BroadcastBias replicates a one-dimensional bias vector of length cols
// across rows rows, producing a [rows, cols] tensor suitable for an
// elementwise Add against a dense layer's matmul output. Its backward sums
// the incoming gradient down the row (batch) dimension back to the bias
// vector's own shape.
type BroadcastBias struct {
	baseOp
	rows, cols int
}

// NewBroadcastBias replicates b (shape [cols]) across rows rows.
func NewBroadcastBias(ctx *ExecutionContext, b Operation, rows int) (*BroadcastBias, error) {
	bShape := b.MaxResultShape()
	if len(bShape) != 1 {
		return nil, newGraphError("NewBroadcastBias", "bias operand must be a one-dimensional vector")
	}

	bb := &BroadcastBias{
		baseOp: newBaseOp(ctx, b, nil),
		rows:   rows,
		cols:   bShape[0],
	}
	linkNext(bb, b)

	return bb, nil
}

func (bb *BroadcastBias) MaxResultShape() tensor.Shape { return tensor.Shape{bb.rows, bb.cols} }

func (bb *BroadcastBias) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{bb.rows, bb.cols}}
}

func (bb *BroadcastBias) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{bb.cols}}
}

func (bb *BroadcastBias) ForwardPass() (tensor.Pointer, error) {
	bp, err := bb.left.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	bBuf, err := bb.ctx.arena.GetMemoryBuffer(bp)
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := bb.ctx.arena.AllocateForward(tensor.Shape{bb.rows, bb.cols})
	if err != nil {
		return tensor.Null, err
	}

	dst, err := bb.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	for r := 0; r < bb.rows; r++ {
		copy(dst[r*bb.cols:(r+1)*bb.cols], bBuf)
	}

	bb.lastForwardResult = ptr

	return ptr, nil
}

func (bb *BroadcastBias) LeftBackwardDerivative() (tensor.Pointer, error) {
	if !bb.left.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	upstream, err := bb.ctx.arena.GetMemoryBuffer(bb.derivativeChainValue)
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := bb.ctx.arena.AllocateBackward(tensor.Shape{bb.cols})
	if err != nil {
		return tensor.Null, err
	}

	dst, err := bb.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.SumRows(dst, upstream, bb.rows, bb.cols)

	return ptr, nil
}

func (bb *BroadcastBias) RightBackwardDerivative() (tensor.Pointer, error) { return tensor.Null, nil }
