package graph

import (
	"github.com/corograd/core/internal/numkernel"
	"github.com/corograd/core/tensor"
)

// Multiplication is matrix multiplication: left is [M, K], right is [K, N],
// the result is [M, N]. Backward follows the standard matmul adjoint:
// dA = dY·Bᵀ, dB = Aᵀ·dY.
type Multiplication struct {
	baseOp
	m, k, n int
}

// NewMultiplication creates a matrix-multiply of two 2-D operations whose
// inner dimensions agree.
func NewMultiplication(ctx *ExecutionContext, left, right Operation) (*Multiplication, error) {
	lShape := left.MaxResultShape()
	rShape := right.MaxResultShape()

	if len(lShape) != 2 || len(rShape) != 2 || lShape[1] != rShape[0] {
		return nil, newShapeError("NewMultiplication", lShape, rShape)
	}

	mul := &Multiplication{
		baseOp: newBaseOp(ctx, left, right),
		m:      lShape[0],
		k:      lShape[1],
		n:      rShape[1],
	}
	linkNext(mul, left, right)

	return mul, nil
}

func (mul *Multiplication) MaxResultShape() tensor.Shape { return tensor.Shape{mul.m, mul.n} }

func (mul *Multiplication) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{mul.m, mul.n}}
}

func (mul *Multiplication) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{mul.m, mul.k}, {mul.k, mul.n}}
}

func (mul *Multiplication) ForwardPass() (tensor.Pointer, error) {
	lp, err := mul.left.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	rp, err := mul.right.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	aBuf, err := mul.ctx.arena.GetMemoryBuffer(lp)
	if err != nil {
		return tensor.Null, err
	}

	bBuf, err := mul.ctx.arena.GetMemoryBuffer(rp)
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := mul.ctx.arena.AllocateForward(tensor.Shape{mul.m, mul.n})
	if err != nil {
		return tensor.Null, err
	}

	dst, err := mul.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	if err := numkernel.MatMul(mul.m, mul.k, mul.n, aBuf, bBuf, dst); err != nil {
		return tensor.Null, err
	}

	mul.lastForwardResult = ptr

	return ptr, nil
}

// LeftBackwardDerivative computes dA = dY · Bᵀ, shape [M, K].
func (mul *Multiplication) LeftBackwardDerivative() (tensor.Pointer, error) {
	if !mul.left.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	dy, err := mul.ctx.arena.GetMemoryBuffer(mul.derivativeChainValue)
	if err != nil {
		return tensor.Null, err
	}

	bBuf, err := mul.ctx.arena.GetMemoryBuffer(mul.right.LastForwardResult())
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := mul.ctx.arena.AllocateBackward(tensor.Shape{mul.m, mul.k})
	if err != nil {
		return tensor.Null, err
	}

	dst, err := mul.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	if err := numkernel.MatMulTransposeB(mul.m, mul.n, mul.k, dy, bBuf, dst); err != nil {
		return tensor.Null, err
	}

	return ptr, nil
}

// RightBackwardDerivative computes dB = Aᵀ · dY, shape [K, N].
func (mul *Multiplication) RightBackwardDerivative() (tensor.Pointer, error) {
	if !mul.right.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	dy, err := mul.ctx.arena.GetMemoryBuffer(mul.derivativeChainValue)
	if err != nil {
		return tensor.Null, err
	}

	aBuf, err := mul.ctx.arena.GetMemoryBuffer(mul.left.LastForwardResult())
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := mul.ctx.arena.AllocateBackward(tensor.Shape{mul.k, mul.n})
	if err != nil {
		return tensor.Null, err
	}

	dst, err := mul.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	if err := numkernel.MatMulTransposeA(mul.k, mul.m, mul.n, aBuf, dy, dst); err != nil {
		return tensor.Null, err
	}

	return ptr, nil
}
