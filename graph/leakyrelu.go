package graph

import (
	"github.com/corograd/core/internal/numkernel"
	"github.com/corograd/core/tensor"
)

// LeakyReLU applies y = x if x > 0 else alpha*x elementwise. It has a single
// operand; RightBackwardDerivative always returns the null handle.
type LeakyReLU struct {
	baseOp
	alpha float32
	shape tensor.Shape
}

// LeakyReLUOption configures a LeakyReLU at construction time.
type LeakyReLUOption func(*LeakyReLU)

// WithLeakyReLUAlpha overrides the default negative-side slope (0.01).
func WithLeakyReLUAlpha(alpha float32) LeakyReLUOption {
	return func(l *LeakyReLU) { l.alpha = alpha }
}

// NewLeakyReLU creates a LeakyReLU over x.
func NewLeakyReLU(ctx *ExecutionContext, x Operation, opts ...LeakyReLUOption) (*LeakyReLU, error) {
	l := &LeakyReLU{
		baseOp: newBaseOp(ctx, x, nil),
		alpha:  0.01,
		shape:  x.MaxResultShape(),
	}

	for _, opt := range opts {
		opt(l)
	}

	linkNext(l, x)

	return l, nil
}

func (l *LeakyReLU) MaxResultShape() tensor.Shape { return l.shape }

func (l *LeakyReLU) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{l.shape}
}

func (l *LeakyReLU) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{l.shape}
}

func (l *LeakyReLU) ForwardPass() (tensor.Pointer, error) {
	xp, err := l.left.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	xBuf, err := l.ctx.arena.GetMemoryBuffer(xp)
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := l.ctx.arena.AllocateForward(l.shape)
	if err != nil {
		return tensor.Null, err
	}

	dst, err := l.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.LeakyReLU(dst, xBuf, l.alpha)
	l.lastForwardResult = ptr

	return ptr, nil
}

func (l *LeakyReLU) LeftBackwardDerivative() (tensor.Pointer, error) {
	if !l.left.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	dy, err := l.ctx.arena.GetMemoryBuffer(l.derivativeChainValue)
	if err != nil {
		return tensor.Null, err
	}

	xBuf, err := l.ctx.arena.GetMemoryBuffer(l.left.LastForwardResult())
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := l.ctx.arena.AllocateBackward(l.shape)
	if err != nil {
		return tensor.Null, err
	}

	dst, err := l.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.LeakyReLUGrad(dst, xBuf, dy, l.alpha)

	return ptr, nil
}

func (l *LeakyReLU) RightBackwardDerivative() (tensor.Pointer, error) { return tensor.Null, nil }
