package graph

import (
	"github.com/corograd/core/internal/numkernel"
	"github.com/corograd/core/tensor"
)

// SoftmaxCrossEntropy computes the row-wise softmax of predicted and the
// cross-entropy against expected (a one-hot or soft label distribution of
// the same shape). Forward always caches the softmax (needed for backward);
// while in training mode it skips materializing the scalar loss and returns
// the null handle, since the caller typically only wants the gradient. Call
// SetTrainingMode(false) to get the scalar loss back, e.g. for periodic
// evaluation logging.
type SoftmaxCrossEntropy struct {
	baseOp
	rows, cols   int
	trainingMode bool
	softmaxCache tensor.Pointer
}

// SoftmaxCrossEntropyOption configures a SoftmaxCrossEntropy at construction
// time.
type SoftmaxCrossEntropyOption func(*SoftmaxCrossEntropy)

// WithTrainingMode sets the initial training-mode flag (default true).
func WithTrainingMode(v bool) SoftmaxCrossEntropyOption {
	return func(s *SoftmaxCrossEntropy) { s.trainingMode = v }
}

// NewSoftmaxCrossEntropy creates a SoftmaxCrossEntropy over a 2-D predicted
// tensor and an expected tensor of the same shape.
func NewSoftmaxCrossEntropy(ctx *ExecutionContext, predicted, expected Operation, opts ...SoftmaxCrossEntropyOption) (*SoftmaxCrossEntropy, error) {
	pShape := predicted.MaxResultShape()
	if len(pShape) != 2 {
		return nil, newGraphError("NewSoftmaxCrossEntropy", "predicted input must be 2-D")
	}

	if !pShape.Equal(expected.MaxResultShape()) {
		return nil, newShapeError("NewSoftmaxCrossEntropy", pShape, expected.MaxResultShape())
	}

	s := &SoftmaxCrossEntropy{
		baseOp:       newBaseOp(ctx, predicted, expected),
		rows:         pShape[0],
		cols:         pShape[1],
		trainingMode: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	linkNext(s, predicted, expected)

	return s, nil
}

// SetTrainingMode toggles whether forward materializes the scalar loss.
func (s *SoftmaxCrossEntropy) SetTrainingMode(v bool) { s.trainingMode = v }

func (s *SoftmaxCrossEntropy) MaxResultShape() tensor.Shape { return tensor.Shape{1, 1} }

func (s *SoftmaxCrossEntropy) ForwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{s.rows, s.cols}, {1, 1}}
}

func (s *SoftmaxCrossEntropy) BackwardMemoryAllocations() []tensor.Shape {
	return []tensor.Shape{{s.rows, s.cols}}
}

func (s *SoftmaxCrossEntropy) ForwardPass() (tensor.Pointer, error) {
	pp, err := s.left.ForwardPass()
	if err != nil {
		return tensor.Null, err
	}

	if _, err := s.right.ForwardPass(); err != nil {
		return tensor.Null, err
	}

	pBuf, err := s.ctx.arena.GetMemoryBuffer(pp)
	if err != nil {
		return tensor.Null, err
	}

	cachePtr, err := s.ctx.arena.AllocateForward(tensor.Shape{s.rows, s.cols})
	if err != nil {
		return tensor.Null, err
	}

	cacheBuf, err := s.ctx.arena.GetMemoryBuffer(cachePtr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.SoftmaxRows(cacheBuf, pBuf, s.rows, s.cols)
	s.softmaxCache = cachePtr

	if s.trainingMode {
		s.lastForwardResult = tensor.Null

		return tensor.Null, nil
	}

	expBuf, err := s.ctx.arena.GetMemoryBuffer(s.right.LastForwardResult())
	if err != nil {
		return tensor.Null, err
	}

	loss := numkernel.CrossEntropyFromSoftmax(cacheBuf, expBuf)

	lossPtr, err := s.ctx.arena.AllocateForward(tensor.Shape{1, 1})
	if err != nil {
		return tensor.Null, err
	}

	lossBuf, err := s.ctx.arena.GetMemoryBuffer(lossPtr)
	if err != nil {
		return tensor.Null, err
	}

	lossBuf[0] = loss
	s.lastForwardResult = lossPtr

	return lossPtr, nil
}

// LeftBackwardDerivative computes softmax(P) - E.
func (s *SoftmaxCrossEntropy) LeftBackwardDerivative() (tensor.Pointer, error) {
	if !s.left.RequiresBackwardDerivative() {
		return tensor.Null, nil
	}

	cacheBuf, err := s.ctx.arena.GetMemoryBuffer(s.softmaxCache)
	if err != nil {
		return tensor.Null, err
	}

	expBuf, err := s.ctx.arena.GetMemoryBuffer(s.right.LastForwardResult())
	if err != nil {
		return tensor.Null, err
	}

	ptr, err := s.ctx.arena.AllocateBackward(tensor.Shape{s.rows, s.cols})
	if err != nil {
		return tensor.Null, err
	}

	dst, err := s.ctx.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	numkernel.Sub(dst, cacheBuf, expBuf)

	return ptr, nil
}

func (s *SoftmaxCrossEntropy) RightBackwardDerivative() (tensor.Pointer, error) {
	return tensor.Null, nil
}
