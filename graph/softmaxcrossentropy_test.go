package graph

import (
	"testing"

	"github.com/corograd/core/optimizer"
	"github.com/corograd/core/tensor"
	"github.com/stretchr/testify/require"
)

// P=[[2,1,0]], E=[[1,0,0]]: training-mode forward materializes no loss, and
// the combined softmax+cross-entropy backward is softmax(P) - E.
func TestSoftmaxCrossEntropyTrainingMode(t *testing.T) {
	opt := optimizer.NewSGD(1.0)

	ctx := NewExecutionContext(nil)
	p, err := NewVariable(ctx, "P", tensor.Shape{1, 3}, []float32{2, 1, 0}, opt)
	require.NoError(t, err)
	require.NoError(t, ctx.RegisterOperation(p))

	e, err := NewConstant(ctx, tensor.Shape{1, 3}, []float32{1, 0, 0})
	require.NoError(t, err)

	sce, err := NewSoftmaxCrossEntropy(ctx, p, e)
	require.NoError(t, err)

	require.NoError(t, ctx.InitializeExecution())

	results, err := ctx.ExecuteForwardPropagation()
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].IsNull())
	require.True(t, sce.LastForwardResult().IsNull())

	require.NoError(t, ctx.ExecuteBackwardPropagation())

	// SGD lr=1 subtracts the gradient directly, recovering it from the delta.
	require.InDeltaSlice(t, []float32{2 - (-0.3348), 1 - 0.2447, 0 - 0.0900}, p.Data(), 1e-3)
}

// Same inputs, not in training mode: forward materializes the scalar loss.
func TestSoftmaxCrossEntropyEvalMode(t *testing.T) {
	ctx := NewExecutionContext(nil)
	p, err := NewVariable(ctx, "P", tensor.Shape{1, 3}, []float32{2, 1, 0}, nil)
	require.NoError(t, err)
	require.NoError(t, ctx.RegisterOperation(p))

	e, err := NewConstant(ctx, tensor.Shape{1, 3}, []float32{1, 0, 0})
	require.NoError(t, err)

	sce, err := NewSoftmaxCrossEntropy(ctx, p, e, WithTrainingMode(false))
	require.NoError(t, err)

	require.NoError(t, ctx.InitializeExecution())

	_, err = ctx.ExecuteForwardPropagation()
	require.NoError(t, err)

	buf, err := ctx.GetMemoryBuffer(sce.LastForwardResult())
	require.NoError(t, err)
	require.InDelta(t, 0.4073, buf[0], 1e-3)
}

func TestSoftmaxCrossEntropyRequires2D(t *testing.T) {
	ctx := NewExecutionContext(nil)

	p, err := NewConstant(ctx, tensor.Shape{3}, []float32{2, 1, 0})
	require.NoError(t, err)

	e, err := NewConstant(ctx, tensor.Shape{3}, []float32{1, 0, 0})
	require.NoError(t, err)

	_, err = NewSoftmaxCrossEntropy(ctx, p, e)
	require.Error(t, err)

	var graphErr *GraphError
	require.ErrorAs(t, err, &graphErr)
}
