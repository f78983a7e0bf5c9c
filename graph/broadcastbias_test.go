package graph

import (
	"testing"

	"github.com/corograd/core/optimizer"
	"github.com/corograd/core/tensor"
	"github.com/stretchr/testify/require"
)

// b=[1,2] replicated across 3 rows, then summed back down the rows.
func TestBroadcastBiasForwardAndBackward(t *testing.T) {
	opt := optimizer.NewSGD(1.0)

	ctx := NewExecutionContext(nil)
	b, err := NewVariable(ctx, "b", tensor.Shape{2}, []float32{1, 2}, opt)
	require.NoError(t, err)
	require.NoError(t, ctx.RegisterOperation(b))

	bb, err := NewBroadcastBias(ctx, b, 3)
	require.NoError(t, err)

	require.NoError(t, ctx.InitializeExecution())

	_, err = ctx.ExecuteForwardPropagation()
	require.NoError(t, err)

	buf, err := ctx.GetMemoryBuffer(bb.LastForwardResult())
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 1, 2, 1, 2}, buf)

	require.NoError(t, ctx.InjectGradient(bb, []float32{1, 1, 2, 2, 3, 3}))
	require.NoError(t, ctx.ExecuteBackwardPropagation())

	// SGD lr=1: b_new = b_old - sum-down-rows(upstream) = [1,2] - [6,6].
	require.InDeltaSlice(t, []float32{-5, -4}, b.Data(), 1e-6)
}

func TestBroadcastBiasRequires1D(t *testing.T) {
	ctx := NewExecutionContext(nil)

	b, err := NewConstant(ctx, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	_, err = NewBroadcastBias(ctx, b, 3)
	require.Error(t, err)

	var graphErr *GraphError
	require.ErrorAs(t, err, &graphErr)
}
