package graph

import (
	"testing"

	"github.com/corograd/core/tensor"
	"github.com/stretchr/testify/require"
)

// SetData overwrites a Constant's storage in place; a later forward pass
// picks up the new values, letting the same graph topology be reused across
// batches that only differ in their input data.
func TestConstantSetDataFeedsLaterForward(t *testing.T) {
	ctx := NewExecutionContext(nil)

	v, err := NewVariable(ctx, "v", tensor.Shape{2, 2}, []float32{1, 0, 0, 1}, nil)
	require.NoError(t, err)
	require.NoError(t, ctx.RegisterOperation(v))

	c, err := NewConstant(ctx, tensor.Shape{2, 2}, []float32{1, 1, 1, 1})
	require.NoError(t, err)

	sum, err := NewAdd(ctx, v, c)
	require.NoError(t, err)

	require.NoError(t, ctx.InitializeExecution())

	_, err = ctx.ExecuteForwardPropagation()
	require.NoError(t, err)

	buf, err := ctx.GetMemoryBuffer(sum.LastForwardResult())
	require.NoError(t, err)
	require.Equal(t, []float32{2, 1, 1, 2}, buf)

	require.NoError(t, c.SetData([]float32{5, 5, 5, 5}))

	_, err = ctx.ExecuteForwardPropagation()
	require.NoError(t, err)

	buf, err = ctx.GetMemoryBuffer(sum.LastForwardResult())
	require.NoError(t, err)
	require.Equal(t, []float32{6, 5, 5, 6}, buf)
}

func TestConstantSetDataRejectsLengthMismatch(t *testing.T) {
	ctx := NewExecutionContext(nil)

	c, err := NewConstant(ctx, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	require.Error(t, c.SetData([]float32{1, 2, 3}))
}
