package graph

import (
	"testing"

	"github.com/corograd/core/tensor"
	"github.com/stretchr/testify/require"
)

// HadamardProduct(A, B) ≡ HadamardProduct(B, A) bitwise. One operand is a
// Variable so it becomes the graph's root and the product its terminal;
// the other is a plain Constant operand, claimed for the same layer during
// sizing.
func TestHadamardCommutative(t *testing.T) {
	ctx1 := NewExecutionContext(nil)

	a1, err := NewVariable(ctx1, "a", tensor.Shape{2, 2}, []float32{1, 2, 3, 4}, nil)
	require.NoError(t, err)
	require.NoError(t, ctx1.RegisterOperation(a1))

	b1, err := NewConstant(ctx1, tensor.Shape{2, 2}, []float32{5, 6, 7, 8})
	require.NoError(t, err)

	ab, err := NewHadamardProduct(ctx1, a1, b1)
	require.NoError(t, err)

	require.NoError(t, ctx1.InitializeExecution())

	resultsAB, err := ctx1.ExecuteForwardPropagation()
	require.NoError(t, err)

	bufAB, err := ctx1.GetMemoryBuffer(ab.LastForwardResult())
	require.NoError(t, err)

	ctx2 := NewExecutionContext(nil)

	b2, err := NewConstant(ctx2, tensor.Shape{2, 2}, []float32{5, 6, 7, 8})
	require.NoError(t, err)

	a2, err := NewVariable(ctx2, "a", tensor.Shape{2, 2}, []float32{1, 2, 3, 4}, nil)
	require.NoError(t, err)
	require.NoError(t, ctx2.RegisterOperation(a2))

	ba, err := NewHadamardProduct(ctx2, b2, a2)
	require.NoError(t, err)

	require.NoError(t, ctx2.InitializeExecution())

	_, err = ctx2.ExecuteForwardPropagation()
	require.NoError(t, err)

	bufBA, err := ctx2.GetMemoryBuffer(ba.LastForwardResult())
	require.NoError(t, err)

	require.Equal(t, bufAB, bufBA)
	require.Len(t, resultsAB, 1)
}

func TestHadamardShapeMismatch(t *testing.T) {
	ctx := NewExecutionContext(nil)

	a, err := NewConstant(ctx, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	b, err := NewConstant(ctx, tensor.Shape{4}, []float32{1, 2, 3, 4})
	require.NoError(t, err)

	_, err = NewHadamardProduct(ctx, a, b)
	require.Error(t, err)
}
