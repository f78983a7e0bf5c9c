package numkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddOddLength(t *testing.T) {
	// 11 elements exercises the unrolled loop plus a 3-element scalar tail.
	a := make([]float32, 11)
	b := make([]float32, 11)
	dst := make([]float32, 11)

	for i := range a {
		a[i] = float32(i)
		b[i] = float32(i * 2)
	}

	Add(dst, a, b)

	for i := range dst {
		assert.Equal(t, float32(i+i*2), dst[i])
	}
}

func TestSub(t *testing.T) {
	a := []float32{5, 5, 5}
	b := []float32{1, 2, 3}
	dst := make([]float32, 3)

	Sub(dst, a, b)

	assert.Equal(t, []float32{4, 3, 2}, dst)
}

func TestHadamardCommutative(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	b := []float32{5, 6, 7, 8}

	ab := make([]float32, 4)
	ba := make([]float32, 4)

	Hadamard(ab, a, b)
	Hadamard(ba, b, a)

	assert.Equal(t, ab, ba)
}

func TestLeakyReLU(t *testing.T) {
	x := []float32{-1, 2, -3}
	dst := make([]float32, 3)

	LeakyReLU(dst, x, 0.01)

	assert.InDeltaSlice(t, []float64{-0.01, 2, -0.03}, toFloat64(dst), 1e-6)
}

func TestLeakyReLUGrad(t *testing.T) {
	x := []float32{-1, 2, -3}
	upstream := []float32{1, 1, 1}
	dst := make([]float32, 3)

	LeakyReLUGrad(dst, x, upstream, 0.01)

	assert.InDeltaSlice(t, []float64{0.01, 1, 0.01}, toFloat64(dst), 1e-6)
}

func TestSumRows(t *testing.T) {
	grad := []float32{1, 1, 1, 2, 2, 2}
	sum := make([]float32, 3)
	SumRows(sum, grad, 2, 3)
	assert.Equal(t, []float32{3, 3, 3}, sum)
}
