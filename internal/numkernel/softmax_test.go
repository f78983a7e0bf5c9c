package numkernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoftmaxRows(t *testing.T) {
	src := []float32{2, 1, 0}
	dst := make([]float32, 3)

	SoftmaxRows(dst, src, 1, 3)

	assert.InDeltaSlice(t, []float64{0.6652, 0.2447, 0.0900}, toFloat64(dst), 1e-3)

	var sum float32
	for _, v := range dst {
		sum += v
	}

	assert.InDelta(t, 1.0, sum, 1e-5)
}

func TestCrossEntropyFromSoftmax(t *testing.T) {
	softmax := []float32{0.6652, 0.2447, 0.0900}
	expected := []float32{1, 0, 0}

	loss := CrossEntropyFromSoftmax(softmax, expected)

	assert.InDelta(t, float32(0.40723), loss, 1e-3)
}
