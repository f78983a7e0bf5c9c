package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeVariable struct {
	data  []float32
	grad  []float32
	shape []int
}

func (f *fakeVariable) Data() []float32     { return f.data }
func (f *fakeVariable) Gradient() []float32 { return f.grad }
func (f *fakeVariable) Shape() []int        { return f.shape }

type fakeBatchSize int

func (f fakeBatchSize) BatchSize() int { return int(f) }

func TestSGDStepNoBatchSize(t *testing.T) {
	v := &fakeVariable{data: []float32{1, 2, 3}, grad: []float32{1, 1, 1}, shape: []int{3}}
	sgd := NewSGD(0.1)

	require := assert.New(t)
	require.NoError(sgd.Step(v))
	require.InDeltaSlice([]float64{0.9, 1.9, 2.9}, toFloat64(v.data), 1e-6)
}

func TestSGDStepWithBatchSize(t *testing.T) {
	v := &fakeVariable{data: []float32{1, 2}, grad: []float32{4, 4}, shape: []int{2}}
	sgd := NewSGD(1.0, WithSGDBatchSize(fakeBatchSize(4)))

	require := assert.New(t)
	require.NoError(sgd.Step(v))
	// grad/batchSize = 1, value -= 1*1
	require.InDeltaSlice([]float64{0, 1}, toFloat64(v.data), 1e-6)
}

func toFloat64(s []float32) []float64 {
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}

	return out
}
