package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdamRequiresBatchSize(t *testing.T) {
	_, err := NewAdam(0.001, nil)
	require.Error(t, err)

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestAdamStepReducesGradientDirection(t *testing.T) {
	v := &fakeVariable{data: []float32{1}, grad: []float32{1}, shape: []int{1}}
	adam, err := NewAdam(0.1, fakeBatchSize(1))
	require.NoError(t, err)

	require.NoError(t, adam.Step(v))
	// A positive gradient on a positive-learning-rate step always decreases the value.
	assert.Less(t, v.data[0], float32(1))
}

func TestAdamMaintainsPerVariableState(t *testing.T) {
	v1 := &fakeVariable{data: []float32{1}, grad: []float32{1}, shape: []int{1}}
	v2 := &fakeVariable{data: []float32{1}, grad: []float32{1}, shape: []int{1}}
	adam, err := NewAdam(0.1, fakeBatchSize(1))
	require.NoError(t, err)

	require.NoError(t, adam.Step(v1))
	require.NoError(t, adam.Step(v1))
	require.NoError(t, adam.Step(v2))

	assert.Equal(t, 2, adam.state[v1].step)
	assert.Equal(t, 1, adam.state[v2].step)
}
