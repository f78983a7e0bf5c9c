package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corograd/core/device"
	"github.com/corograd/core/tensor"
)

func newTestArena(t *testing.T, forwardSize, backwardSize int) *Arena {
	t.Helper()

	a, err := New(device.NewCPUAllocator(), forwardSize, backwardSize)
	require.NoError(t, err)

	return a
}

func TestAllocateForwardBumps(t *testing.T) {
	a := newTestArena(t, 10, 4)

	p1, err := a.AllocateForward(tensor.Shape{2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0, p1.Offset())
	assert.Equal(t, 6, p1.Length())
	assert.Equal(t, tensor.Forward, p1.Region())

	p2, err := a.AllocateForward(tensor.Shape{4})
	require.NoError(t, err)
	assert.Equal(t, 6, p2.Offset())
	assert.Equal(t, 4, p2.Length())
}

func TestAllocateForwardOverflow(t *testing.T) {
	a := newTestArena(t, 4, 4)

	_, err := a.AllocateForward(tensor.Shape{5})
	assert.ErrorIs(t, err, ErrBoundsViolation)
}

func TestResetStepResetsForwardIndex(t *testing.T) {
	a := newTestArena(t, 4, 4)

	_, err := a.AllocateForward(tensor.Shape{4})
	require.NoError(t, err)

	a.ResetStep()

	p, err := a.AllocateForward(tensor.Shape{4})
	require.NoError(t, err)
	assert.Equal(t, 0, p.Offset())
}

func TestSwapBackwardAlternatesTagAndKeepsPreviousReadable(t *testing.T) {
	a := newTestArena(t, 4, 4)
	a.ResetStep()

	p1, err := a.AllocateBackward(tensor.Shape{2})
	require.NoError(t, err)
	require.Equal(t, tensor.BackwardA, p1.Region())

	buf, err := a.GetMemoryBuffer(p1)
	require.NoError(t, err)
	buf[0] = 7
	buf[1] = 8

	a.SwapBackward()

	// p1 still decodes to the same physical buffer and is still readable.
	roundTrip, err := a.GetMemoryBuffer(p1)
	require.NoError(t, err)
	assert.Equal(t, []float32{7, 8}, roundTrip)

	// New allocations now land in BackwardB.
	p2, err := a.AllocateBackward(tensor.Shape{1})
	require.NoError(t, err)
	assert.Equal(t, tensor.BackwardB, p2.Region())
	assert.Equal(t, 0, p2.Offset())

	a.SwapBackward()

	// Swapping again returns to BackwardA, whose bump index was reset.
	p3, err := a.AllocateBackward(tensor.Shape{1})
	require.NoError(t, err)
	assert.Equal(t, tensor.BackwardA, p3.Region())
	assert.Equal(t, 0, p3.Offset())
}

func TestGetMemoryBufferRejectsNull(t *testing.T) {
	a := newTestArena(t, 4, 4)

	_, err := a.GetMemoryBuffer(tensor.Null)
	assert.ErrorIs(t, err, tensor.ErrNullPointer)
}

func TestGetMemoryBufferRejectsOutOfBounds(t *testing.T) {
	a := newTestArena(t, 4, 4)

	bad, err := tensor.NewPointer(tensor.Forward, 2, 8)
	require.NoError(t, err)

	_, err = a.GetMemoryBuffer(bad)
	assert.ErrorIs(t, err, ErrBoundsViolation)
}

func TestAddressOffsetAndLength(t *testing.T) {
	a := newTestArena(t, 8, 4)

	p, err := a.AllocateForward(tensor.Shape{3, 2})
	require.NoError(t, err)

	assert.Equal(t, 0, a.AddressOffset(p))
	assert.Equal(t, 6, a.AddressLength(p))
}
