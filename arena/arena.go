// Package arena implements the two-arena memory model described in the
// engine's design: one forward arena that grows monotonically across a
// whole training step, and two backward arenas that alternate between
// adjacent layers so a layer's gradients stay reachable from its producer
// one swap after they were written.
//
// All three regions are flat float32 slices, bump-allocated; there is no
// free list and no general allocator in the hot path, matching the
// single-threaded, lock-free discipline the engine requires.
package arena

import (
	"github.com/corograd/core/device"
	"github.com/corograd/core/tensor"
)

// Arena owns the three float32 backing arrays and their bump indices.
// Physical buffers keep a *fixed* tag for their lifetime (bufA is always
// tensor.BackwardA, bufB is always tensor.BackwardB); what changes between
// layers is which one is the "current" write target. A handle therefore
// always decodes to the buffer it was actually allocated from, so a
// pointer held across more swaps than intended reads whatever the other
// layer last left there rather than panicking — the tag mismatch the
// design notes describe is this: code that remembers "the gradient is in
// BackwardA" from two layers ago is trivially wrong the moment it tries to
// reconcile that against the *current* tag, which the caller is expected
// to track itself (ExecutionContext does, via backStep's layer-local
// scope).
type Arena struct {
	alloc device.Allocator

	forward      []float32
	forwardIndex int

	bufA, bufB    []float32
	backwardIndex int
	currentIsA    bool
}

// New preallocates the forward arena to forwardSize elements and each of
// the two backward arenas to backwardSize elements.
func New(alloc device.Allocator, forwardSize, backwardSize int) (*Arena, error) {
	forward, err := alloc.AllocateFloats(forwardSize)
	if err != nil {
		return nil, err
	}

	bufA, err := alloc.AllocateFloats(backwardSize)
	if err != nil {
		return nil, err
	}

	bufB, err := alloc.AllocateFloats(backwardSize)
	if err != nil {
		return nil, err
	}

	return &Arena{
		alloc:      alloc,
		forward:    forward,
		bufA:       bufA,
		bufB:       bufB,
		currentIsA: true,
	}, nil
}

// ForwardCapacity returns the number of float32 elements the forward arena
// can hold.
func (a *Arena) ForwardCapacity() int { return len(a.forward) }

// BackwardCapacity returns the number of float32 elements each backward
// arena can hold.
func (a *Arena) BackwardCapacity() int { return len(a.bufA) }

// ResetStep resets both bump indices and designates bufA as the current
// backward write target. Called once at the start of every training step.
func (a *Arena) ResetStep() {
	a.forwardIndex = 0
	a.backwardIndex = 0
	a.currentIsA = true
}

// SwapBackward toggles which backward buffer is the current write target
// and resets that buffer's bump index to zero, ready for the next layer.
// The buffer that was current becomes the "previous" arena: its contents
// remain readable (by its own tag) until the following SwapBackward call
// overwrites it again.
func (a *Arena) SwapBackward() {
	a.currentIsA = !a.currentIsA
	a.backwardIndex = 0
}

// currentTag returns the region tag of the buffer currently receiving
// backward allocations.
func (a *Arena) currentTag() tensor.Region {
	if a.currentIsA {
		return tensor.BackwardA
	}

	return tensor.BackwardB
}

// AllocateForward bump-allocates a slot sized to shape in the forward
// arena and returns a pointer to it.
func (a *Arena) AllocateForward(shape tensor.Shape) (tensor.Pointer, error) {
	n := shape.Stride()

	if a.forwardIndex+n > len(a.forward) {
		return tensor.Null, newHandleError("AllocateForward", ErrBoundsViolation)
	}

	ptr, err := tensor.NewPointer(tensor.Forward, a.forwardIndex, n)
	if err != nil {
		return tensor.Null, newHandleError("AllocateForward", err)
	}

	a.forwardIndex += n

	return ptr, nil
}

// AllocateBackward bump-allocates a slot sized to shape in whichever
// backward arena is current and returns a pointer to it.
func (a *Arena) AllocateBackward(shape tensor.Shape) (tensor.Pointer, error) {
	n := shape.Stride()

	buf := a.bufA
	if !a.currentIsA {
		buf = a.bufB
	}

	if a.backwardIndex+n > len(buf) {
		return tensor.Null, newHandleError("AllocateBackward", ErrBoundsViolation)
	}

	ptr, err := tensor.NewPointer(a.currentTag(), a.backwardIndex, n)
	if err != nil {
		return tensor.Null, newHandleError("AllocateBackward", err)
	}

	a.backwardIndex += n

	return ptr, nil
}

// GetMemoryBuffer decodes ptr and returns the float32 slice it addresses.
// It is the only way external code (tests, loss reporting) reads a result.
func (a *Arena) GetMemoryBuffer(ptr tensor.Pointer) ([]float32, error) {
	if ptr.IsNull() {
		return nil, newHandleError("GetMemoryBuffer", tensor.ErrNullPointer)
	}

	region, offset, length := ptr.Decode()

	var buf []float32

	switch region {
	case tensor.Forward:
		buf = a.forward
	case tensor.BackwardA:
		buf = a.bufA
	case tensor.BackwardB:
		buf = a.bufB
	default:
		return nil, newHandleError("GetMemoryBuffer", ErrStaleRegion)
	}

	if offset < 0 || length < 0 || offset+length > len(buf) {
		return nil, newHandleError("GetMemoryBuffer", ErrBoundsViolation)
	}

	return buf[offset : offset+length], nil
}

// AddressOffset returns the element offset encoded in ptr.
func (a *Arena) AddressOffset(ptr tensor.Pointer) int { return ptr.Offset() }

// AddressLength returns the element length encoded in ptr.
func (a *Arena) AddressLength(ptr tensor.Pointer) int { return ptr.Length() }
