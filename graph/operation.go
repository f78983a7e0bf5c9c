// Package graph implements the layered tensor-operation dataflow graph: a
// statically-built DAG of Operations whose forward and backward passes are
// driven by an ExecutionContext against a two-arena memory model (see
// package arena). There is no dynamic (define-by-run) graph construction —
// the topology is fixed once every Operation constructor has run, and
// InitializeExecution partitions it into layers exactly once.
package graph

import "github.com/corograd/core/tensor"

// Operation is one node of the dataflow graph: a pure function from zero,
// one, or two upstream operand tensors to a single result tensor, plus the
// derivative rules needed to propagate a gradient back through it.
//
// An Operation has at most one downstream consumer (Next): the constructor
// of whichever Operation takes it as an operand records itself as that
// Next, so the graph is a forest of single-successor chains ("layers")
// joined by operand edges, not an arbitrary DAG with fan-out merging.
type Operation interface {
	// Left and Right are this operation's upstream operands. Either or both
	// may be nil (Variable and Constant have neither).
	Left() Operation
	Right() Operation

	// Next is this operation's sole downstream consumer, or nil if it is a
	// terminal (nothing consumes its result).
	Next() Operation
	SetNext(op Operation)

	// LayerIndex is this operation's layer assignment, or -1 while it has
	// none. RegisterOperation sets it for a Variable; InitializeExecution's
	// layering and sizing passes set it for every other operation.
	LayerIndex() int
	SetLayerIndex(i int)

	// RequiresBackwardDerivative reports whether any transitive operand is a
	// trainable Variable. Operations whose subtree is entirely Constants
	// skip backward work entirely.
	RequiresBackwardDerivative() bool

	// MaxResultShape is the shape this operation's forward pass will
	// produce, known from its operands' shapes alone.
	MaxResultShape() tensor.Shape

	// ForwardMemoryAllocations and BackwardMemoryAllocations list the arena
	// allocations (by shape) this operation's ForwardPass and backward
	// derivative calls will make, used by the sizing pass to size the three
	// arenas before any pass actually runs.
	ForwardMemoryAllocations() []tensor.Shape
	BackwardMemoryAllocations() []tensor.Shape

	// ForwardPass computes this operation's result, allocating it in the
	// forward arena, and caches the resulting pointer (see
	// LastForwardResult).
	ForwardPass() (tensor.Pointer, error)

	// LeftBackwardDerivative and RightBackwardDerivative compute the
	// gradient with respect to the corresponding operand, reading this
	// operation's own DerivativeChainValue (the gradient flowing in from
	// its consumer) and its cached forward results.
	LeftBackwardDerivative() (tensor.Pointer, error)
	RightBackwardDerivative() (tensor.Pointer, error)

	// DerivativeChainValue is the upstream gradient delivered to this
	// operation by its consumer's backward pass (or seeded directly for a
	// terminal operation).
	DerivativeChainValue() tensor.Pointer
	SetDerivativeChainValue(p tensor.Pointer)

	// LastForwardResult is the pointer ForwardPass most recently produced.
	LastForwardResult() tensor.Pointer
}

// baseOp holds the bookkeeping fields every concrete Operation shares:
// operand links, layer assignment, and the two pointers backward
// propagation reads and writes. Concrete operations embed it and implement
// only the numeric methods (MaxResultShape, the allocation lists, and the
// three pass methods).
type baseOp struct {
	ctx   *ExecutionContext
	left  Operation
	right Operation
	next  Operation

	layerIndex int

	requiresGrad bool

	derivativeChainValue tensor.Pointer
	lastForwardResult    tensor.Pointer
}

func newBaseOp(ctx *ExecutionContext, left, right Operation) baseOp {
	requiresGrad := (left != nil && left.RequiresBackwardDerivative()) ||
		(right != nil && right.RequiresBackwardDerivative())

	return baseOp{
		ctx:          ctx,
		left:         left,
		right:        right,
		layerIndex:   -1,
		requiresGrad: requiresGrad,
	}
}

// linkNext records op as the sole downstream consumer of every non-nil
// operand it was built from. Every concrete constructor calls this after
// building its result so Next()-chain walks can discover it.
func linkNext(op Operation, operands ...Operation) {
	for _, operand := range operands {
		if operand != nil {
			operand.SetNext(op)
		}
	}
}

func (b *baseOp) Left() Operation  { return b.left }
func (b *baseOp) Right() Operation { return b.right }
func (b *baseOp) Next() Operation  { return b.next }
func (b *baseOp) SetNext(op Operation) {
	b.next = op
}

func (b *baseOp) LayerIndex() int        { return b.layerIndex }
func (b *baseOp) SetLayerIndex(i int)    { b.layerIndex = i }
func (b *baseOp) RequiresBackwardDerivative() bool { return b.requiresGrad }

func (b *baseOp) DerivativeChainValue() tensor.Pointer { return b.derivativeChainValue }
func (b *baseOp) SetDerivativeChainValue(p tensor.Pointer) {
	b.derivativeChainValue = p
}

func (b *baseOp) LastForwardResult() tensor.Pointer { return b.lastForwardResult }
