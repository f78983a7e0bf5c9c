package graph

import (
	"sort"

	"github.com/corograd/core/arena"
	"github.com/corograd/core/device"
	"github.com/corograd/core/tensor"
)

// ExecutionContext owns the graph's registered Variables, the layer
// partition InitializeExecution computes from them, and the Arena that
// backs every Operation's forward and backward allocations. One
// ExecutionContext drives exactly one graph; several can coexist
// independently since none of the execution state here is global.
type ExecutionContext struct {
	alloc device.Allocator
	arena *arena.Arena

	roots      []*Variable
	layerTails []Operation
	terminals  []Operation

	initialized bool
	epochs      int
}

// ExecutionContextOption configures an ExecutionContext at construction
// time.
type ExecutionContextOption func(*ExecutionContext)

// WithEpochs sets how many full forward+backward steps ExecutePropagation
// runs (default 1).
func WithEpochs(n int) ExecutionContextOption {
	return func(ec *ExecutionContext) { ec.epochs = n }
}

// NewExecutionContext creates an ExecutionContext. alloc may be nil, in
// which case a plain CPU allocator is used.
func NewExecutionContext(alloc device.Allocator, opts ...ExecutionContextOption) *ExecutionContext {
	if alloc == nil {
		alloc = device.NewCPUAllocator()
	}

	ec := &ExecutionContext{alloc: alloc, epochs: 1}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// RegisterOperation registers v as a graph root, assigning it a fresh
// layerIndex. It fails if v is already registered or InitializeExecution
// has already run.
func (ec *ExecutionContext) RegisterOperation(v *Variable) error {
	if ec.initialized {
		return newGraphError("RegisterOperation", "cannot register a variable after InitializeExecution")
	}

	if v.LayerIndex() != -1 {
		return newGraphError("RegisterOperation", "variable is already registered")
	}

	v.SetLayerIndex(len(ec.roots))
	ec.roots = append(ec.roots, v)

	return nil
}

// InitializeExecution partitions the graph into layers, sizes the three
// arenas from that partition, and allocates them. It may only be called
// once, after every Variable that participates in the graph has been
// registered and every Operation that consumes them has been constructed.
func (ec *ExecutionContext) InitializeExecution() error {
	if ec.initialized {
		return newGraphError("InitializeExecution", "already initialized")
	}

	if len(ec.roots) == 0 {
		return newGraphError("InitializeExecution", "no registered variables")
	}

	n := len(ec.roots)
	ec.layerTails = make([]Operation, n)

	type terminalFound struct {
		rootIndex int
		op        Operation
	}

	var found []terminalFound

	for i := n - 1; i >= 0; i-- {
		root := ec.roots[i]

		// The root's own layerIndex was already set to i at registration,
		// so the walk proper starts downstream of it; root is always its
		// own layer's initial tail candidate, covering the no-consumers case.
		var cur Operation = root.Next()
		prev := Operation(root)
		ec.layerTails[i] = root

		for cur != nil && cur.LayerIndex() == -1 {
			cur.SetLayerIndex(i)
			ec.layerTails[i] = cur
			prev = cur
			cur = cur.Next()
		}

		if cur == nil {
			found = append(found, terminalFound{rootIndex: i, op: prev})
		}
	}

	sort.Slice(found, func(a, b int) bool { return found[a].rootIndex < found[b].rootIndex })

	ec.terminals = make([]Operation, len(found))
	for i, d := range found {
		ec.terminals[i] = d.op
	}

	forwardSize, backwardSize := ec.sizeLayers()

	a, err := arena.New(ec.alloc, forwardSize, backwardSize)
	if err != nil {
		return err
	}

	ec.arena = a
	ec.initialized = true

	return nil
}

// sizeLayers walks each layer's spine (root to tail) summing both forward
// and backward footprints within the layer — every op on the spine gets
// its own fresh bump allocation before the next SwapBackward resets the
// index, so a layer's backward usage is cumulative across its ops, not
// just the largest single one. Forward footprints add across layers
// (one arena, growing all step); backward footprints take the max across
// layers (two arenas, each sized to the worst single layer, ping-ponging
// between them). A spine op's operands that the layering pass never
// reached — a Constant fed in as the other side of an Add or
// Multiplication, never itself downstream of any root — are claimed for
// the consuming layer here, since their forward allocation still has to
// fit somewhere.
func (ec *ExecutionContext) sizeLayers() (forwardTotal, backwardMax int) {
	for i, root := range ec.roots {
		var cur Operation = root

		layerForward := 0
		layerBackward := 0

		for cur != nil && cur.LayerIndex() == i {
			ec.accumulateOp(cur, i, &layerForward, &layerBackward)
			cur = cur.Next()
		}

		// A true terminal (no downstream consumer) needs one more backward
		// slot for the gradient seeded into it — ExecuteBackwardPropagation's
		// ones-seed, or an externally injected loss gradient. Either way
		// that incoming slot isn't described by the op's own declared
		// backwardMemoryAllocations, which cover only the gradients it
		// computes for its operands.
		if tail := ec.layerTails[i]; tail != nil && tail.Next() == nil {
			layerBackward += tail.MaxResultShape().Stride()
		}

		forwardTotal += layerForward

		if layerBackward > backwardMax {
			backwardMax = layerBackward
		}
	}

	return forwardTotal, backwardMax
}

// accumulateOp adds op's own forward/backward footprint into the running
// layer totals, then recurses into any operand the layering pass left
// unclaimed (LayerIndex -1), assigning it to layer so every operation ends
// up belonging to exactly one layer.
func (ec *ExecutionContext) accumulateOp(op Operation, layer int, forwardSum, backwardSum *int) {
	for _, s := range op.ForwardMemoryAllocations() {
		*forwardSum += s.Stride()
	}

	for _, s := range op.BackwardMemoryAllocations() {
		*backwardSum += s.Stride()
	}

	for _, operand := range [2]Operation{op.Left(), op.Right()} {
		if operand == nil || operand.LayerIndex() != -1 {
			continue
		}

		operand.SetLayerIndex(layer)
		ec.accumulateOp(operand, layer, forwardSum, backwardSum)
	}
}

// ExecuteForwardPropagation resets the forward arena, evaluates every
// terminal operation, and returns their result handles in registration
// order.
func (ec *ExecutionContext) ExecuteForwardPropagation() ([]tensor.Pointer, error) {
	if !ec.initialized {
		return nil, newGraphError("ExecuteForwardPropagation", "InitializeExecution has not been called")
	}

	ec.arena.ResetStep()

	results := make([]tensor.Pointer, len(ec.terminals))

	for i, term := range ec.terminals {
		ptr, err := term.ForwardPass()
		if err != nil {
			return nil, err
		}

		results[i] = ptr
	}

	return results, nil
}

// ExecuteBackwardPropagation walks every layer from last to first,
// propagating gradients in-layer via backStep. The backward arena has only
// two physical buffers, so layer i's gradients stop being readable once two
// more layers have swapped past it — ec.roots[i].step() must consume them
// immediately after backStep(tail), before SwapBackward hands that buffer to
// a later layer, not in a pass over all roots once the walk is done.
func (ec *ExecutionContext) ExecuteBackwardPropagation() error {
	if !ec.initialized {
		return newGraphError("ExecuteBackwardPropagation", "InitializeExecution has not been called")
	}

	for i := len(ec.layerTails) - 1; i >= 0; i-- {
		tail := ec.layerTails[i]

		if tail.Next() == nil && tail.DerivativeChainValue().IsNull() {
			seed, err := ec.seedOnes(tail)
			if err != nil {
				return err
			}

			tail.SetDerivativeChainValue(seed)
		}

		if err := ec.backStep(tail); err != nil {
			return err
		}

		// The seed (or injected gradient) belongs to this step only, so the
		// next step seeds or injects afresh instead of reusing a stale slot.
		if tail.Next() == nil {
			tail.SetDerivativeChainValue(tensor.Null)
		}

		if err := ec.roots[i].step(); err != nil {
			return err
		}

		ec.arena.SwapBackward()
	}

	return nil
}

// seedOnes allocates a backward slot of ones matching op's output shape —
// the conventional dL/dL = 1 seed for a terminal with no external caller
// supplying one.
func (ec *ExecutionContext) seedOnes(op Operation) (tensor.Pointer, error) {
	shape := op.MaxResultShape()

	ptr, err := ec.arena.AllocateBackward(shape)
	if err != nil {
		return tensor.Null, err
	}

	buf, err := ec.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return tensor.Null, err
	}

	for i := range buf {
		buf[i] = 1
	}

	return ptr, nil
}

// backStep computes op's per-side gradients, delivers them to the
// corresponding operand, and recurses only while the operand stays in the
// same layer — crossing into another layer is handled by the next
// iteration of the layer loop, after the arena swap.
func (ec *ExecutionContext) backStep(op Operation) error {
	if op.Left() != nil && op.Left().RequiresBackwardDerivative() {
		grad, err := op.LeftBackwardDerivative()
		if err != nil {
			return err
		}

		if !grad.IsNull() {
			op.Left().SetDerivativeChainValue(grad)
		}

		if op.Left().LayerIndex() == op.LayerIndex() {
			if err := ec.backStep(op.Left()); err != nil {
				return err
			}
		}
	}

	if op.Right() != nil && op.Right().RequiresBackwardDerivative() {
		grad, err := op.RightBackwardDerivative()
		if err != nil {
			return err
		}

		if !grad.IsNull() {
			op.Right().SetDerivativeChainValue(grad)
		}

		if op.Right().LayerIndex() == op.LayerIndex() {
			if err := ec.backStep(op.Right()); err != nil {
				return err
			}
		}
	}

	return nil
}

// ExecuteStep runs one full forward-then-backward step.
func (ec *ExecutionContext) ExecuteStep() ([]tensor.Pointer, error) {
	results, err := ec.ExecuteForwardPropagation()
	if err != nil {
		return nil, err
	}

	if err := ec.ExecuteBackwardPropagation(); err != nil {
		return nil, err
	}

	return results, nil
}

// ExecutePropagation runs ExecuteStep once per configured epoch (see
// WithEpochs), returning the final step's forward result handles.
func (ec *ExecutionContext) ExecutePropagation() ([]tensor.Pointer, error) {
	var results []tensor.Pointer

	for e := 0; e < ec.epochs; e++ {
		r, err := ec.ExecuteStep()
		if err != nil {
			return nil, err
		}

		results = r
	}

	return results, nil
}

// InjectGradient seeds op's incoming gradient directly from values, for a
// loss computed outside the graph (e.g. mean squared error, which has no
// dedicated operation). Call it after ExecuteForwardPropagation and before
// ExecuteBackwardPropagation; the values are copied into a freshly
// allocated backward slot sized to op's MaxResultShape.
func (ec *ExecutionContext) InjectGradient(op Operation, values []float32) error {
	if !ec.initialized {
		return newGraphError("InjectGradient", "InitializeExecution has not been called")
	}

	ptr, err := ec.arena.AllocateBackward(op.MaxResultShape())
	if err != nil {
		return err
	}

	buf, err := ec.arena.GetMemoryBuffer(ptr)
	if err != nil {
		return err
	}

	copy(buf, values)
	op.SetDerivativeChainValue(ptr)

	return nil
}

// GetMemoryBuffer, AddressOffset and AddressLength are the only way
// external code (tests, loss reporting) reads a result handle.
func (ec *ExecutionContext) GetMemoryBuffer(ptr tensor.Pointer) ([]float32, error) {
	return ec.arena.GetMemoryBuffer(ptr)
}

func (ec *ExecutionContext) AddressOffset(ptr tensor.Pointer) int { return ec.arena.AddressOffset(ptr) }
func (ec *ExecutionContext) AddressLength(ptr tensor.Pointer) int { return ec.arena.AddressLength(ptr) }
