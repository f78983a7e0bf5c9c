package optimizer

import "math"

type amsgradState struct {
	m, v, vMax []float32
}

// AMSGrad implements the AMSGrad variant of Adam (Reddi, Kale & Kumar): it
// keeps a running maximum of the second moment estimate and divides by that
// maximum instead of the current estimate, which fixes Adam's failure to
// converge on some non-stationary objectives. Unlike Adam, AMSGrad applies
// no bias correction — v_max's monotonic growth already dominates the
// startup transient bias correction is meant to compensate for.
type AMSGrad struct {
	learningRate float32
	beta1        float32
	beta2        float32
	epsilon      float32
	batchSize    BatchSizeSource
	state        map[Variable]*amsgradState
}

// AMSGradOption configures an AMSGrad optimizer at construction time.
type AMSGradOption func(*AMSGrad)

// WithAMSGradBetas overrides the default first/second moment decay rates
// (0.9, 0.999).
func WithAMSGradBetas(beta1, beta2 float32) AMSGradOption {
	return func(a *AMSGrad) {
		a.beta1 = beta1
		a.beta2 = beta2
	}
}

// WithAMSGradEpsilon overrides the default numerical-stability epsilon
// (1e-8).
func WithAMSGradEpsilon(epsilon float32) AMSGradOption {
	return func(a *AMSGrad) { a.epsilon = epsilon }
}

// NewAMSGrad creates an AMSGrad optimizer. batchSize must be non-nil.
func NewAMSGrad(learningRate float32, batchSize BatchSizeSource, opts ...AMSGradOption) (*AMSGrad, error) {
	if batchSize == nil {
		return nil, newConfigurationError("NewAMSGrad", "a batch-size source is required")
	}

	a := &AMSGrad{
		learningRate: learningRate,
		beta1:        0.9,
		beta2:        0.999,
		epsilon:      1e-8,
		batchSize:    batchSize,
		state:        make(map[Variable]*amsgradState),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Step updates v's value in place, maintaining v's own moment and
// running-maximum state keyed by its identity.
func (a *AMSGrad) Step(v Variable) error {
	st, ok := a.state[v]
	if !ok {
		n := len(v.Data())
		st = &amsgradState{m: make([]float32, n), v: make([]float32, n), vMax: make([]float32, n)}
		a.state[v] = st
	}

	divisor := divisorOf(a.batchSize)
	data := v.Data()
	grad := v.Gradient()

	for i := range data {
		g := grad[i] / divisor

		st.m[i] = a.beta1*st.m[i] + (1-a.beta1)*g
		st.v[i] = a.beta2*st.v[i] + (1-a.beta2)*g*g

		if st.v[i] > st.vMax[i] {
			st.vMax[i] = st.v[i]
		}

		data[i] -= a.learningRate * st.m[i] / (float32(math.Sqrt(float64(st.vMax[i]))) + a.epsilon)
	}

	return nil
}
