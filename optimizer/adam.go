package optimizer

import "math"

type adamState struct {
	m, v []float32
	step int
}

// Adam implements the Adam optimizer (Kingma & Ba) with bias-corrected
// first and second moment estimates. A BatchSizeSource is mandatory: Adam's
// moment estimates are only meaningful over mean gradients, so construction
// fails with a ConfigurationError rather than silently assuming batch size 1.
type Adam struct {
	learningRate float32
	beta1        float32
	beta2        float32
	epsilon      float32
	batchSize    BatchSizeSource
	state        map[Variable]*adamState
}

// AdamOption configures an Adam optimizer at construction time.
type AdamOption func(*Adam)

// WithAdamBetas overrides the default first/second moment decay rates
// (0.9, 0.999).
func WithAdamBetas(beta1, beta2 float32) AdamOption {
	return func(a *Adam) {
		a.beta1 = beta1
		a.beta2 = beta2
	}
}

// WithAdamEpsilon overrides the default numerical-stability epsilon (1e-8).
func WithAdamEpsilon(epsilon float32) AdamOption {
	return func(a *Adam) { a.epsilon = epsilon }
}

// NewAdam creates an Adam optimizer. batchSize must be non-nil.
func NewAdam(learningRate float32, batchSize BatchSizeSource, opts ...AdamOption) (*Adam, error) {
	if batchSize == nil {
		return nil, newConfigurationError("NewAdam", "a batch-size source is required")
	}

	a := &Adam{
		learningRate: learningRate,
		beta1:        0.9,
		beta2:        0.999,
		epsilon:      1e-8,
		batchSize:    batchSize,
		state:        make(map[Variable]*adamState),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Step updates v's value in place, maintaining v's own first/second moment
// state keyed by its identity.
func (a *Adam) Step(v Variable) error {
	st, ok := a.state[v]
	if !ok {
		n := len(v.Data())
		st = &adamState{m: make([]float32, n), v: make([]float32, n)}
		a.state[v] = st
	}

	st.step++

	divisor := divisorOf(a.batchSize)
	data := v.Data()
	grad := v.Gradient()

	biasCorrection1 := 1 - float32(math.Pow(float64(a.beta1), float64(st.step)))
	biasCorrection2 := 1 - float32(math.Pow(float64(a.beta2), float64(st.step)))

	for i := range data {
		g := grad[i] / divisor

		st.m[i] = a.beta1*st.m[i] + (1-a.beta1)*g
		st.v[i] = a.beta2*st.v[i] + (1-a.beta2)*g*g

		mHat := st.m[i] / biasCorrection1
		vHat := st.v[i] / biasCorrection2

		data[i] -= a.learningRate * mHat / (float32(math.Sqrt(float64(vHat))) + a.epsilon)
	}

	return nil
}
