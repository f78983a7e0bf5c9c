package optimizer

// SGD implements plain stochastic gradient descent: value -= lr * grad.
//
// A BatchSizeSource is optional for SGD (unlike Adam and AMSGrad): without
// one the raw gradient is used as-is, matching callers who have already
// divided by batch size upstream.
type SGD struct {
	learningRate float32
	batchSize    BatchSizeSource
}

// SGDOption configures an SGD optimizer at construction time.
type SGDOption func(*SGD)

// WithSGDBatchSize supplies the minibatch-size divisor SGD applies to every
// gradient before scaling it by the learning rate.
func WithSGDBatchSize(src BatchSizeSource) SGDOption {
	return func(s *SGD) { s.batchSize = src }
}

// NewSGD creates an SGD optimizer with the given learning rate.
func NewSGD(learningRate float32, opts ...SGDOption) *SGD {
	s := &SGD{learningRate: learningRate}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Step updates v's value in place from its currently accumulated gradient.
func (s *SGD) Step(v Variable) error {
	divisor := divisorOf(s.batchSize)
	data := v.Data()
	grad := v.Gradient()

	for i := range data {
		data[i] -= s.learningRate * (grad[i] / divisor)
	}

	return nil
}
