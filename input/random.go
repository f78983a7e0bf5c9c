package input

import "math/rand"

// RandomMatrixSource generates batches of uniform random floats in [-1, 1)
// from a seeded generator, for tests and smoke-running a graph without a
// real dataset. It never exhausts.
type RandomMatrixSource struct {
	rows, cols   int
	labelCols    int
	rng          *rand.Rand
}

// NewRandomMatrixSource creates a source yielding rows x cols feature
// batches and, if labelCols > 0, rows x labelCols label batches, both drawn
// from the given seed so two sources built with the same seed produce
// identical sequences.
func NewRandomMatrixSource(rows, cols, labelCols int, seed int64) *RandomMatrixSource {
	return &RandomMatrixSource{
		rows:      rows,
		cols:      cols,
		labelCols: labelCols,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

func (s *RandomMatrixSource) Next() ([]float32, []float32, int, error) {
	features := make([]float32, s.rows*s.cols)
	for i := range features {
		features[i] = s.rng.Float32()*2 - 1
	}

	var labels []float32
	if s.labelCols > 0 {
		labels = make([]float32, s.rows*s.labelCols)
		for i := range labels {
			labels[i] = s.rng.Float32()*2 - 1
		}
	}

	return features, labels, s.rows, nil
}

func (s *RandomMatrixSource) Cols() int { return s.cols }
func (s *RandomMatrixSource) Rows() int { return s.rows }

// BatchSize satisfies optimizer.BatchSizeSource, so a source can be handed
// directly to NewAdam/NewAMSGrad as the mean-gradient divisor.
func (s *RandomMatrixSource) BatchSize() int { return s.rows }

func (s *RandomMatrixSource) Close() error { return nil }
