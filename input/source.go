// Package input feeds row-major float32 matrices into a graph at step
// boundaries. A MatrixSource is deliberately minimal: it knows nothing about
// Operations or arenas, only how to hand back the next batch's feature
// matrix and, where one exists, its label matrix.
package input

import "errors"

// ErrExhausted is returned by Next once a finite source has no further
// batches. Infinite sources (random generators) never return it.
var ErrExhausted = errors.New("input: source exhausted")

// MatrixSource produces one batch of (features, labels) per Next call, both
// row-major and flattened to a single []float32 the caller reshapes against
// whatever Shape the feeding Operation expects. Labels is nil for sources
// that carry no label column.
type MatrixSource interface {
	// Next returns the next batch's feature matrix, its label matrix (or
	// nil), and the batch's row count. It returns ErrExhausted once a
	// finite source is depleted.
	Next() (features []float32, labels []float32, rows int, err error)

	// Cols reports the feature width; Rows reports the configured batch
	// size. Both are fixed for the lifetime of the source.
	Cols() int
	Rows() int

	// BatchSize mirrors Rows, under the name optimizer.BatchSizeSource
	// expects, so a MatrixSource can be handed directly to NewAdam or
	// NewAMSGrad as the mean-gradient divisor.
	BatchSize() int

	// Close releases any resources (open files, etc.) the source holds.
	Close() error
}
