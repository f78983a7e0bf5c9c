package input

import (
	"fmt"
	"io"
	"os"

	"github.com/parquet-go/parquet-go"
)

// parquetRow is the on-disk schema ParquetMatrixSource expects: a fixed-width
// feature vector plus an optional label column. parquet-go encodes the
// []float32 field as a repeated column via reflection, so no hand-written
// schema is needed.
type parquetRow struct {
	Features []float32 `parquet:"features"`
	Label    float32   `parquet:"label"`
}

// ParquetMatrixSource reads row-major float32 matrices out of a Parquet
// file, batching rows into Rows()-sized chunks. Every row's Features slice
// must have exactly Cols() elements (the cols given to
// NewParquetMatrixSource); Next fails on a row that does not.
type ParquetMatrixSource struct {
	file      *os.File
	reader    *parquet.GenericReader[parquetRow]
	rows      int
	cols      int
	hasLabels bool
}

// NewParquetMatrixSource opens path and prepares to serve rows-sized
// batches. cols is the expected feature width, checked by Next against every
// row it reads; hasLabels controls whether Next populates the label slice.
func NewParquetMatrixSource(path string, rows, cols int, hasLabels bool) (*ParquetMatrixSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("input: opening %s: %w", path, err)
	}

	r := parquet.NewGenericReader[parquetRow](f)

	return &ParquetMatrixSource{
		file:      f,
		reader:    r,
		rows:      rows,
		cols:      cols,
		hasLabels: hasLabels,
	}, nil
}

func (s *ParquetMatrixSource) Next() ([]float32, []float32, int, error) {
	rowBuf := make([]parquetRow, s.rows)

	n, err := s.reader.Read(rowBuf)
	if n == 0 && err == io.EOF {
		return nil, nil, 0, ErrExhausted
	}

	if err != nil && err != io.EOF {
		return nil, nil, 0, fmt.Errorf("input: reading parquet batch: %w", err)
	}

	features := make([]float32, 0, n*s.cols)

	var labels []float32
	if s.hasLabels {
		labels = make([]float32, 0, n)
	}

	for i := 0; i < n; i++ {
		row := rowBuf[i]
		if len(row.Features) != s.cols {
			return nil, nil, 0, fmt.Errorf("input: row %d has %d features, want %d", i, len(row.Features), s.cols)
		}

		features = append(features, row.Features...)

		if s.hasLabels {
			labels = append(labels, row.Label)
		}
	}

	return features, labels, n, nil
}

func (s *ParquetMatrixSource) Cols() int { return s.cols }
func (s *ParquetMatrixSource) Rows() int { return s.rows }

// BatchSize satisfies optimizer.BatchSizeSource.
func (s *ParquetMatrixSource) BatchSize() int { return s.rows }

func (s *ParquetMatrixSource) Close() error {
	if err := s.reader.Close(); err != nil {
		s.file.Close()
		return fmt.Errorf("input: closing parquet reader: %w", err)
	}

	return s.file.Close()
}
