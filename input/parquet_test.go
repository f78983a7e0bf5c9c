package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewParquetMatrixSourceMissingFile(t *testing.T) {
	_, err := NewParquetMatrixSource("/nonexistent/path/does-not-exist.parquet", 10, 4, true)
	require.Error(t, err)
}
