package input

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomMatrixSourceDeterministic(t *testing.T) {
	s1 := NewRandomMatrixSource(4, 3, 2, 42)
	s2 := NewRandomMatrixSource(4, 3, 2, 42)

	f1, l1, n1, err := s1.Next()
	require.NoError(t, err)
	f2, l2, n2, err := s2.Next()
	require.NoError(t, err)

	require.Equal(t, n1, n2)
	require.Equal(t, f1, f2)
	require.Equal(t, l1, l2)
	require.Len(t, f1, 12)
	require.Len(t, l1, 8)
}

func TestRandomMatrixSourceNeverExhausts(t *testing.T) {
	s := NewRandomMatrixSource(2, 2, 0, 1)

	for i := 0; i < 10; i++ {
		features, labels, n, err := s.Next()
		require.NoError(t, err)
		require.Equal(t, 2, n)
		require.Len(t, features, 4)
		require.Nil(t, labels)
	}

	require.NoError(t, s.Close())
}

func TestRandomMatrixSourceDims(t *testing.T) {
	s := NewRandomMatrixSource(8, 5, 1, 7)
	require.Equal(t, 8, s.Rows())
	require.Equal(t, 5, s.Cols())
}
