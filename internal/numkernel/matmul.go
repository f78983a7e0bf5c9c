// Package numkernel holds the pure, allocation-free float32 math kernels
// the graph operations build on: matrix multiply, row-wise softmax, and
// the elementwise arithmetic family. These are the "standalone matrix/
// vector math kernels" the engine treats as external collaborators — the
// graph operations call them but never inline numeric code of their own.
package numkernel

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// MatMul computes c = a*b for row-major, contiguous matrices: a is (m, k),
// b is (k, n), c is (m, n). It delegates to gonum's blas32 SGEMM rather
// than a hand-rolled triple loop — real BLAS is the idiomatic choice for
// the one kernel where a naive loop nest would dominate training time.
func MatMul(m, k, n int, a, b, c []float32) error {
	if len(a) != m*k {
		return fmt.Errorf("%w: a has %d elements, want %d", ErrShapeMismatch, len(a), m*k)
	}

	if len(b) != k*n {
		return fmt.Errorf("%w: b has %d elements, want %d", ErrShapeMismatch, len(b), k*n)
	}

	if len(c) != m*n {
		return fmt.Errorf("%w: c has %d elements, want %d", ErrShapeMismatch, len(c), m*n)
	}

	A := blas32.General{Rows: m, Cols: k, Data: a, Stride: k}
	B := blas32.General{Rows: k, Cols: n, Data: b, Stride: n}
	C := blas32.General{Rows: m, Cols: n, Data: c, Stride: n}

	blas32.Implementation().Sgemm(blas.NoTrans, blas.NoTrans, m, n, k, 1, A.Data, A.Stride, B.Data, B.Stride, 0, C.Data, C.Stride)

	return nil
}

// MatMulTransposeA computes c = aᵀ*b where a is (k, m) so aᵀ is (m, k),
// b is (k, n), c is (m, n). Used by Multiplication's right-gradient:
// dL/dB = Aᵀ · dL/dY.
func MatMulTransposeA(m, k, n int, a, b, c []float32) error {
	if len(a) != k*m {
		return fmt.Errorf("%w: a has %d elements, want %d", ErrShapeMismatch, len(a), k*m)
	}

	if len(b) != k*n {
		return fmt.Errorf("%w: b has %d elements, want %d", ErrShapeMismatch, len(b), k*n)
	}

	if len(c) != m*n {
		return fmt.Errorf("%w: c has %d elements, want %d", ErrShapeMismatch, len(c), m*n)
	}

	blas32.Implementation().Sgemm(blas.Trans, blas.NoTrans, m, n, k, 1, a, m, b, n, 0, c, n)

	return nil
}

// MatMulTransposeB computes c = a*bᵀ where a is (m, k), b is (n, k) so bᵀ
// is (k, n), c is (m, n). Used by Multiplication's left-gradient:
// dL/dA = dL/dY · Bᵀ.
func MatMulTransposeB(m, k, n int, a, b, c []float32) error {
	if len(a) != m*k {
		return fmt.Errorf("%w: a has %d elements, want %d", ErrShapeMismatch, len(a), m*k)
	}

	if len(b) != n*k {
		return fmt.Errorf("%w: b has %d elements, want %d", ErrShapeMismatch, len(b), n*k)
	}

	if len(c) != m*n {
		return fmt.Errorf("%w: c has %d elements, want %d", ErrShapeMismatch, len(c), m*n)
	}

	blas32.Implementation().Sgemm(blas.NoTrans, blas.Trans, m, n, k, 1, a, k, b, k, 0, c, n)

	return nil
}
