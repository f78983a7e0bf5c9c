package numkernel

// unrollWidth is the element count processed per loop iteration before
// falling through to the scalar tail. Eight lanes is a conservative stand-in
// for a real AVX2 float32 vector (8 x float32 = 256 bits).
const unrollWidth = 8

// Add computes dst[i] = a[i] + b[i] elementwise.
func Add(dst, a, b []float32) {
	n := len(dst)
	i := 0

	for ; i+unrollWidth <= n; i += unrollWidth {
		dst[i] = a[i] + b[i]
		dst[i+1] = a[i+1] + b[i+1]
		dst[i+2] = a[i+2] + b[i+2]
		dst[i+3] = a[i+3] + b[i+3]
		dst[i+4] = a[i+4] + b[i+4]
		dst[i+5] = a[i+5] + b[i+5]
		dst[i+6] = a[i+6] + b[i+6]
		dst[i+7] = a[i+7] + b[i+7]
	}

	for ; i < n; i++ {
		dst[i] = a[i] + b[i]
	}
}

// Sub computes dst[i] = a[i] - b[i] elementwise.
func Sub(dst, a, b []float32) {
	n := len(dst)
	i := 0

	for ; i+unrollWidth <= n; i += unrollWidth {
		dst[i] = a[i] - b[i]
		dst[i+1] = a[i+1] - b[i+1]
		dst[i+2] = a[i+2] - b[i+2]
		dst[i+3] = a[i+3] - b[i+3]
		dst[i+4] = a[i+4] - b[i+4]
		dst[i+5] = a[i+5] - b[i+5]
		dst[i+6] = a[i+6] - b[i+6]
		dst[i+7] = a[i+7] - b[i+7]
	}

	for ; i < n; i++ {
		dst[i] = a[i] - b[i]
	}
}

// Hadamard computes dst[i] = a[i] * b[i] elementwise.
func Hadamard(dst, a, b []float32) {
	n := len(dst)
	i := 0

	for ; i+unrollWidth <= n; i += unrollWidth {
		dst[i] = a[i] * b[i]
		dst[i+1] = a[i+1] * b[i+1]
		dst[i+2] = a[i+2] * b[i+2]
		dst[i+3] = a[i+3] * b[i+3]
		dst[i+4] = a[i+4] * b[i+4]
		dst[i+5] = a[i+5] * b[i+5]
		dst[i+6] = a[i+6] * b[i+6]
		dst[i+7] = a[i+7] * b[i+7]
	}

	for ; i < n; i++ {
		dst[i] = a[i] * b[i]
	}
}

// LeakyReLU computes dst[i] = x[i] > 0 ? x[i] : alpha*x[i].
func LeakyReLU(dst, x []float32, alpha float32) {
	n := len(dst)
	i := 0

	for ; i+unrollWidth <= n; i += unrollWidth {
		for j := 0; j < unrollWidth; j++ {
			v := x[i+j]
			if v <= 0 {
				v *= alpha
			}

			dst[i+j] = v
		}
	}

	for ; i < n; i++ {
		v := x[i]
		if v <= 0 {
			v *= alpha
		}

		dst[i] = v
	}
}

// LeakyReLUGrad computes dst[i] = upstream[i] * (x[i] > 0 ? 1 : alpha).
func LeakyReLUGrad(dst, x, upstream []float32, alpha float32) {
	n := len(dst)

	for i := 0; i < n; i++ {
		slope := alpha
		if x[i] > 0 {
			slope = 1
		}

		dst[i] = upstream[i] * slope
	}
}

// SumRows computes sum[c] = Σ_r src[r*cols+c] — the gradient of a
// row-broadcast bias, summing the incoming gradient down the batch
// dimension.
func SumRows(sum, src []float32, rows, cols int) {
	for c := 0; c < cols; c++ {
		sum[c] = 0
	}

	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			sum[c] += src[base+c]
		}
	}
}
