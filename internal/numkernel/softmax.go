package numkernel

import "math"

// SoftmaxRows writes the row-wise softmax of src (rows x cols, row-major)
// into dst, subtracting each row's max before exponentiating for numerical
// stability.
func SoftmaxRows(dst, src []float32, rows, cols int) {
	for r := 0; r < rows; r++ {
		base := r * cols
		row := src[base : base+cols]
		out := dst[base : base+cols]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}

		var sum float32

		for c, v := range row {
			e := float32(math.Exp(float64(v - maxVal)))
			out[c] = e
			sum += e
		}

		for c := range out {
			out[c] /= sum
		}
	}
}

// CrossEntropyFromSoftmax computes -Σ log(softmax) ⊙ expected over all
// elements, returning the scalar loss. softmax and expected both have
// rows*cols elements.
func CrossEntropyFromSoftmax(softmax, expected []float32) float32 {
	var loss float32

	for i, p := range softmax {
		if expected[i] == 0 {
			continue
		}

		loss -= expected[i] * float32(math.Log(float64(p)))
	}

	return loss
}
