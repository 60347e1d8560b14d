package contact

import "math"

// DiagonalMeans returns, for every offset d in [0, n), the mean of the defined
// entries (i, i+d). An offset with no defined entries, or whose defined entries
// are all zero, has an undefined (NaN) mean.
func DiagonalMeans(m *Matrix) []float64 {
	n := m.Size()
	means := make([]float64, n)
	for d := 0; d < n; d++ {
		sum, count := 0.0, 0
		for i := 0; i+d < n; i++ {
			if v := m.At(i, i+d); !math.IsNaN(v) {
				sum += v
				count++
			}
		}
		if count == 0 || sum == 0 {
			means[d] = math.NaN()
			continue
		}
		means[d] = sum / float64(count)
	}
	return means
}

// NormalizeDistance divides every entry by the mean of its diagonal, removing
// the decay of contact frequency with genomic distance. The result is
// unchanged when every input entry is scaled by the same positive constant.
func NormalizeDistance(m *Matrix) *Matrix {
	n := m.Size()
	means := DiagonalMeans(m)
	out, _ := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			mean := means[j-i]
			v := m.At(i, j)
			if math.IsNaN(mean) || math.IsNaN(v) {
				out.SetSymmetric(i, j, math.NaN())
				continue
			}
			out.SetSymmetric(i, j, v/mean)
		}
	}
	return out
}
