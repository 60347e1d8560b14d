package contact

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ColumnSums returns the sum of each column, skipping undefined entries.
// A column with no defined entries sums to zero.
func ColumnSums(m *Matrix) []float64 {
	n := m.Size()
	sums := make([]float64, n)
	col := make([]float64, 0, n)
	for j := 0; j < n; j++ {
		col = col[:0]
		for i := 0; i < n; i++ {
			if v := m.At(i, j); !math.IsNaN(v) {
				col = append(col, v)
			}
		}
		sums[j] = floats.Sum(col)
	}
	return sums
}

// NormalizeMargins divides every entry by the sum of its column and then by the
// sum of its row, using the column sums for both since the matrix is symmetric:
//
//	out(i,j) = m(i,j) / colSum(j) / colSum(i)
//
// Entries touching a column with a zero sum are undefined. The upper triangle is
// computed and mirrored so the output is exactly symmetric.
func NormalizeMargins(m *Matrix) *Matrix {
	n := m.Size()
	sums := ColumnSums(m)
	out, _ := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := m.At(i, j)
			if sums[i] == 0 || sums[j] == 0 || math.IsNaN(v) {
				out.SetSymmetric(i, j, math.NaN())
				continue
			}
			out.SetSymmetric(i, j, v/sums[j]/sums[i])
		}
	}
	return out
}
