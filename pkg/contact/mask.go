package contact

import "math"

// DefaultZeroThreshold is the zero fraction at which a bin counts as dropped out.
const DefaultZeroThreshold = 0.8

// MaskCoverage returns a copy of m in which every bin whose row has a zero
// fraction of at least threshold is undefined across its row and column.
//
// Rows are visited in order and each decision sees the blanks left by earlier
// ones; NaN never counts as zero, so masking only ever lowers later zero counts.
// Applying MaskCoverage to its own output changes nothing.
func MaskCoverage(m *Matrix, threshold float64) *Matrix {
	out := m.Clone()
	n := out.Size()
	for i := 0; i < n; i++ {
		zeros := 0
		for _, v := range out.row(i) {
			if v == 0 {
				zeros++
			}
		}
		if float64(zeros)/float64(n) < threshold {
			continue
		}
		for k := 0; k < n; k++ {
			out.SetSymmetric(i, k, math.NaN())
		}
	}
	return out
}

// MaskedBins lists the bins whose rows are entirely undefined.
func MaskedBins(m *Matrix) []int {
	var bins []int
	for i := 0; i < m.Size(); i++ {
		blank := true
		for _, v := range m.row(i) {
			if !math.IsNaN(v) {
				blank = false
				break
			}
		}
		if blank {
			bins = append(bins, i)
		}
	}
	return bins
}
