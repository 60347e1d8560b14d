package contact

import "fmt"

// Centromere is a centromere span in bin units. Bins before Start form the
// p-arm; bins at or after End form the q-arm.
type Centromere struct {
	Start int
	End   int
}

// CentromereFromSpan converts a base-pair span into bin units as
// (start/binSize + 1, end/binSize + 1).
func CentromereFromSpan(startBp, endBp, binSize int64) (Centromere, error) {
	if binSize <= 0 {
		return Centromere{}, fmt.Errorf("%w: bin size %d", ErrBadCentromere, binSize)
	}
	if startBp < 0 || endBp < startBp {
		return Centromere{}, fmt.Errorf("%w: [%d, %d)", ErrBadCentromere, startBp, endBp)
	}
	return Centromere{
		Start: int(startBp/binSize) + 1,
		End:   int(endBp/binSize) + 1,
	}, nil
}

// String formats the span for logs.
func (c Centromere) String() string {
	return fmt.Sprintf("[%d,%d)", c.Start, c.End)
}

// NormalizeArms returns a matrix in which the p-arm block [0,Start)² and the
// q-arm block [End,n)² are each distance-normalized on their own. Every other
// entry, inside the centromere or between arms, is undefined. Block bounds
// beyond the matrix are clipped.
func NormalizeArms(m *Matrix, c Centromere) (*Matrix, error) {
	if c.Start < 0 || c.End < c.Start {
		return nil, fmt.Errorf("%w: %s", ErrBadCentromere, c)
	}
	n := m.Size()
	out, _ := NewUndefined(n)

	pEnd := min(c.Start, n)
	qStart := min(c.End, n)
	for _, arm := range [][2]int{{0, pEnd}, {qStart, n}} {
		lo, hi := arm[0], arm[1]
		if hi <= lo {
			continue
		}
		block := NormalizeDistance(submatrix(m, lo, hi))
		for i := lo; i < hi; i++ {
			copy(out.row(i)[lo:hi], block.row(i-lo))
		}
	}
	return out, nil
}

// ArmOf reports which arm bin i lies on: "p", "q", or "" inside the centromere.
func (c Centromere) ArmOf(i int) string {
	switch {
	case i < c.Start:
		return "p"
	case i >= c.End:
		return "q"
	default:
		return ""
	}
}

// submatrix copies the square block [lo,hi)² out of m.
func submatrix(m *Matrix, lo, hi int) *Matrix {
	k := hi - lo
	out, _ := NewMatrix(k)
	for i := 0; i < k; i++ {
		copy(out.row(i), m.row(lo+i)[lo:hi])
	}
	return out
}
