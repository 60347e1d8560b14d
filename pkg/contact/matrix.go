package contact

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for matrix construction and normalization.
var (
	// ErrEmpty is returned when a matrix would have no bins.
	ErrEmpty = errors.New("contact: matrix has no bins")

	// ErrNotSquare is returned when rows and columns differ in length.
	ErrNotSquare = errors.New("contact: matrix is not square")

	// ErrBadCentromere is returned for a centromere span that cannot be placed.
	ErrBadCentromere = errors.New("contact: invalid centromere span")
)

// Matrix is a square contact matrix indexed by bin. NaN marks an undefined entry.
//
// A Matrix is not safe for concurrent mutation. Normalized matrices are shared
// read-only once built.
type Matrix struct {
	dense *mat.Dense
}

// NewMatrix returns an n×n matrix of zeros.
func NewMatrix(n int) (*Matrix, error) {
	if n <= 0 {
		return nil, ErrEmpty
	}
	return &Matrix{dense: mat.NewDense(n, n, nil)}, nil
}

// NewUndefined returns an n×n matrix with every entry undefined.
func NewUndefined(n int) (*Matrix, error) {
	m, err := NewMatrix(n)
	if err != nil {
		return nil, err
	}
	raw := m.dense.RawMatrix().Data
	for i := range raw {
		raw[i] = math.NaN()
	}
	return m, nil
}

// FromRows copies a row-major slice of slices into a new matrix.
func FromRows(rows [][]float64) (*Matrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, ErrEmpty
	}
	m, _ := NewMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrNotSquare, i, len(row), n)
		}
		copy(m.row(i), row)
	}
	return m, nil
}

// FromDense wraps a square gonum matrix. Contiguous matrices are wrapped without
// copying; strided views are copied first.
func FromDense(d *mat.Dense) (*Matrix, error) {
	r, c := d.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: %dx%d", ErrNotSquare, r, c)
	}
	if d.RawMatrix().Stride != c {
		d = mat.DenseCopyOf(d)
	}
	return &Matrix{dense: d}, nil
}

// Size returns the number of bins along each side.
func (m *Matrix) Size() int {
	r, _ := m.dense.Dims()
	return r
}

// At returns entry (i, j). It panics if either index is out of range.
func (m *Matrix) At(i, j int) float64 {
	return m.dense.At(i, j)
}

// Set stores v at (i, j).
func (m *Matrix) Set(i, j int, v float64) {
	m.dense.Set(i, j, v)
}

// SetSymmetric stores v at (i, j) and (j, i).
func (m *Matrix) SetSymmetric(i, j int, v float64) {
	m.dense.Set(i, j, v)
	m.dense.Set(j, i, v)
}

// Lookup returns entry (i, j) and whether it carries evidence.
// Out-of-range indices and undefined entries both report false.
func (m *Matrix) Lookup(i, j int) (float64, bool) {
	n := m.Size()
	if i < 0 || j < 0 || i >= n || j >= n {
		return math.NaN(), false
	}
	v := m.dense.At(i, j)
	if math.IsNaN(v) {
		return v, false
	}
	return v, true
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{dense: mat.DenseCopyOf(m.dense)}
}

// Dense exposes the backing gonum matrix. Mutations are visible through m.
func (m *Matrix) Dense() *mat.Dense {
	return m.dense
}

// Defined counts entries that are not NaN.
func (m *Matrix) Defined() int {
	count := 0
	for _, v := range m.dense.RawMatrix().Data {
		if !math.IsNaN(v) {
			count++
		}
	}
	return count
}

// Equal reports whether a and b have the same shape and entries, treating two
// NaNs as equal and comparing finite values within tol.
func Equal(a, b *Matrix, tol float64) bool {
	if a.Size() != b.Size() {
		return false
	}
	ad, bd := a.dense.RawMatrix().Data, b.dense.RawMatrix().Data
	for k := range ad {
		x, y := ad[k], bd[k]
		if math.IsNaN(x) || math.IsNaN(y) {
			if math.IsNaN(x) != math.IsNaN(y) {
				return false
			}
			continue
		}
		if math.Abs(x-y) > tol*math.Max(1, math.Max(math.Abs(x), math.Abs(y))) {
			return false
		}
	}
	return true
}

// row returns a view of row i backed by the matrix storage.
func (m *Matrix) row(i int) []float64 {
	return m.dense.RawRowView(i)
}
