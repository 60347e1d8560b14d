package contact

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

// symmetric builds an n×n symmetric matrix from the first n*n values, reading
// only the upper triangle.
func symmetric(n int, vals []float64) *Matrix {
	m, _ := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			m.SetSymmetric(i, j, vals[i*n+j])
		}
	}
	return m
}

func mustRows(t *testing.T, rows [][]float64) *Matrix {
	t.Helper()
	m, err := FromRows(rows)
	require.NoError(t, err)
	return m
}

func propertyParams() *gopter.TestParameters {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 50
	return params
}

func TestFromRowsRejectsRagged(t *testing.T) {
	_, err := FromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrNotSquare)

	_, err = FromRows(nil)
	require.ErrorIs(t, err, ErrEmpty)
}

func TestLookup(t *testing.T) {
	m := mustRows(t, [][]float64{{1, nan}, {nan, 2}})

	v, ok := m.Lookup(1, 1)
	require.True(t, ok)
	require.Equal(t, 2.0, v)

	_, ok = m.Lookup(0, 1)
	require.False(t, ok, "undefined entry carries no evidence")

	_, ok = m.Lookup(2, 0)
	require.False(t, ok, "out of range")
	_, ok = m.Lookup(-1, 0)
	require.False(t, ok, "negative index")
}

func TestMaskCoverage(t *testing.T) {
	// Row 2 is zero in 4 of 5 columns (0.8) and must be masked.
	m := mustRows(t, [][]float64{
		{5, 4, 0, 2, 1},
		{4, 5, 0, 3, 2},
		{0, 0, 1, 0, 0},
		{2, 3, 0, 5, 4},
		{1, 2, 0, 4, 5},
	})

	masked := MaskCoverage(m, DefaultZeroThreshold)
	require.Equal(t, []int{2}, MaskedBins(masked))
	for k := 0; k < 5; k++ {
		require.True(t, math.IsNaN(masked.At(2, k)))
		require.True(t, math.IsNaN(masked.At(k, 2)))
	}
	require.Equal(t, 5.0, masked.At(0, 0))
	require.Equal(t, 0.0, m.At(2, 0), "input is left untouched")
}

func TestMaskCoverageBelowThreshold(t *testing.T) {
	// 3 of 5 zeros is 0.6, under the threshold.
	m := mustRows(t, [][]float64{
		{1, 0, 0, 0, 1},
		{0, 1, 1, 1, 1},
		{0, 1, 1, 1, 1},
		{0, 1, 1, 1, 1},
		{1, 1, 1, 1, 1},
	})
	require.Empty(t, MaskedBins(MaskCoverage(m, DefaultZeroThreshold)))
}

func TestMaskCoverageIdempotent(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())
	properties.Property("masking a masked matrix changes nothing", prop.ForAll(
		func(n int, vals []float64) bool {
			m := symmetric(n, vals)
			once := MaskCoverage(m, DefaultZeroThreshold)
			twice := MaskCoverage(once, DefaultZeroThreshold)
			return Equal(once, twice, 0)
		},
		gen.IntRange(1, 8),
		gen.SliceOfN(64, gen.OneGenOf(gen.Const(0.0), gen.Float64Range(1, 50))),
	))
	properties.TestingRun(t)
}

func TestNormalizeMarginsFormula(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())
	properties.Property("entries times both margins reconstruct the raw counts", prop.ForAll(
		func(n int, vals []float64) bool {
			raw := symmetric(n, vals)
			sums := ColumnSums(raw)
			norm := NormalizeMargins(raw)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					back := norm.At(i, j) * sums[i] * sums[j]
					if math.Abs(back-raw.At(i, j)) > 1e-9*math.Max(1, raw.At(i, j)) {
						return false
					}
				}
			}
			return true
		},
		gen.IntRange(1, 8),
		gen.SliceOfN(64, gen.Float64Range(0.5, 100)),
	))
	properties.TestingRun(t)
}

func TestNormalizeMarginsZeroColumn(t *testing.T) {
	m := mustRows(t, [][]float64{
		{1, 0, 2},
		{0, 0, 0},
		{2, 0, 1},
	})
	norm := NormalizeMargins(m)
	for k := 0; k < 3; k++ {
		require.True(t, math.IsNaN(norm.At(1, k)))
		require.True(t, math.IsNaN(norm.At(k, 1)))
	}
	require.InDelta(t, 1.0/3/3, norm.At(0, 0), 1e-12)
	require.InDelta(t, 2.0/3/3, norm.At(0, 2), 1e-12)
}

func TestNormalizeMarginsSkipsUndefined(t *testing.T) {
	m := mustRows(t, [][]float64{
		{1, nan, 3},
		{nan, nan, nan},
		{3, nan, 1},
	})
	sums := ColumnSums(m)
	require.Equal(t, []float64{4, 0, 4}, sums)

	norm := NormalizeMargins(m)
	require.InDelta(t, 3.0/16, norm.At(0, 2), 1e-12)
	require.True(t, math.IsNaN(norm.At(1, 1)))
}

func TestDiagonalMeans(t *testing.T) {
	m := mustRows(t, [][]float64{
		{2, 4, 9},
		{4, nan, 6},
		{9, 6, 0},
	})
	means := DiagonalMeans(m)
	require.InDelta(t, 1.0, means[0], 1e-12, "NaN on the diagonal is skipped")
	require.InDelta(t, 5.0, means[1], 1e-12)
	require.InDelta(t, 9.0, means[2], 1e-12)

	allNaN := mustRows(t, [][]float64{{nan, nan}, {nan, nan}})
	for _, v := range DiagonalMeans(allNaN) {
		require.True(t, math.IsNaN(v))
	}
}

func TestNormalizeDistance(t *testing.T) {
	m := mustRows(t, [][]float64{
		{2, 4, 9},
		{4, 4, 6},
		{9, 6, 3},
	})
	norm := NormalizeDistance(m)
	require.InDelta(t, 2.0/3, norm.At(0, 0), 1e-12)
	require.InDelta(t, 4.0/5, norm.At(0, 1), 1e-12)
	require.InDelta(t, 6.0/5, norm.At(2, 1), 1e-12)
	require.InDelta(t, 1.0, norm.At(0, 2), 1e-12)
}

func TestNormalizeDistanceScaleInvariant(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())
	properties.Property("scaling raw counts leaves the result unchanged", prop.ForAll(
		func(n int, vals []float64, scale float64) bool {
			m := symmetric(n, vals)
			scaled := m.Clone()
			scaled.Dense().Scale(scale, scaled.Dense())
			return Equal(NormalizeDistance(m), NormalizeDistance(scaled), 1e-9)
		},
		gen.IntRange(1, 8),
		gen.SliceOfN(64, gen.OneGenOf(gen.Const(0.0), gen.Float64Range(1, 50))),
		gen.Float64Range(0.01, 1000),
	))
	properties.TestingRun(t)
}

func TestCentromereFromSpan(t *testing.T) {
	c, err := CentromereFromSpan(1_200_000, 2_100_000, 400_000)
	require.NoError(t, err)
	require.Equal(t, Centromere{Start: 4, End: 6}, c)

	_, err = CentromereFromSpan(5, 1, 400_000)
	require.ErrorIs(t, err, ErrBadCentromere)
	_, err = CentromereFromSpan(1, 5, 0)
	require.ErrorIs(t, err, ErrBadCentromere)
}

func TestNormalizeArms(t *testing.T) {
	n := 7
	vals := make([]float64, n*n)
	for k := range vals {
		vals[k] = float64(k%5 + 1)
	}
	m := symmetric(n, vals)
	c := Centromere{Start: 3, End: 4}

	norm, err := NormalizeArms(m, c)
	require.NoError(t, err)

	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			defined := !math.IsNaN(norm.At(i, j))
			sameArm := c.ArmOf(i) != "" && c.ArmOf(i) == c.ArmOf(j)
			require.Equal(t, sameArm, defined, "entry (%d,%d)", i, j)
		}
	}

	// Each arm is normalized on its own diagonals.
	p := NormalizeDistance(submatrix(m, 0, 3))
	q := NormalizeDistance(submatrix(m, 4, 7))
	require.InDelta(t, p.At(0, 2), norm.At(0, 2), 1e-12)
	require.InDelta(t, q.At(0, 1), norm.At(4, 5), 1e-12)
}

func TestNormalizeArmsClipsOutOfRange(t *testing.T) {
	m := mustRows(t, [][]float64{{1, 2}, {2, 1}})

	norm, err := NormalizeArms(m, Centromere{Start: 10, End: 12})
	require.NoError(t, err)
	require.Equal(t, 4, norm.Defined(), "the whole matrix is p-arm")

	norm, err = NormalizeArms(m, Centromere{Start: 0, End: 0})
	require.NoError(t, err)
	require.Equal(t, 4, norm.Defined(), "the whole matrix is q-arm")

	_, err = NormalizeArms(m, Centromere{Start: 2, End: 1})
	require.ErrorIs(t, err, ErrBadCentromere)
}

func TestNormalizeAllZero(t *testing.T) {
	m, err := NewMatrix(6)
	require.NoError(t, err)

	norm, stats, err := Normalizer{}.NormalizeWithStats(m, Centromere{Start: 2, End: 3})
	require.NoError(t, err)
	require.Zero(t, norm.Defined())
	// Rows 0 and 1 are masked; from row 2 on the NaNs they left keep the zero
	// fraction below 0.8. The other rows end up undefined through their zero
	// column sums.
	require.Equal(t, 2, stats.MaskedBins)
}

func TestNormalizeMasksDroppedBin(t *testing.T) {
	rows := [][]float64{
		{9, 5, 3, 2, 1, 1},
		{5, 9, 5, 3, 2, 1},
		{0, 0, 0, 0, 0, 0},
		{2, 3, 5, 9, 5, 3},
		{1, 2, 3, 5, 9, 5},
		{1, 1, 2, 3, 5, 9},
	}
	for i := range rows {
		rows[i][2] = rows[2][i]
	}
	norm, err := Normalize(mustRows(t, rows), Centromere{Start: 0, End: 0})
	require.NoError(t, err)
	for k := 0; k < 6; k++ {
		require.True(t, math.IsNaN(norm.At(2, k)))
		require.True(t, math.IsNaN(norm.At(k, 2)))
	}
	require.False(t, math.IsNaN(norm.At(0, 1)))
}

func TestNormalizerRejectsThreshold(t *testing.T) {
	m := mustRows(t, [][]float64{{1}})
	_, err := Normalizer{ZeroThreshold: 1.5}.Normalize(m, Centromere{})
	require.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	m := mustRows(t, [][]float64{{1.5, nan}, {nan, math.Inf(1)}})
	back, err := Unmarshal(Marshal(m))
	require.NoError(t, err)
	require.True(t, Equal(m, back, 0))

	_, err = Unmarshal([]byte("garbage"))
	require.ErrorIs(t, err, ErrCorrupt)
}
