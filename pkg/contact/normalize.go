package contact

import "fmt"

// Normalizer converts raw contact matrices into enrichment scores. The zero
// value uses [DefaultZeroThreshold].
type Normalizer struct {
	// ZeroThreshold is the zero fraction at which a bin is masked.
	ZeroThreshold float64
}

// Stats describes what normalization removed from one matrix.
type Stats struct {
	Bins        int
	MaskedBins  int
	Defined     int
	Centromere  Centromere
	DefinedFrac float64
}

// Normalize runs coverage masking, margin normalization and centromere-aware
// distance normalization on raw. raw is not modified.
func (n Normalizer) Normalize(raw *Matrix, c Centromere) (*Matrix, error) {
	norm, _, err := n.NormalizeWithStats(raw, c)
	return norm, err
}

// NormalizeWithStats is [Normalizer.Normalize] that also reports [Stats].
func (n Normalizer) NormalizeWithStats(raw *Matrix, c Centromere) (*Matrix, Stats, error) {
	threshold := n.ZeroThreshold
	if threshold == 0 {
		threshold = DefaultZeroThreshold
	}
	if threshold < 0 || threshold > 1 {
		return nil, Stats{}, fmt.Errorf("contact: zero threshold %g outside [0, 1]", threshold)
	}

	masked := MaskCoverage(raw, threshold)
	norm, err := NormalizeArms(NormalizeMargins(masked), c)
	if err != nil {
		return nil, Stats{}, err
	}

	size := norm.Size()
	defined := norm.Defined()
	return norm, Stats{
		Bins:        size,
		MaskedBins:  len(MaskedBins(masked)),
		Defined:     defined,
		Centromere:  c,
		DefinedFrac: float64(defined) / float64(size*size),
	}, nil
}

// Normalize normalizes raw with the default [Normalizer].
func Normalize(raw *Matrix, c Centromere) (*Matrix, error) {
	return Normalizer{}.Normalize(raw, c)
}
