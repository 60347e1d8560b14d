package bpgraph

import (
	"fmt"
	"math"

	"github.com/matzehuels/hicluster/pkg/contact"
)

// DefaultMinDistance is the genomic distance in base pairs at or below which
// two breakpoints are not compared.
const DefaultMinDistance int64 = 60000

// Options configures graph building.
type Options struct {
	// MinDistance is the genomic distance at or below which pairs are skipped.
	// Zero selects DefaultMinDistance.
	MinDistance int64
}

func (o Options) minDistance() int64 {
	if o.MinDistance == 0 {
		return DefaultMinDistance
	}
	return o.MinDistance
}

// Stats counts why candidate pairs were kept or dropped. Every ordered pair of
// distinct vertices lands in exactly one bucket.
type Stats struct {
	Pairs        int
	TooClose     int
	AdjacentBins int
	OutOfRange   int
	Undefined    int
	Kept         int
}

// Score returns the normalized score for a pair of breakpoint positions and
// whether it carries evidence. Pairs closer than minDistance, pairs in the same
// or adjacent bins, out-of-range bins and undefined scores report false.
func Score(m *contact.Matrix, binSize, minDistance int64, pos1, pos2 int64) (float64, bool) {
	if binSize <= 0 {
		return math.NaN(), false
	}
	v, ok, _ := classify(m, binSize, minDistance, pos1, pos2)
	if !ok {
		return math.NaN(), false
	}
	return v, true
}

// Build deduplicates positions into vertices and joins every pair that has
// evidence in m with weight score³.
func Build(positions []int64, m *contact.Matrix, binSize int64, opts Options) (*Graph, *VertexMap, error) {
	g, vm, _, err := BuildWithStats(positions, m, binSize, opts)
	return g, vm, err
}

// BuildWithStats is [Build] that also reports how pairs were filtered.
func BuildWithStats(positions []int64, m *contact.Matrix, binSize int64, opts Options) (*Graph, *VertexMap, Stats, error) {
	if binSize <= 0 {
		return nil, nil, Stats{}, fmt.Errorf("bpgraph: bin size must be positive, got %d", binSize)
	}
	minDist := opts.minDistance()
	vm := NewVertexMap(positions)
	g := NewGraph(vm.Len())

	var stats Stats
	for u := 0; u < vm.Len(); u++ {
		for v := 0; v < vm.Len(); v++ {
			if u == v {
				continue
			}
			stats.Pairs++
			score, ok, reason := classify(m, binSize, minDist, vm.Position(u), vm.Position(v))
			if !ok {
				reason.count(&stats)
				continue
			}
			stats.Kept++
			if _, err := g.AddEdge(u, v, score*score*score); err != nil {
				return nil, nil, stats, err
			}
		}
	}
	return g, vm, stats, nil
}

type dropReason int

const (
	keep dropReason = iota
	tooClose
	adjacentBins
	outOfRange
	undefined
)

func (r dropReason) count(s *Stats) {
	switch r {
	case tooClose:
		s.TooClose++
	case adjacentBins:
		s.AdjacentBins++
	case outOfRange:
		s.OutOfRange++
	case undefined:
		s.Undefined++
	}
}

func classify(m *contact.Matrix, binSize, minDistance int64, pos1, pos2 int64) (float64, bool, dropReason) {
	if abs(pos1-pos2) <= minDistance {
		return 0, false, tooClose
	}
	b1, b2 := pos1/binSize, pos2/binSize
	if abs(b1-b2) <= 1 {
		return 0, false, adjacentBins
	}
	n := int64(m.Size())
	if b1 < 0 || b2 < 0 || b1 >= n || b2 >= n {
		return 0, false, outOfRange
	}
	v, ok := m.Lookup(int(b1), int(b2))
	if !ok {
		return 0, false, undefined
	}
	return v, true, keep
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
