// Package source defines where contact matrices, centromere spans and
// structural-variant breakpoints come from.
//
// The detection core only sees the three interfaces below. Package local reads them
// from files; the in-memory implementations in this package back tests and
// the HTTP API.
//
// Chromosome names are normalized to the "chr"-prefixed form at this
// boundary, so "1", "chr1" and "Chr1" all address the same chromosome.
package source

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/hicluster/pkg/contact"
)

// ContactStore provides raw contact matrices for one resolution.
type ContactStore interface {
	// BinSize returns the bin width in base pairs.
	BinSize() int64
	// Chromosomes returns the chromosome names in file order, normalized,
	// with the mitochondrial chromosome removed.
	Chromosomes() []string
	// Matrix returns the raw contact counts of chrom.
	Matrix(ctx context.Context, chrom string) (*contact.Matrix, error)
}

// CentromereTable provides centromere spans in base pairs.
type CentromereTable interface {
	Span(chrom string) (start, end int64, err error)
}

// BreakpointTable provides structural-variant breakpoints per sample.
type BreakpointTable interface {
	// Samples returns the distinct sample ids, sorted.
	Samples() []string
	// Positions returns the breakpoint positions of intra-chromosomal
	// variants of sample on chrom, start1 then start2 per row, in row order.
	Positions(sample, chrom string) []int64
}

// Breakpoint is one structural-variant row.
type Breakpoint struct {
	SampleID string `json:"sample_id" yaml:"sample_id"`
	Chrom1   string `json:"chrom1" yaml:"chrom1"`
	Chrom2   string `json:"chrom2" yaml:"chrom2"`
	Start1   int64  `json:"start1" yaml:"start1"`
	Start2   int64  `json:"start2" yaml:"start2"`
}

// Intra reports whether both ends lie on the same chromosome.
func (b Breakpoint) Intra() bool {
	return NormalizeChromName(b.Chrom1) == NormalizeChromName(b.Chrom2)
}

// NormalizeChromName returns name with a lowercase "chr" prefix.
func NormalizeChromName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) >= 3 && strings.EqualFold(name[:3], "chr") {
		return "chr" + name[3:]
	}
	return "chr" + name
}

// IsMitochondrial reports whether name denotes the mitochondrial genome.
func IsMitochondrial(name string) bool {
	switch NormalizeChromName(name) {
	case "chrM", "chrMT":
		return true
	}
	return false
}

// ColumnLabel returns the report column for chrom, "1chr" for "chr1".
func ColumnLabel(chrom string) string {
	return strings.TrimPrefix(NormalizeChromName(chrom), "chr") + "chr"
}

// DefaultChromosomes returns chr1..chr22 and chrX.
func DefaultChromosomes() []string {
	out := make([]string, 0, 23)
	for i := 1; i <= 22; i++ {
		out = append(out, "chr"+strconv.Itoa(i))
	}
	return append(out, "chrX")
}

// Breakpoints is an in-memory [BreakpointTable].
type Breakpoints struct {
	rows    []Breakpoint
	samples []string
}

// NewBreakpoints indexes rows.
func NewBreakpoints(rows []Breakpoint) *Breakpoints {
	seen := make(map[string]bool)
	var samples []string
	for _, r := range rows {
		if !seen[r.SampleID] {
			seen[r.SampleID] = true
			samples = append(samples, r.SampleID)
		}
	}
	slices.Sort(samples)
	return &Breakpoints{rows: rows, samples: samples}
}

// Samples implements [BreakpointTable].
func (b *Breakpoints) Samples() []string { return slices.Clone(b.samples) }

// Positions implements [BreakpointTable].
func (b *Breakpoints) Positions(sample, chrom string) []int64 {
	chrom = NormalizeChromName(chrom)
	var out []int64
	for _, r := range b.rows {
		if r.SampleID != sample || !r.Intra() || NormalizeChromName(r.Chrom1) != chrom {
			continue
		}
		out = append(out, r.Start1, r.Start2)
	}
	return out
}

// Rows returns the rows in input order.
func (b *Breakpoints) Rows() []Breakpoint { return slices.Clone(b.rows) }

// HasSample reports whether sample appears in the table.
func (b *Breakpoints) HasSample(sample string) bool {
	_, ok := slices.BinarySearch(b.samples, sample)
	return ok
}
