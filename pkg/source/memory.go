package source

import (
	"context"

	"github.com/matzehuels/hicluster/pkg/contact"
	"github.com/matzehuels/hicluster/pkg/errors"
)

// MemoryContacts is an in-memory [ContactStore].
type MemoryContacts struct {
	binSize int64
	order   []string
	mats    map[string]*contact.Matrix
}

// NewMemoryContacts returns an empty store with the given bin size.
func NewMemoryContacts(binSize int64) *MemoryContacts {
	return &MemoryContacts{binSize: binSize, mats: make(map[string]*contact.Matrix)}
}

// Put adds or replaces the matrix of chrom. Mitochondrial matrices are ignored.
func (s *MemoryContacts) Put(chrom string, m *contact.Matrix) {
	if IsMitochondrial(chrom) {
		return
	}
	chrom = NormalizeChromName(chrom)
	if _, ok := s.mats[chrom]; !ok {
		s.order = append(s.order, chrom)
	}
	s.mats[chrom] = m
}

// BinSize implements [ContactStore].
func (s *MemoryContacts) BinSize() int64 { return s.binSize }

// Chromosomes implements [ContactStore].
func (s *MemoryContacts) Chromosomes() []string { return append([]string(nil), s.order...) }

// Matrix implements [ContactStore]. The returned matrix is a copy.
func (s *MemoryContacts) Matrix(_ context.Context, chrom string) (*contact.Matrix, error) {
	m, ok := s.mats[NormalizeChromName(chrom)]
	if !ok {
		return nil, errors.New(errors.ErrCodeChromosomeNotFound, "no contacts for %s", chrom)
	}
	return m.Clone(), nil
}

// Centromeres is an in-memory [CentromereTable] that collapses repeated rows
// of one chromosome into the span from the smallest to the largest coordinate.
type Centromeres struct {
	spans map[string][2]int64
}

// NewCentromeres returns an empty table.
func NewCentromeres() *Centromeres {
	return &Centromeres{spans: make(map[string][2]int64)}
}

// Add merges the coordinates a and b into the span of chrom.
func (c *Centromeres) Add(chrom string, a, b int64) {
	chrom = NormalizeChromName(chrom)
	lo, hi := min(a, b), max(a, b)
	if s, ok := c.spans[chrom]; ok {
		lo, hi = min(lo, s[0]), max(hi, s[1])
	}
	c.spans[chrom] = [2]int64{lo, hi}
}

// Span implements [CentromereTable].
func (c *Centromeres) Span(chrom string) (int64, int64, error) {
	s, ok := c.spans[NormalizeChromName(chrom)]
	if !ok {
		return 0, 0, errors.New(errors.ErrCodeInvalidData, "no centromere for %s", chrom)
	}
	return s[0], s[1], nil
}

// Len returns the number of chromosomes with a span.
func (c *Centromeres) Len() int { return len(c.spans) }

var (
	_ ContactStore    = (*MemoryContacts)(nil)
	_ CentromereTable = (*Centromeres)(nil)
	_ BreakpointTable = (*Breakpoints)(nil)
)
