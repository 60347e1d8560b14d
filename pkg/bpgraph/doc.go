// Package bpgraph builds weighted breakpoint graphs from normalized contact
// matrices.
//
// Every distinct breakpoint position becomes a vertex, numbered in the order it
// is first seen ([VertexMap]). Two breakpoints are joined when they are far
// enough apart on the chromosome and their bins carry a defined normalized
// score; the edge weight is that score cubed, so strong contacts dominate the
// downstream density search.
//
// Pairs are dropped, never weighted zero, when:
//   - the breakpoints are at most MinDistance base pairs apart,
//   - their bins are the same or adjacent,
//   - either bin lies beyond the matrix, or
//   - the normalized score is undefined.
package bpgraph
