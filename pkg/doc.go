// Package pkg holds the hicluster libraries.
//
// hicluster finds structural-variant breakpoints that cluster in 3-D contact
// space. A Hi-C contact matrix is normalized per chromosome, breakpoints of
// one sample become the vertices of a weighted graph whose edges carry the
// normalized contact scores, and the densest subgraph above a size threshold
// is reported as the sample's breakpoint cluster on that chromosome.
//
// # Layout
//
//   - [contact]: matrices and the normalization steps
//   - [source]: contact, centromere and breakpoint inputs; [source/local] reads files
//   - [session]: lazily normalized, cached matrices of one dataset
//   - [bpgraph]: breakpoint graphs
//   - [flow]: s-t min cut engines
//   - [densest]: size-capped densest-subgraph search
//   - [pipeline]: detection over every sample and chromosome
//   - [io]: CSV, JSON and YAML reports
//   - [store]: persisted runs in memory or MongoDB
//   - [server]: HTTP API
//   - [cache], [config], [errors], [metrics], [observability], [buildinfo]: support
//
// # Data Flow
//
//	pixels + centromeres
//	         ↓
//	    [session] (mask, balance, distance-normalize per arm)
//	         ↓
//	    [bpgraph] (breakpoints of one sample, score³ edges)
//	         ↓
//	    [densest] (binary search over min cuts)
//	         ↓
//	    [pipeline] → [io] / [store]
package pkg
