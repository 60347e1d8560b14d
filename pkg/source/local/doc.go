// Package local reads contact matrices, centromere spans and structural
// variants from local files.
//
// Supported formats:
//
//   - Pixels: the text output of "cooler dump --join", one pixel per line as
//     chrom1 start1 end1 chrom2 start2 end2 count, tab separated. A header
//     line and extra trailing columns such as "balanced" are tolerated.
//   - Chromosome sizes: "chrom length" per line, as shipped by UCSC.
//   - Centromeres: "chrom start end ..." per line without header. Several
//     rows for one chromosome are merged into a single span.
//   - Structural variants: CSV with at least the columns unique_id, chrom1,
//     chrom2, start1 and start2.
//
// Any of these may be gzip compressed; compression is detected from the
// content, not the file name.
package local
