// Package io reads and writes detection reports.
//
// # Formats
//
// The CSV report is wide: one row per sample, one column per chromosome,
// preceded by a running row index. Each chromosome cell holds the cluster
// positions as a bracketed list:
//
//	,patient_id,1chr,2chr,...,Xchr
//	0,P1,"[100000, 300000, 600000]",[],...
//
// Column labels put the chromosome number before "chr" ("1chr" for chr1).
// Only the clusters survive the CSV form; the JSON and YAML reports carry the
// full [pipeline.Result] including per-unit statistics and the run id.
package io
