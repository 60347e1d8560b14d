// Package contact holds Hi-C contact matrices and the normalization that turns
// raw contact counts into comparable enrichment scores.
//
// A [Matrix] is square and indexed by genomic bin. Undefined entries are NaN
// and mean "no evidence"; they are never coerced to zero, because a zero score
// would read as strong depletion downstream.
//
// # Normalization
//
// [Normalize] runs three steps in order:
//
//  1. [MaskCoverage] blanks rows and columns whose zero fraction is at or
//     above the dropout threshold (0.8 by default).
//  2. [NormalizeMargins] divides every entry by the sums of its row and column.
//  3. [NormalizeArms] splits the matrix at the centromere and applies
//     [NormalizeDistance] to the p-arm and q-arm blocks independently. Cross-arm
//     and centromeric entries are left undefined.
//
// The result has entries above 1 where two bins touch more often than their
// distance and coverage predict, and below 1 where they touch less.
//
// # Usage
//
//	raw, err := contact.FromRows(rows)
//	if err != nil {
//	    return err
//	}
//	cen, err := contact.CentromereFromSpan(121_700_000, 125_100_000, 400_000)
//	if err != nil {
//	    return err
//	}
//	norm, err := contact.Normalize(raw, cen)
package contact
