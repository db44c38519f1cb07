package scan

import (
	"math"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

// discrepancyTolerance is how far apart two normalized percentages may sit
// before a caregiver should be alerted; absorbs rounding on either side.
const discrepancyTolerance = 1.0

// EvaluateDiscrepancy compares the handwritten score against the catalog's
// recorded score for the matched assignment. Raw scales may differ (a page
// graded out of 20 versus a catalog entry out of 100), so both sides are
// normalized to percentages before comparing. A present-but-zero max score
// is invalid input and reported as Unparseable rather than divided.
func EvaluateDiscrepancy(parsedScore, parsedMax, catalogScore, catalogMax *float64) domain.DiscrepancyStatus {
	if (parsedMax != nil && *parsedMax == 0) || (catalogMax != nil && *catalogMax == 0) {
		return domain.DiscrepancyUnparseable
	}
	if parsedScore == nil || parsedMax == nil || catalogScore == nil || catalogMax == nil {
		return domain.DiscrepancyNoComparableData
	}

	parsedPct := *parsedScore / *parsedMax * 100
	catalogPct := *catalogScore / *catalogMax * 100

	if math.Abs(parsedPct-catalogPct) <= discrepancyTolerance {
		return domain.DiscrepancyConsistent
	}
	return domain.DiscrepancyDiscrepant
}

// ScoreDelta returns the signed percentage-point difference (parsed minus
// catalog), or nil when the sides are not comparable.
func ScoreDelta(parsedScore, parsedMax, catalogScore, catalogMax *float64) *float64 {
	if parsedScore == nil || parsedMax == nil || catalogScore == nil || catalogMax == nil {
		return nil
	}
	if *parsedMax == 0 || *catalogMax == 0 {
		return nil
	}
	parsedPct := *parsedScore / *parsedMax * 100
	catalogPct := *catalogScore / *catalogMax * 100
	delta := parsedPct - catalogPct
	return &delta
}
