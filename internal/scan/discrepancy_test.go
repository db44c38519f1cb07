package scan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/scan"
)

func TestEvaluateDiscrepancy(t *testing.T) {
	tests := []struct {
		name                                           string
		parsedScore, parsedMax, catalogScore, catalogMax *float64
		want                                           domain.DiscrepancyStatus
	}{
		{
			name:        "mismatch beyond tolerance",
			parsedScore: floatPtr(42), parsedMax: floatPtr(50),
			catalogScore: floatPtr(45), catalogMax: floatPtr(50),
			want: domain.DiscrepancyDiscrepant,
		},
		{
			name:        "equal percentages on different scales",
			parsedScore: floatPtr(42), parsedMax: floatPtr(50),
			catalogScore: floatPtr(84), catalogMax: floatPtr(100),
			want: domain.DiscrepancyConsistent,
		},
		{
			name:        "rounding within tolerance",
			parsedScore: floatPtr(42), parsedMax: floatPtr(50),
			catalogScore: floatPtr(84.8), catalogMax: floatPtr(100),
			want: domain.DiscrepancyConsistent,
		},
		{
			name:        "parsed max zero is unparseable",
			parsedScore: floatPtr(42), parsedMax: floatPtr(0),
			catalogScore: floatPtr(84), catalogMax: floatPtr(100),
			want: domain.DiscrepancyUnparseable,
		},
		{
			name:         "catalog max zero is unparseable",
			parsedScore:  floatPtr(42), parsedMax: floatPtr(50),
			catalogScore: floatPtr(0), catalogMax: floatPtr(0),
			want: domain.DiscrepancyUnparseable,
		},
		{
			name:        "zero max reported before missing catalog side",
			parsedScore: floatPtr(42), parsedMax: floatPtr(0),
			want: domain.DiscrepancyUnparseable,
		},
		{
			name:         "no parsed score",
			catalogScore: floatPtr(84), catalogMax: floatPtr(100),
			want: domain.DiscrepancyNoComparableData,
		},
		{
			name:        "no catalog score",
			parsedScore: floatPtr(42), parsedMax: floatPtr(50),
			want: domain.DiscrepancyNoComparableData,
		},
		{
			name: "nothing on either side",
			want: domain.DiscrepancyNoComparableData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scan.EvaluateDiscrepancy(tt.parsedScore, tt.parsedMax, tt.catalogScore, tt.catalogMax)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestScoreDelta(t *testing.T) {
	delta := scan.ScoreDelta(floatPtr(42), floatPtr(50), floatPtr(45), floatPtr(50))
	require.NotNil(t, delta)
	assert.InDelta(t, -6.0, *delta, 1e-9)

	delta = scan.ScoreDelta(floatPtr(48), floatPtr(50), floatPtr(90), floatPtr(100))
	require.NotNil(t, delta)
	assert.InDelta(t, 6.0, *delta, 1e-9)

	assert.Nil(t, scan.ScoreDelta(nil, floatPtr(50), floatPtr(45), floatPtr(50)))
	assert.Nil(t, scan.ScoreDelta(floatPtr(42), floatPtr(0), floatPtr(45), floatPtr(50)))
	assert.Nil(t, scan.ScoreDelta(floatPtr(42), floatPtr(50), floatPtr(45), floatPtr(0)))
}
