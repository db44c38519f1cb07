package scan_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/scan"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

func assignment(name, course string, dueAt *time.Time) domain.Assignment {
	return domain.Assignment{
		ID:         uuid.New(),
		Name:       name,
		CourseName: course,
		DueAt:      dueAt,
	}
}

func TestMatch_PerfectMatchAutoMatches(t *testing.T) {
	due := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	parsed := scan.ParsedFields{
		Title:      strPtr("Science Test"),
		Date:       timePtr(due),
		CourseHint: strPtr("Science"),
	}
	candidates := []domain.Assignment{
		assignment("Science Test", "Science", &due),
		assignment("Spelling Quiz", "English", timePtr(due.AddDate(0, 0, 20))),
	}

	ranked := scan.Match(parsed, candidates)
	require.Len(t, ranked, 2)
	assert.InDelta(t, 1.0, ranked[0].Confidence, 1e-9)
	assert.Equal(t, "Science Test", ranked[0].Assignment.Name)

	best, disposition := scan.Decide(ranked)
	require.NotNil(t, best)
	assert.Equal(t, "Science Test", best.Assignment.Name)
	assert.Equal(t, domain.DispositionAutoMatched, disposition)
}

func TestMatch_BelowThresholdNeedsReview(t *testing.T) {
	parsed := scan.ParsedFields{Title: strPtr("Chapter 4 Quiz")}
	candidates := []domain.Assignment{
		assignment("Chapter 9 Exam", "Math", nil),
	}

	ranked := scan.Match(parsed, candidates)
	require.Len(t, ranked, 1)
	assert.Less(t, ranked[0].Confidence, scan.AutoMatchThreshold)

	best, disposition := scan.Decide(ranked)
	require.NotNil(t, best)
	assert.Equal(t, domain.DispositionNeedsReview, disposition)
}

func TestMatch_NoCandidatesIsUnmatched(t *testing.T) {
	ranked := scan.Match(scan.ParsedFields{Title: strPtr("Science Test")}, nil)
	assert.Empty(t, ranked)

	best, disposition := scan.Decide(ranked)
	assert.Nil(t, best)
	assert.Equal(t, domain.DispositionUnmatched, disposition)
}

func TestMatch_TiedTopCandidatesNeedReview(t *testing.T) {
	// Two sections turned in an identically named test on the same day; a
	// confident score is not enough when two candidates share it.
	due := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	parsed := scan.ParsedFields{
		Title: strPtr("Unit 3 Test"),
		Date:  timePtr(due),
	}
	candidates := []domain.Assignment{
		assignment("Unit 3 Test", "Math", &due),
		assignment("Unit 3 Test", "Science", &due),
	}

	ranked := scan.Match(parsed, candidates)
	require.Len(t, ranked, 2)
	assert.GreaterOrEqual(t, ranked[0].Confidence, scan.AutoMatchThreshold)
	assert.InDelta(t, ranked[0].Confidence, ranked[1].Confidence, 1e-9)

	best, disposition := scan.Decide(ranked)
	require.NotNil(t, best)
	assert.Equal(t, domain.DispositionNeedsReview, disposition)
}

func TestMatch_TieBreaksOnEarlierDueDate(t *testing.T) {
	early := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	late := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	parsed := scan.ParsedFields{Title: strPtr("Weekly Quiz")}
	candidates := []domain.Assignment{
		assignment("Weekly Quiz", "Math", &late),
		assignment("Weekly Quiz", "Math", &early),
	}

	ranked := scan.Match(parsed, candidates)
	require.Len(t, ranked, 2)
	assert.Equal(t, early, *ranked[0].Assignment.DueAt)
}

func TestMatch_UndatedAssignmentSortsLast(t *testing.T) {
	due := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	parsed := scan.ParsedFields{Title: strPtr("Weekly Quiz")}
	candidates := []domain.Assignment{
		assignment("Weekly Quiz", "Math", nil),
		assignment("Weekly Quiz", "Math", &due),
	}

	ranked := scan.Match(parsed, candidates)
	require.Len(t, ranked, 2)
	require.NotNil(t, ranked[0].Assignment.DueAt)
	assert.Nil(t, ranked[1].Assignment.DueAt)
}

func TestMatch_DateProximityDecays(t *testing.T) {
	due := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	parsed := scan.ParsedFields{Date: timePtr(due.AddDate(0, 0, 3))}
	candidates := []domain.Assignment{assignment("Quiz", "Math", &due)}

	ranked := scan.Match(parsed, candidates)
	require.Len(t, ranked, 1)
	// Date weight 0.3, three of seven tolerance days used.
	assert.InDelta(t, 0.3*(1-3.0/7.0), ranked[0].Confidence, 1e-9)
}

func TestMatch_DateBeyondToleranceScoresZero(t *testing.T) {
	due := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	parsed := scan.ParsedFields{Date: timePtr(due.AddDate(0, 0, 10))}
	candidates := []domain.Assignment{assignment("Quiz", "Math", &due)}

	ranked := scan.Match(parsed, candidates)
	require.Len(t, ranked, 1)
	assert.Zero(t, ranked[0].DateScore)
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Science Test", "Science Test", 1.0},
		{"case insensitive", "science test", "SCIENCE TEST", 1.0},
		{"empty left", "", "Science Test", 0.0},
		{"empty right", "Science Test", "", 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scan.TitleSimilarity(tt.a, tt.b), 1e-9)
		})
	}

	// Partial overlap lands strictly between the extremes.
	partial := scan.TitleSimilarity("Chapter 4 Quiz", "Chapter 4 Test")
	assert.Greater(t, partial, 0.3)
	assert.Less(t, partial, 1.0)
}
