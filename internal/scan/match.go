package scan

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

// Scoring weights; they sum to 1.0.
const (
	titleWeight  = 0.5
	dateWeight   = 0.3
	courseWeight = 0.2

	// dateToleranceDays is where date proximity decays to zero.
	dateToleranceDays = 7

	// AutoMatchThreshold is the minimum confidence for auto-matching. A
	// candidate at or above it still needs to be the unique top score.
	AutoMatchThreshold = 0.70

	// confidenceEpsilon treats near-identical confidences as a tie rather
	// than letting float noise silently pick a winner.
	confidenceEpsilon = 1e-9
)

// MatchCandidate pairs parsed fields with one catalog assignment and carries
// the decomposed score components plus the combined weighted confidence.
type MatchCandidate struct {
	Assignment  domain.Assignment `json:"assignment"`
	TitleScore  float64           `json:"title_score"`
	DateScore   float64           `json:"date_score"`
	CourseScore float64           `json:"course_score"`
	Confidence  float64           `json:"confidence"`
}

// Match scores every candidate assignment against the parsed fields and
// returns them ordered by descending confidence, ties broken by earlier due
// date. An empty candidate list yields an empty result, never an error.
func Match(parsed ParsedFields, candidates []domain.Assignment) []MatchCandidate {
	results := make([]MatchCandidate, 0, len(candidates))
	for i := range candidates {
		results = append(results, scoreCandidate(parsed, candidates[i]))
	}

	sort.SliceStable(results, func(i, j int) bool {
		if math.Abs(results[i].Confidence-results[j].Confidence) > confidenceEpsilon {
			return results[i].Confidence > results[j].Confidence
		}
		return dueBefore(results[i].Assignment.DueAt, results[j].Assignment.DueAt)
	})
	return results
}

// Decide applies the auto-match rule to an already-ranked candidate list:
// the top candidate auto-matches only when its confidence meets the
// threshold and no other candidate ties it. Below threshold the best
// candidate is still returned as a suggestion with NeedsReview; an empty
// list is Unmatched.
func Decide(ranked []MatchCandidate) (best *MatchCandidate, disposition domain.Disposition) {
	if len(ranked) == 0 {
		return nil, domain.DispositionUnmatched
	}
	top := &ranked[0]
	if top.Confidence >= AutoMatchThreshold {
		if len(ranked) > 1 && math.Abs(ranked[1].Confidence-top.Confidence) <= confidenceEpsilon {
			// Two candidates tied above the threshold: surface both for a
			// human rather than risk silent misassignment.
			return top, domain.DispositionNeedsReview
		}
		return top, domain.DispositionAutoMatched
	}
	return top, domain.DispositionNeedsReview
}

func scoreCandidate(parsed ParsedFields, a domain.Assignment) MatchCandidate {
	c := MatchCandidate{Assignment: a}

	if parsed.Title != nil {
		c.TitleScore = TitleSimilarity(*parsed.Title, a.Name)
	}
	if parsed.Date != nil && a.DueAt != nil {
		c.DateScore = dateProximity(*parsed.Date, *a.DueAt)
	}
	if parsed.CourseHint != nil && a.CourseName != "" &&
		strings.EqualFold(strings.TrimSpace(*parsed.CourseHint), strings.TrimSpace(a.CourseName)) {
		c.CourseScore = 1.0
	}

	c.Confidence = titleWeight*c.TitleScore + dateWeight*c.DateScore + courseWeight*c.CourseScore
	return c
}

// TitleSimilarity returns a normalized [0,1] similarity between two titles:
// a blend of Levenshtein ratio and token-set overlap, case-insensitive.
// Identical strings score 1.0; fully disjoint strings score near 0.
func TitleSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	return 0.5*levenshteinRatio(a, b) + 0.5*tokenOverlap(a, b)
}

func levenshteinRatio(a, b string) float64 {
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}

func tokenOverlap(a, b string) float64 {
	tokensA := tokenSet(a)
	tokensB := tokenSet(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}
	common := 0
	for tok := range tokensA {
		if _, ok := tokensB[tok]; ok {
			common++
		}
	}
	union := len(tokensA) + len(tokensB) - common
	return float64(common) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.FieldsFunc(s, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
	}) {
		set[tok] = struct{}{}
	}
	return set
}

// dateProximity is 1.0 when the parsed date equals the due date and decays
// linearly to 0 at dateToleranceDays in either direction. Both timestamps
// are truncated to calendar days first.
func dateProximity(parsed, due time.Time) float64 {
	days := math.Abs(truncateDay(parsed).Sub(truncateDay(due)).Hours() / 24)
	if days >= dateToleranceDays {
		return 0
	}
	return 1 - days/dateToleranceDays
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dueBefore orders assignments by due date, earlier first; assignments
// without a due date sort last.
func dueBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
