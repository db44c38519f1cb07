// Package scan implements the document-to-record reconciliation core:
// field extraction from OCR text, content fingerprinting, assignment
// matching, and score discrepancy evaluation. Everything in this package is
// pure computation; I/O stays with the callers.
package scan

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Provenance keys identify which field a rule populated.
const (
	FieldScore       = "score"
	FieldLetterGrade = "letter_grade"
	FieldDate        = "date"
	FieldTitle       = "title"
	FieldStudentName = "student_name"
	FieldCourseHint  = "course_hint"
)

// maxTitleLen caps the extracted title; OCR headers past this are noise.
const maxTitleLen = 80

// ParsedFields is the structured candidate record extracted from one OCR
// text blob. Absent fields are nil. MaxScore is only ever set together with
// Score; a max without an earned score is meaningless and discarded.
type ParsedFields struct {
	Score       *float64
	MaxScore    *float64
	LetterGrade *string
	Date        *time.Time
	Title       *string
	StudentName *string
	CourseHint  *string

	// Provenance maps field name to the extraction rule that produced it.
	Provenance map[string]string
}

// Parse extracts structured fields from raw OCR text. It never fails: a
// pattern that does not match simply leaves its field absent. knownCourses
// is the dictionary used for course-hint detection (case-insensitive
// substring match; earliest occurrence in the text wins).
func Parse(text string, knownCourses []string) ParsedFields {
	fields := ParsedFields{Provenance: make(map[string]string)}

	extractScore(text, &fields)
	extractLetterGrade(text, &fields)
	extractDate(text, &fields)
	extractTitle(text, &fields)
	extractStudentName(text, &fields)
	extractCourseHint(text, knownCourses, &fields)

	return fields
}

var (
	fractionRe = regexp.MustCompile(`(\d+)\s*(?:/|out of)\s*(\d+)`)
	percentRe  = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)
	labeledRe  = regexp.MustCompile(`(?i)\b(?:score|grade)\s*:\s*(\d+(?:\.\d+)?)\s*([%/]?)`)

	// dateLikeRe marks spans that belong to numeric dates so the fraction
	// rule does not read "01/15" out of "01/15/2024" as a score.
	dateLikeRe = regexp.MustCompile(`\d{1,4}[/-]\d{1,2}[/-]\d{1,4}`)
)

// extractScore applies the score rules in priority order: fraction first
// (closest to how teachers mark papers), then percent, then a labeled bare
// number. The first rule that yields a value wins.
func extractScore(text string, fields *ParsedFields) {
	if earned, possible, ok := matchFraction(text); ok {
		fields.Score = &earned
		fields.MaxScore = &possible
		fields.Provenance[FieldScore] = "fraction"
		return
	}

	if m := percentRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			hundred := 100.0
			fields.Score = &v
			fields.MaxScore = &hundred
			fields.Provenance[FieldScore] = "percent"
			return
		}
	}

	for _, m := range labeledRe.FindAllStringSubmatch(text, -1) {
		if m[2] != "" {
			// Trailing % or / means another rule owns this value.
			continue
		}
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			fields.Score = &v
			fields.Provenance[FieldScore] = "labeled"
			return
		}
	}
}

// matchFraction finds the first plausible earned/possible pair. Both parts
// must be positive integers, the match must not sit inside a date token, and
// four-digit denominators are rejected as year fragments.
func matchFraction(text string) (earned, possible float64, ok bool) {
	dateSpans := dateLikeRe.FindAllStringIndex(text, -1)

	for _, idx := range fractionRe.FindAllStringSubmatchIndex(text, -1) {
		if insideAny(idx[0], idx[1], dateSpans) {
			continue
		}
		a, errA := strconv.Atoi(text[idx[2]:idx[3]])
		b, errB := strconv.Atoi(text[idx[4]:idx[5]])
		if errA != nil || errB != nil {
			continue
		}
		if a <= 0 || b <= 0 || b >= 1000 {
			continue
		}
		return float64(a), float64(b), true
	}
	return 0, 0, false
}

func insideAny(start, end int, spans [][]int) bool {
	for _, s := range spans {
		if start >= s[0] && end <= s[1] {
			return true
		}
	}
	return false
}

var (
	gradeLabelRe = regexp.MustCompile(`(?i)\bgrade\s*:\s*([A-Fa-f][+-]?)(\w?)`)
	gradeLineRe  = regexp.MustCompile(`(?m)^\s*([A-F][+-]?)\s*$`)
)

// extractLetterGrade finds a letter grade A-F with optional +/- suffix,
// either after a "Grade:" label or alone on a line. Stored independently of
// the numeric score; both may be present.
func extractLetterGrade(text string, fields *ParsedFields) {
	if m := gradeLabelRe.FindStringSubmatch(text); m != nil && m[2] == "" {
		letter := strings.ToUpper(m[1])
		fields.LetterGrade = &letter
		fields.Provenance[FieldLetterGrade] = "grade_label"
		return
	}
	if m := gradeLineRe.FindStringSubmatch(text); m != nil {
		letter := m[1]
		fields.LetterGrade = &letter
		fields.Provenance[FieldLetterGrade] = "grade_line"
	}
}

var (
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	isoDateRe     = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	monthDateRe   = regexp.MustCompile(`(?i)\b(January|February|March|April|May|June|July|August|September|October|November|December|Jan|Feb|Mar|Apr|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)
)

var monthNames = map[string]int{
	"january": 1, "jan": 1,
	"february": 2, "feb": 2,
	"march": 3, "mar": 3,
	"april": 4, "apr": 4,
	"may":   5,
	"june":  6, "jun": 6,
	"july":  7, "jul": 7,
	"august": 8, "aug": 8,
	"september": 9, "sep": 9,
	"october": 10, "oct": 10,
	"november": 11, "nov": 11,
	"december": 12, "dec": 12,
}

type dateCandidate struct {
	pos        int
	rule       string
	year       int
	month, day int
}

// extractDate picks the first valid calendar date in document order across
// all supported formats. Candidates that fail calendar validation (month 13,
// Feb 30) are skipped and scanning continues.
func extractDate(text string, fields *ParsedFields) {
	var candidates []dateCandidate

	for _, idx := range numericDateRe.FindAllStringSubmatchIndex(text, -1) {
		candidates = append(candidates, dateCandidate{
			pos:   idx[0],
			rule:  "mm_dd_yyyy",
			month: atoi(text[idx[2]:idx[3]]),
			day:   atoi(text[idx[4]:idx[5]]),
			year:  atoi(text[idx[6]:idx[7]]),
		})
	}
	for _, idx := range isoDateRe.FindAllStringSubmatchIndex(text, -1) {
		candidates = append(candidates, dateCandidate{
			pos:   idx[0],
			rule:  "iso8601",
			year:  atoi(text[idx[2]:idx[3]]),
			month: atoi(text[idx[4]:idx[5]]),
			day:   atoi(text[idx[6]:idx[7]]),
		})
	}
	for _, idx := range monthDateRe.FindAllStringSubmatchIndex(text, -1) {
		candidates = append(candidates, dateCandidate{
			pos:   idx[0],
			rule:  "month_name",
			month: monthNames[strings.ToLower(text[idx[2]:idx[3]])],
			day:   atoi(text[idx[4]:idx[5]]),
			year:  atoi(text[idx[6]:idx[7]]),
		})
	}

	// Earliest position first; ties cannot happen since spans differ.
	sortCandidates(candidates)

	for _, c := range candidates {
		if d, ok := makeDate(c.year, c.month, c.day); ok {
			fields.Date = &d
			fields.Provenance[FieldDate] = c.rule
			return
		}
	}
}

func sortCandidates(cs []dateCandidate) {
	for i := 1; i < len(cs); i++ {
		for j := i; j > 0 && cs[j].pos < cs[j-1].pos; j-- {
			cs[j], cs[j-1] = cs[j-1], cs[j]
		}
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// makeDate validates a calendar date strictly: time.Date normalizes
// out-of-range components, so a round-trip mismatch means the input was not
// a real date.
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

var (
	labelLineRe   = regexp.MustCompile(`(?i)^(name|student|date|score|grade|class|course|subject|period)\s*[:=]`)
	numericOnlyRe = regexp.MustCompile(`^[\d\s./%+-]+$`)
)

// extractTitle takes the first line that is neither a label line nor purely
// numeric, trimmed and capped at maxTitleLen.
func extractTitle(text string, fields *ParsedFields) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 4 {
			continue
		}
		if labelLineRe.MatchString(line) || numericOnlyRe.MatchString(line) {
			continue
		}
		if len(line) > maxTitleLen {
			line = strings.TrimSpace(line[:maxTitleLen])
		}
		fields.Title = &line
		fields.Provenance[FieldTitle] = "heading_line"
		return
	}
}

var (
	nameLabelRe = regexp.MustCompile(`(?im)^\s*(?:name|student)\s*:\s*(.+)$`)
	nextLabelRe = regexp.MustCompile(`(?i)\b(date|score|grade|class|course|subject|period)\s*:`)
)

// extractStudentName captures the text after a "Name:" label on the same
// line, stopping at the next label keyword.
func extractStudentName(text string, fields *ParsedFields) {
	m := nameLabelRe.FindStringSubmatch(text)
	if m == nil {
		return
	}
	name := m[1]
	if loc := nextLabelRe.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	fields.StudentName = &name
	fields.Provenance[FieldStudentName] = "name_label"
}

// extractCourseHint matches known course names case-insensitively anywhere
// in the text; the earliest occurrence wins.
func extractCourseHint(text string, knownCourses []string, fields *ParsedFields) {
	lower := strings.ToLower(text)
	bestPos := -1
	var best string
	for _, course := range knownCourses {
		needle := strings.ToLower(strings.TrimSpace(course))
		if needle == "" {
			continue
		}
		pos := strings.Index(lower, needle)
		if pos < 0 {
			continue
		}
		if bestPos < 0 || pos < bestPos {
			bestPos = pos
			best = course
		}
	}
	if bestPos >= 0 {
		fields.CourseHint = &best
		fields.Provenance[FieldCourseHint] = "course_dictionary"
	}
}
