package scan

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
)

// Detection confidences, scaled to [0,1]. A detection at or above
// detectionThreshold is trusted for automatic attribution.
const (
	exactNameConfidence    = 0.95
	partialNameConfidence  = 0.70
	uniqueCourseConfidence = 0.85
	sharedCourseConfidence = 0.50

	detectionThreshold = 0.70
)

// StudentProfile is the slice of student data the detector needs: identity
// plus active course names.
type StudentProfile struct {
	ID      uuid.UUID
	Name    string
	Courses []string
}

// Detection is the outcome of attributing a scan to a student.
type Detection struct {
	StudentID  *uuid.UUID
	Confidence float64
	Method     domain.DetectionMethod
}

// Confident reports whether the detection is strong enough for automatic
// attribution.
func (d Detection) Confident() bool {
	return d.StudentID != nil && d.Confidence >= detectionThreshold
}

// DetectStudent attributes parsed fields to one of the known students using
// a hierarchy of signals: exact name match, partial (single-token) name
// match, then course-hint uniqueness. Ambiguous signals are reported with
// low confidence so the scan lands in the review queue instead of being
// guessed.
func DetectStudent(parsed ParsedFields, students []StudentProfile) Detection {
	if len(students) == 0 {
		return Detection{Method: domain.DetectionAmbiguous}
	}

	if parsed.StudentName != nil {
		if d, ok := detectByName(*parsed.StudentName, students); ok {
			return d
		}
	}
	if parsed.CourseHint != nil {
		if d, ok := detectByCourse(*parsed.CourseHint, students); ok {
			return d
		}
	}
	return Detection{Method: domain.DetectionAmbiguous}
}

func detectByName(name string, students []StudentProfile) (Detection, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Detection{}, false
	}

	for i := range students {
		if strings.ToLower(students[i].Name) == name {
			return Detection{
				StudentID:  &students[i].ID,
				Confidence: exactNameConfidence,
				Method:     domain.DetectionOCRName,
			}, true
		}
	}

	// Partial match: any shared name token, but only when it singles out
	// exactly one student.
	tokens := strings.Fields(name)
	var hit *StudentProfile
	hits := 0
	for i := range students {
		studentTokens := strings.Fields(strings.ToLower(students[i].Name))
		if sharesToken(tokens, studentTokens) {
			hit = &students[i]
			hits++
		}
	}
	if hits == 1 {
		return Detection{
			StudentID:  &hit.ID,
			Confidence: partialNameConfidence,
			Method:     domain.DetectionPartialName,
		}, true
	}
	return Detection{}, false
}

func detectByCourse(hint string, students []StudentProfile) (Detection, bool) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint == "" {
		return Detection{}, false
	}

	var hit *StudentProfile
	hits := 0
	for i := range students {
		for _, course := range students[i].Courses {
			if strings.Contains(strings.ToLower(course), hint) {
				hit = &students[i]
				hits++
				break
			}
		}
	}
	switch hits {
	case 0:
		return Detection{}, false
	case 1:
		return Detection{
			StudentID:  &hit.ID,
			Confidence: uniqueCourseConfidence,
			Method:     domain.DetectionUniqueCourse,
		}, true
	default:
		// Several students take a course with this name; not enough to
		// attribute the scan on its own.
		return Detection{
			StudentID:  &hit.ID,
			Confidence: sharedCourseConfidence,
			Method:     domain.DetectionAmbiguous,
		}, true
	}
}

func sharesToken(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y && len(x) > 1 {
				return true
			}
		}
	}
	return false
}
