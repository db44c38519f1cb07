package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jdeans2217/canvas-parent-cli/internal/config"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
)

// Catalog implements port.AssignmentCatalog against the Canvas REST API
// using an observer (parent) access token. All calls are read-only.
type Catalog struct {
	baseURL string
	token   string
	perPage int
	client  *http.Client
}

// NewCatalog creates a Canvas-backed assignment catalog.
func NewCatalog(cfg config.CanvasConfig) *Catalog {
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 100
	}
	return &Catalog{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.AccessToken,
		perPage: perPage,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type observeeDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type courseDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Term *struct {
		Name    string     `json:"name"`
		StartAt *time.Time `json:"start_at"`
		EndAt   *time.Time `json:"end_at"`
	} `json:"term"`
	Enrollments []struct {
		Type                 string   `json:"type"`
		ComputedCurrentScore *float64 `json:"computed_current_score"`
		ComputedCurrentGrade string   `json:"computed_current_grade"`
	} `json:"enrollments"`
}

type assignmentDTO struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	DueAt           *time.Time `json:"due_at"`
	PointsPossible  *float64   `json:"points_possible"`
	SubmissionTypes []string   `json:"submission_types"`
	Submission      *struct {
		WorkflowState string     `json:"workflow_state"`
		Score         *float64   `json:"score"`
		Grade         string     `json:"grade"`
		GradedAt      *time.Time `json:"graded_at"`
	} `json:"submission"`
}

func (c *Catalog) ListObservees(ctx context.Context) ([]port.CatalogStudent, error) {
	var dtos []observeeDTO
	endpoint := fmt.Sprintf("%s/api/v1/users/self/observees?per_page=%d", c.baseURL, c.perPage)
	if err := c.getAllPages(ctx, endpoint, &dtos); err != nil {
		return nil, fmt.Errorf("canvas: listing observees: %w", err)
	}

	students := make([]port.CatalogStudent, 0, len(dtos))
	for _, dto := range dtos {
		students = append(students, port.CatalogStudent{CanvasID: dto.ID, Name: dto.Name})
	}
	return students, nil
}

func (c *Catalog) ListCourses(ctx context.Context, studentCanvasID int64) ([]port.CatalogCourse, error) {
	var dtos []courseDTO
	endpoint := fmt.Sprintf(
		"%s/api/v1/users/%d/courses?enrollment_state=active&include[]=term&include[]=total_scores&per_page=%d",
		c.baseURL, studentCanvasID, c.perPage,
	)
	if err := c.getAllPages(ctx, endpoint, &dtos); err != nil {
		return nil, fmt.Errorf("canvas: listing courses for student %d: %w", studentCanvasID, err)
	}

	courses := make([]port.CatalogCourse, 0, len(dtos))
	for _, dto := range dtos {
		course := port.CatalogCourse{CanvasID: dto.ID, Name: dto.Name}
		if dto.Term != nil {
			course.Term = dto.Term.Name
			course.TermStart = dto.Term.StartAt
			course.TermEnd = dto.Term.EndAt
		}
		for _, e := range dto.Enrollments {
			if e.Type == "student" {
				course.CurrentScore = e.ComputedCurrentScore
				course.CurrentGrade = e.ComputedCurrentGrade
				break
			}
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func (c *Catalog) ListAssignments(ctx context.Context, courseCanvasID, studentCanvasID int64) ([]port.CatalogEntry, error) {
	var dtos []assignmentDTO
	endpoint := fmt.Sprintf(
		"%s/api/v1/users/%d/courses/%d/assignments?include[]=submission&per_page=%d",
		c.baseURL, studentCanvasID, courseCanvasID, c.perPage,
	)
	if err := c.getAllPages(ctx, endpoint, &dtos); err != nil {
		return nil, fmt.Errorf("canvas: listing assignments for course %d: %w", courseCanvasID, err)
	}

	entries := make([]port.CatalogEntry, 0, len(dtos))
	for _, dto := range dtos {
		entry := port.CatalogEntry{
			CanvasID:        dto.ID,
			Name:            dto.Name,
			Description:     dto.Description,
			DueAt:           dto.DueAt,
			PointsPossible:  dto.PointsPossible,
			SubmissionTypes: dto.SubmissionTypes,
		}
		if sub := dto.Submission; sub != nil {
			entry.IsSubmitted = sub.WorkflowState == "submitted" || sub.WorkflowState == "graded"
			entry.Score = sub.Score
			entry.Grade = sub.Grade
			entry.GradedAt = sub.GradedAt
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// getAllPages follows rel="next" Link headers until the collection is
// exhausted, decoding every page's JSON array elements into out (a pointer
// to a slice).
func (c *Catalog) getAllPages(ctx context.Context, endpoint string, out interface{}) error {
	var elements []json.RawMessage

	next := endpoint
	for next != "" {
		body, linkHeader, err := c.get(ctx, next)
		if err != nil {
			return err
		}

		var page []json.RawMessage
		if err := json.Unmarshal(body, &page); err != nil {
			return fmt.Errorf("unmarshaling page: %w", err)
		}
		elements = append(elements, page...)

		next = nextPageURL(linkHeader)
	}

	merged, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("merging pages: %w", err)
	}
	if err := json.Unmarshal(merged, out); err != nil {
		return fmt.Errorf("unmarshaling collection: %w", err)
	}
	return nil
}

func (c *Catalog) get(ctx context.Context, endpoint string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("calling canvas API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("canvas API error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, resp.Header.Get("Link"), nil
}

// nextPageURL extracts the rel="next" URL from a Canvas Link header.
// Returns "" when there is no next page.
func nextPageURL(linkHeader string) string {
	for _, part := range strings.Split(linkHeader, ",") {
		sections := strings.Split(strings.TrimSpace(part), ";")
		if len(sections) < 2 {
			continue
		}
		if strings.TrimSpace(sections[1]) != `rel="next"` {
			continue
		}
		raw := strings.Trim(strings.TrimSpace(sections[0]), "<>")
		if _, err := url.Parse(raw); err != nil {
			return ""
		}
		return raw
	}
	return ""
}
