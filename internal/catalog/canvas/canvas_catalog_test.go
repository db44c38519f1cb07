package canvas_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdeans2217/canvas-parent-cli/internal/catalog/canvas"
	"github.com/jdeans2217/canvas-parent-cli/internal/config"
)

func newTestCatalog(serverURL string) *canvas.Catalog {
	return canvas.NewCatalog(config.CanvasConfig{
		BaseURL:     serverURL,
		AccessToken: "test-canvas-token",
		PerPage:     2,
	})
}

func TestCatalog_ListObservees(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-canvas-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/users/self/observees", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"id":1001,"name":"Jamie Deans"},{"id":1002,"name":"Morgan Deans"}]`)
	}))
	defer server.Close()

	students, err := newTestCatalog(server.URL).ListObservees(context.Background())

	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, int64(1001), students[0].CanvasID)
	assert.Equal(t, "Jamie Deans", students[0].Name)
}

func TestCatalog_ListObservees_FollowsPagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"id":1003,"name":"Casey Deans"}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(
			`<%s/api/v1/users/self/observees?page=2&per_page=2>; rel="next", <%s/api/v1/users/self/observees?page=1&per_page=2>; rel="first"`,
			server.URL, server.URL,
		))
		fmt.Fprint(w, `[{"id":1001,"name":"Jamie Deans"},{"id":1002,"name":"Morgan Deans"}]`)
	}))
	defer server.Close()

	students, err := newTestCatalog(server.URL).ListObservees(context.Background())

	require.NoError(t, err)
	require.Len(t, students, 3)
	assert.Equal(t, "Casey Deans", students[2].Name)
}

func TestCatalog_ListCourses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/1001/courses", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("enrollment_state"))
		assert.ElementsMatch(t, []string{"term", "total_scores"}, r.URL.Query()["include[]"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"id": 2001,
			"name": "Science",
			"term": {"name": "Fall 2024", "start_at": "2024-08-15T00:00:00Z"},
			"enrollments": [
				{"type": "teacher"},
				{"type": "student", "computed_current_score": 88.5, "computed_current_grade": "B+"}
			]
		}]`)
	}))
	defer server.Close()

	courses, err := newTestCatalog(server.URL).ListCourses(context.Background(), 1001)

	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, int64(2001), courses[0].CanvasID)
	assert.Equal(t, "Science", courses[0].Name)
	assert.Equal(t, "Fall 2024", courses[0].Term)
	require.NotNil(t, courses[0].TermStart)
	require.NotNil(t, courses[0].CurrentScore)
	assert.InDelta(t, 88.5, *courses[0].CurrentScore, 1e-9)
	assert.Equal(t, "B+", courses[0].CurrentGrade)
}

func TestCatalog_ListAssignments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/users/1001/courses/2001/assignments", r.URL.Path)
		assert.Equal(t, []string{"submission"}, r.URL.Query()["include[]"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[
			{
				"id": 3001,
				"name": "Science Test",
				"due_at": "2024-01-15T17:00:00Z",
				"points_possible": 50,
				"submission_types": ["on_paper"],
				"submission": {"workflow_state": "graded", "score": 45, "grade": "A-", "graded_at": "2024-01-16T12:00:00Z"}
			},
			{
				"id": 3002,
				"name": "Lab Report",
				"points_possible": 20,
				"submission": {"workflow_state": "unsubmitted"}
			},
			{
				"id": 3003,
				"name": "Extra Credit"
			}
		]`)
	}))
	defer server.Close()

	entries, err := newTestCatalog(server.URL).ListAssignments(context.Background(), 2001, 1001)

	require.NoError(t, err)
	require.Len(t, entries, 3)

	graded := entries[0]
	assert.True(t, graded.IsSubmitted)
	require.NotNil(t, graded.Score)
	assert.InDelta(t, 45, *graded.Score, 1e-9)
	assert.Equal(t, "A-", graded.Grade)
	require.NotNil(t, graded.GradedAt)
	assert.Equal(t, []string{"on_paper"}, graded.SubmissionTypes)

	unsubmitted := entries[1]
	assert.False(t, unsubmitted.IsSubmitted)
	assert.Nil(t, unsubmitted.Score)

	noSubmission := entries[2]
	assert.False(t, noSubmission.IsSubmitted)
	assert.Nil(t, noSubmission.Score)
}

func TestCatalog_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"errors":[{"message":"Invalid access token."}]}`)
	}))
	defer server.Close()

	students, err := newTestCatalog(server.URL).ListObservees(context.Background())

	assert.Nil(t, students)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
