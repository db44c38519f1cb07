package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/port"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
	"github.com/jdeans2217/canvas-parent-cli/mocks"
)

type syncFixture struct {
	svc          service.SyncService
	catalog      *mocks.MockAssignmentCatalog
	studentRepo  *mocks.MockStudentRepo
	courseRepo   *mocks.MockCourseRepo
	assignRepo   *mocks.MockAssignmentRepo
	snapshotRepo *mocks.MockSnapshotRepo
}

func setupSyncService() *syncFixture {
	f := &syncFixture{
		catalog:      new(mocks.MockAssignmentCatalog),
		studentRepo:  new(mocks.MockStudentRepo),
		courseRepo:   new(mocks.MockCourseRepo),
		assignRepo:   new(mocks.MockAssignmentRepo),
		snapshotRepo: new(mocks.MockSnapshotRepo),
	}
	f.svc = service.NewSyncService(f.catalog, f.studentRepo, f.courseRepo, f.assignRepo, f.snapshotRepo)
	return f
}

func TestSyncService_SyncAll(t *testing.T) {
	f := setupSyncService()

	pastDue := time.Now().Add(-72 * time.Hour)
	futureDue := time.Now().Add(72 * time.Hour)

	f.catalog.On("ListObservees", mock.Anything).Return([]port.CatalogStudent{
		{CanvasID: 1001, Name: "Jamie Deans"},
	}, nil)
	f.catalog.On("ListCourses", mock.Anything, int64(1001)).Return([]port.CatalogCourse{
		{CanvasID: 2001, Name: "Science", Term: "Fall 2024", CurrentScore: floatPtr(88.5), CurrentGrade: "B+"},
	}, nil)
	f.catalog.On("ListAssignments", mock.Anything, int64(2001), int64(1001)).Return([]port.CatalogEntry{
		{
			CanvasID:        3001,
			Name:            "Science Test",
			DueAt:           &pastDue,
			PointsPossible:  floatPtr(50),
			SubmissionTypes: []string{"on_paper"},
			IsSubmitted:     true,
			Score:           floatPtr(45),
			Grade:           "A-",
		},
		{
			// Past due, never turned in, never graded.
			CanvasID: 3002,
			Name:     "Lab Report",
			DueAt:    &pastDue,
		},
		{
			// Not yet due; pending, not missing.
			CanvasID: 3003,
			Name:     "Unit 4 Homework",
			DueAt:    &futureDue,
		},
	}, nil)

	f.studentRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Student")).Return(nil)
	f.courseRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Course")).Return(nil)
	f.assignRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Assignment")).Return(nil)

	var captured *domain.GradeSnapshot
	f.snapshotRepo.On("Insert", mock.Anything, mock.AnythingOfType("*domain.GradeSnapshot")).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(*domain.GradeSnapshot)
		}).
		Return(nil)

	result, err := f.svc.SyncAll(context.Background())

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, 1, result.Students)
	assert.Equal(t, 1, result.Courses)
	assert.Equal(t, 3, result.Assignments)
	assert.Equal(t, 1, result.Snapshots)

	require.NotNil(t, captured)
	assert.Equal(t, 3, captured.AssignmentsTotal)
	assert.Equal(t, 1, captured.AssignmentsGraded)
	assert.Equal(t, 1, captured.AssignmentsMissing)
	require.NotNil(t, captured.CurrentScore)
	assert.InDelta(t, 88.5, *captured.CurrentScore, 1e-9)
	assert.Equal(t, "B+", captured.LetterGrade)

	f.studentRepo.AssertExpectations(t)
	f.assignRepo.AssertNumberOfCalls(t, "Upsert", 3)
}

func TestSyncService_SyncAll_CatalogError(t *testing.T) {
	f := setupSyncService()

	f.catalog.On("ListObservees", mock.Anything).Return(nil, errors.New("canvas unreachable"))

	result, err := f.svc.SyncAll(context.Background())

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listing observees")
	f.studentRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestSyncService_SyncAll_StopsOnUpsertError(t *testing.T) {
	f := setupSyncService()

	f.catalog.On("ListObservees", mock.Anything).Return([]port.CatalogStudent{
		{CanvasID: 1001, Name: "Jamie Deans"},
	}, nil)
	f.studentRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*domain.Student")).
		Return(errors.New("db down"))

	result, err := f.svc.SyncAll(context.Background())

	assert.Nil(t, result)
	require.Error(t, err)
	f.catalog.AssertNotCalled(t, "ListCourses", mock.Anything, mock.Anything)
}
