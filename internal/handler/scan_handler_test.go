package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jdeans2217/canvas-parent-cli/internal/domain"
	"github.com/jdeans2217/canvas-parent-cli/internal/handler"
	"github.com/jdeans2217/canvas-parent-cli/internal/middleware"
	"github.com/jdeans2217/canvas-parent-cli/internal/service"
	"github.com/jdeans2217/canvas-parent-cli/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type scanHandlerFixture struct {
	h         *handler.ScanHandler
	reconcile *mocks.MockReconcileService
	auth      *mocks.MockAuthService
	scanRepo  *mocks.MockScanRepo
	storage   *mocks.MockObjectStorage
}

func newScanHandler() *scanHandlerFixture {
	f := &scanHandlerFixture{
		reconcile: new(mocks.MockReconcileService),
		auth:      new(mocks.MockAuthService),
		scanRepo:  new(mocks.MockScanRepo),
		storage:   new(mocks.MockObjectStorage),
	}
	f.h = handler.NewScanHandler(f.reconcile, f.auth, f.scanRepo, f.storage, 3600)
	return f
}

func multipartScan(t *testing.T, filename string, data []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestScanHandler_Upload_Queued(t *testing.T) {
	f := newScanHandler()

	studentID := uuid.New()
	expected := &domain.ScannedDocument{
		ID:        uuid.New(),
		StudentID: &studentID,
		FileName:  "science-test.jpg",
		Status:    domain.ScanStatusPending,
	}

	f.reconcile.On("Submit", mock.Anything, mock.MatchedBy(func(input *service.ReconcileInput) bool {
		return input.FileName == "science-test.jpg" &&
			// Multipart parts default to octet-stream; the extension decides.
			input.ContentType == "image/jpeg" &&
			input.Source == domain.SourceManualUpload &&
			input.StudentID != nil && *input.StudentID == studentID
	})).Return(expected, nil)

	body, contentType := multipartScan(t, "science-test.jpg", []byte("jpeg bytes"),
		map[string]string{"student_id": studentID.String()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans", body)
	c.Request.Header.Set("Content-Type", contentType)

	f.h.Upload(c)

	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	f.reconcile.AssertExpectations(t)
}

func TestScanHandler_Upload_SyncReconcilesInline(t *testing.T) {
	f := newScanHandler()

	expected := &domain.ScannedDocument{
		ID:          uuid.New(),
		Status:      domain.ScanStatusProcessed,
		Disposition: domain.DispositionAutoMatched,
	}
	f.reconcile.On("ReconcileFile", mock.Anything, mock.AnythingOfType("*service.ReconcileInput")).
		Return(expected, nil)

	body, contentType := multipartScan(t, "quiz.png", []byte("png bytes"), nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans?sync=true", body)
	c.Request.Header.Set("Content-Type", contentType)

	f.h.Upload(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.reconcile.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestScanHandler_Upload_MissingFile(t *testing.T) {
	f := newScanHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans", bytes.NewReader(nil))
	c.Request.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	f.h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "MISSING_FILE", resp.Error.Code)
}

func TestScanHandler_Upload_InvalidStudentID(t *testing.T) {
	f := newScanHandler()

	body, contentType := multipartScan(t, "quiz.jpg", []byte("bytes"),
		map[string]string{"student_id": "not-a-uuid"})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans", body)
	c.Request.Header.Set("Content-Type", contentType)

	f.h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.reconcile.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestScanHandler_Get_NotFound(t *testing.T) {
	f := newScanHandler()

	scanID := uuid.New()
	f.scanRepo.On("GetByID", mock.Anything, scanID).Return(nil, domain.ErrNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/scans/"+scanID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: scanID.String()}}

	f.h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScanHandler_Get_InvalidID(t *testing.T) {
	f := newScanHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/scans/nope", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	f.h.Get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScanHandler_Assign_UsesCaregiverEmail(t *testing.T) {
	f := newScanHandler()

	scanID := uuid.New()
	assignmentID := uuid.New()
	expected := &domain.ScannedDocument{ID: scanID, AssignmentID: &assignmentID, Verified: true}

	f.reconcile.On("AssignManually", mock.Anything, scanID, assignmentID, "parent@example.com").
		Return(expected, nil)

	body, _ := json.Marshal(map[string]string{"assignment_id": assignmentID.String()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/scans/"+scanID.String()+"/assign", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: scanID.String()}}
	c.Set(middleware.ContextKeyEmail, "parent@example.com")

	f.h.Assign(c)

	assert.Equal(t, http.StatusOK, w.Code)
	f.reconcile.AssertExpectations(t)
}

func TestScanHandler_AssignViaToken(t *testing.T) {
	f := newScanHandler()

	scanID := uuid.New()
	assignmentID := uuid.New()

	f.auth.On("ValidateAssignToken", "signed-token").Return(scanID, nil)
	f.reconcile.On("AssignManually", mock.Anything, scanID, assignmentID, "assign-link").
		Return(&domain.ScannedDocument{ID: scanID, Verified: true}, nil)

	body, _ := json.Marshal(map[string]string{"assignment_id": assignmentID.String()})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assign?token=signed-token", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	f.h.AssignViaToken(c)

	assert.Equal(t, http.StatusOK, w.Code)
	f.reconcile.AssertExpectations(t)
}

func TestScanHandler_AssignViaToken_InvalidToken(t *testing.T) {
	f := newScanHandler()

	f.auth.On("ValidateAssignToken", "expired-token").
		Return(uuid.Nil, domain.ErrAssignTokenInvalid)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/assign?token=expired-token", bytes.NewReader([]byte("{}")))
	c.Request.Header.Set("Content-Type", "application/json")

	f.h.AssignViaToken(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_ASSIGN_TOKEN", resp.Error.Code)
}

func TestScanHandler_File_ReturnsPresignedURL(t *testing.T) {
	f := newScanHandler()

	scanID := uuid.New()
	f.scanRepo.On("GetByID", mock.Anything, scanID).Return(&domain.ScannedDocument{
		ID:       scanID,
		S3Bucket: "scan-bucket",
		S3Key:    "scans/abc/test.jpg",
	}, nil)
	f.storage.On("GetPresignedURL", mock.Anything, "scan-bucket", "scans/abc/test.jpg", int64(3600)).
		Return("https://signed.example.com/test.jpg", nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/scans/"+scanID.String()+"/file", nil)
	c.Params = gin.Params{{Key: "id", Value: scanID.String()}}

	f.h.File(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "https://signed.example.com/test.jpg", data["url"])
}

func TestScanHandler_ListNeedsReview_Paginated(t *testing.T) {
	f := newScanHandler()

	f.scanRepo.On("ListNeedsReview", mock.Anything, 0, 20).
		Return([]domain.ScannedDocument{{ID: uuid.New(), Disposition: domain.DispositionNeedsReview}}, 1, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/scans/review", nil)

	f.h.ListNeedsReview(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)
	assert.Equal(t, 20, resp.Meta.Limit)
}
