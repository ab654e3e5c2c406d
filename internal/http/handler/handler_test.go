package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/extract"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/http/middleware"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/model"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/plantid"
	"github.com/abhayprabhakar/Aviratha-Chatbot/internal/service"
	serviceMocks "github.com/abhayprabhakar/Aviratha-Chatbot/internal/service/mocks"
)

// fakeSession injects a session id the way middleware.SessionAuth would.
func fakeSession(id string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(middleware.SessionIDLocalKey, id)
		return c.Next()
	}
}

func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, ServiceName, body["service"])
		assert.NotEmpty(t, body["timestamp"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.False(t, body.Success)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateSession(t *testing.T) {
	newApp := func(svc service.SessionService) *fiber.App {
		app := fiber.New()
		app.Post("/session", CreateSession(svc))
		return app
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSessionService)
		app := newApp(mockSvc)

		mockSvc.On("CreateOrGet", mock.Anything, "user-1", mock.Anything).
			Return(&model.Session{SessionID: "sess-1", UserID: "user-1"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/session",
			bytes.NewReader([]byte(`{"userId":"user-1","userPreferences":{"theme":"dark"}}`)))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "sess-1", body["sessionId"])
		assert.Equal(t, "sess-1", body["token"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty body creates anonymous session", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSessionService)
		app := newApp(mockSvc)

		mockSvc.On("CreateOrGet", mock.Anything, "", mock.Anything).
			Return(&model.Session{SessionID: "sess-anon"}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/session", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockSessionService)
		app := newApp(mockSvc)

		mockSvc.On("CreateOrGet", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, errors.New("db fail")).Once()

		req := httptest.NewRequest(http.MethodPost, "/session", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestUploadDocument(t *testing.T) {
	newApp := func(svc service.DocumentService) *fiber.App {
		app := fiber.New()
		app.Post("/upload", fakeSession("sess-1"), UploadDocument(svc))
		return app
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
			return in.SessionID == "sess-1" && in.Filename == "guide.txt" && in.IsPublic && in.Reader != nil
		})).Return(&service.UploadedDocument{
			ID:       "doc-1",
			Title:    "guide",
			Content:  "preview text",
			FileName: "guide.txt",
			FileType: model.FileTypeText,
			FileSize: 12,
		}, nil).Once()

		body, ct := multipartUpload(t, "guide.txt", "some content", map[string]string{"isPublic": "true"})
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, true, res["success"])
		doc := res["document"].(map[string]any)
		assert.Equal(t, "doc-1", doc["id"])
		assert.Equal(t, "guide", doc["title"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("no file part", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		body, ct := multipartUpload(t, "", "", map[string]string{"isPublic": "false"})
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "FILE_REQUIRED", res.Code)
	})

	t.Run("content too short", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		mockSvc.On("Upload", mock.Anything, mock.Anything).
			Return(nil, service.ErrContentTooShort).Once()

		body, ct := multipartUpload(t, "tiny.txt", "x", nil)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "CONTENT_TOO_SHORT", res.Code)
	})

	t.Run("extraction failure", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp(mockSvc)

		mockSvc.On("Upload", mock.Anything, mock.Anything).
			Return(nil, extract.ErrEncrypted).Once()

		body, ct := multipartUpload(t, "locked.pdf", "x", nil)
		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "PROCESSING_ERROR", res.Code)
	})
}

func TestListDocuments(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents", fakeSession("sess-1"), ListDocuments(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "sess-1").Return(&service.DocumentListResult{
			Items: []model.DocumentSummary{
				{ID: "doc-2", FileSize: 3400},
				{ID: "doc-1", FileSize: 1200},
			},
			Stats: service.DocumentStats{TotalDocuments: 2, TotalSize: 4600},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, true, res["success"])
		assert.Len(t, res["documents"], 2)
		stats := res["stats"].(map[string]any)
		assert.Equal(t, float64(2), stats["totalDocuments"])
		assert.Equal(t, float64(4600), stats["totalSize"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "sess-1").
			Return(nil, errors.New("db fail")).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Delete("/documents/:id", fakeSession("sess-1"), DeleteDocument(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, "sess-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, true, res["success"])
		assert.Equal(t, "Document deleted successfully", res["message"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found or foreign", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id, "sess-1").
			Return(service.ErrNotFoundOrForbidden).Once()

		req := httptest.NewRequest(http.MethodDelete, "/documents/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/documents/invalid-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_ID", res.Code)
	})
}

func TestDownloadDocument(t *testing.T) {
	mockSvc := new(serviceMocks.MockDocumentService)
	app := fiber.New()
	app.Get("/documents/:id/download", fakeSession("sess-1"), DownloadDocument(mockSvc))

	id := uuid.New().String()
	mockSvc.On("DownloadURL", mock.Anything, id, "sess-1").
		Return("https://example.test/archived", nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/documents/"+id+"/download", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res map[string]any
	json.NewDecoder(resp.Body).Decode(&res)
	assert.Equal(t, "https://example.test/archived", res["url"])
	mockSvc.AssertExpectations(t)
}

type stubIdentifier struct {
	res *plantid.Identification
	err error
}

func (s *stubIdentifier) Identify(context.Context, []byte) (*plantid.Identification, error) {
	return s.res, s.err
}

func TestIdentifyPlant(t *testing.T) {
	newApp := func(id plantid.Identifier) *fiber.App {
		app := fiber.New()
		app.Post("/identify-plant", fakeSession("sess-1"), IdentifyPlant(id))
		return app
	}

	t.Run("success", func(t *testing.T) {
		app := newApp(&stubIdentifier{res: &plantid.Identification{
			PlantDetails: map[string]any{},
			Confidence:   87.5,
		}})

		body, ct := multipartUpload(t, "leaf.jpg", "jpegbytes", nil)
		req := httptest.NewRequest(http.MethodPost, "/identify-plant", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, true, res["success"])
		assert.Equal(t, false, res["is_plant"])
		assert.Equal(t, 87.5, res["confidence"])
	})

	t.Run("not an image", func(t *testing.T) {
		app := newApp(&stubIdentifier{})

		body, ct := multipartUpload(t, "doc.pdf", "x", nil)
		req := httptest.NewRequest(http.MethodPost, "/identify-plant", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "INVALID_IMAGE", res.Code)
	})

	t.Run("identifier error", func(t *testing.T) {
		app := newApp(&stubIdentifier{err: errors.New("api down")})

		body, ct := multipartUpload(t, "leaf.png", "pngbytes", nil)
		req := httptest.NewRequest(http.MethodPost, "/identify-plant", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestRouting(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler(),
	})

	mockDocs := new(serviceMocks.MockDocumentService)
	mockSessions := new(serviceMocks.MockSessionService)
	RegisterRoutes(app, nil, mockDocs, mockSessions, &stubIdentifier{})

	t.Run("not found route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/non-existent", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, "NOT_FOUND", res.Code)
	})

	t.Run("protected route without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

		var res map[string]any
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, false, res["success"])
		mockDocs.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
	})

	t.Run("protected route with unknown token", func(t *testing.T) {
		mockSessions.On("Exists", mock.Anything, "ghost").Return(false, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		req.Header.Set("Authorization", "Bearer ghost")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		mockSessions.AssertExpectations(t)
	})
}
