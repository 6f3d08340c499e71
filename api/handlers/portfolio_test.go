package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/resume-portfolio/api/handlers"
	"github.com/feichai0017/resume-portfolio/api/routes"
	"github.com/feichai0017/resume-portfolio/internal/agent/document"
	"github.com/feichai0017/resume-portfolio/internal/agent/resume"
	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/internal/service/portfolio"
	"github.com/feichai0017/resume-portfolio/internal/store"
	"github.com/feichai0017/resume-portfolio/internal/utils/validator"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
	"github.com/feichai0017/resume-portfolio/pkg/queue"
)

const resumeText = "Jane Doe\nSoftware Engineer\njane@example.com\n"

type stubProcessor struct {
	text  string
	err   error
	calls int
}

func (p *stubProcessor) CanProcess(string) bool { return true }

func (p *stubProcessor) ExtractText(context.Context, io.Reader) (string, error) {
	p.calls++
	return p.text, p.err
}

func (p *stubProcessor) Close() error { return nil }

type stubRegistry struct{ p *stubProcessor }

func (r stubRegistry) GetProcessor(string) (document.Processor, error) { return r.p, nil }

type nopQueue struct{ saved []*queue.TaskStatus }

func (q *nopQueue) Enqueue(context.Context, *queue.Task) error { return nil }

func (q *nopQueue) GetTaskStatus(_ context.Context, id string) (*queue.TaskStatus, error) {
	for _, s := range q.saved {
		if s.TaskID == id {
			return s, nil
		}
	}
	return nil, models.ErrTaskNotFound
}

func (q *nopQueue) SaveStatus(_ context.Context, s *queue.TaskStatus) error {
	q.saved = append(q.saved, s)
	return nil
}

type discardStorage struct{}

func (discardStorage) Store(_ context.Context, r io.Reader, key string) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return key, err
}
func (discardStorage) Get(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not stored")
}
func (discardStorage) Delete(context.Context, string) error                    { return nil }
func (discardStorage) CleanupBefore(context.Context, string, time.Time) error { return nil }

type testServer struct {
	router    *gin.Engine
	processor *stubProcessor
	store     *store.MemoryStore
}

func newTestServer(t *testing.T, maxBytes int64, jobs bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	p := &stubProcessor{text: resumeText}
	portfolios := store.NewMemoryStore()
	var opts []portfolio.Option
	if jobs {
		opts = append(opts, portfolio.WithJobs(&nopQueue{}, discardStorage{}))
	}
	svc := portfolio.NewService(
		stubRegistry{p},
		resume.NewParser(logger.NewNop()),
		portfolios,
		logger.NewNop(),
		&portfolio.ServiceConfig{MaxFileSize: maxBytes},
		opts...,
	)

	cfg := validator.DefaultConfig()
	cfg.MaxFileSize = maxBytes
	h := handlers.NewHandlers(svc, validator.NewUploadValidator(logger.NewNop(), cfg), 1, logger.NewNop())

	r := gin.New()
	routes.SetupRoutes(r, h, routes.Options{JobsEnabled: jobs})
	return &testServer{router: r, processor: p, store: portfolios}
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, path, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestUploadResume(t *testing.T) {
	s := newTestServer(t, 1024, false)

	w := s.do(uploadRequest(t, "/api/resume/upload", "cv.pdf", "application/pdf", []byte("%PDF-1.4")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[handlers.UploadResponse](t, w)
	assert.Equal(t, "Resume processed successfully", resp.Message)
	assert.Equal(t, int64(1), resp.PortfolioID)
	require.NotNil(t, resp.Data.Name)
	assert.Equal(t, "Jane Doe", *resp.Data.Name)
	assert.Equal(t, "jane@example.com", *resp.Data.Email)

	record, err := s.store.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.UserID)
}

func TestUploadResumeRejections(t *testing.T) {
	tests := []struct {
		name        string
		req         func(t *testing.T) *http.Request
		procErr     error
		wantStatus  int
		wantMessage string
		extracted   bool
	}{
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				req := httptest.NewRequest(http.MethodPost, "/api/resume/upload", strings.NewReader(""))
				req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
				return req
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "No file uploaded",
		},
		{
			name: "unsupported type",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/resume/upload", "cv.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("PK"))
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Unsupported file format. Please upload a PDF, JPG, or PNG file.",
		},
		{
			name: "too large",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/resume/upload", "cv.pdf", "application/pdf", bytes.Repeat([]byte("x"), 1025))
			},
			wantStatus:  http.StatusRequestEntityTooLarge,
			wantMessage: "File is too large. Maximum size is 10MB.",
		},
		{
			name: "unreadable document",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/api/resume/upload", "scan.png", "image/png", []byte("\x89PNG"))
			},
			procErr:     document.ExtractionError("decode", errors.New("bad header")),
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Could not read text from the uploaded file. Please try again with a different file.",
			extracted:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, 1024, false)
			s.processor.err = tt.procErr

			w := s.do(tt.req(t))
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantMessage, decode[handlers.ErrorResponse](t, w).Message)
			assert.Equal(t, tt.extracted, s.processor.calls > 0)

			_, err := s.store.Get(context.Background(), 1)
			assert.ErrorIs(t, err, models.ErrPortfolioNotFound)
		})
	}
}

func TestGetPortfolio(t *testing.T) {
	s := newTestServer(t, 1024, false)
	require.Equal(t, http.StatusOK, s.do(uploadRequest(t, "/api/resume/upload", "cv.pdf", "application/pdf", []byte("%PDF"))).Code)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/portfolio/1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handlers.PortfolioResponse](t, w)
	assert.Equal(t, int64(1), resp.Portfolio.ID)
	assert.Equal(t, "Jane Doe", *resp.Portfolio.Data.Name)
	assert.NotEmpty(t, resp.Portfolio.CreatedAt)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/portfolio/abc", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid portfolio ID", decode[handlers.ErrorResponse](t, w).Message)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/portfolio/42", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Portfolio not found", decode[handlers.ErrorResponse](t, w).Message)
}

func TestUpdatePortfolio(t *testing.T) {
	s := newTestServer(t, 1024, false)
	require.Equal(t, http.StatusOK, s.do(uploadRequest(t, "/api/resume/upload", "cv.pdf", "application/pdf", []byte("%PDF"))).Code)

	put := func(path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		return s.do(req)
	}

	w := put("/api/portfolio/1", `{"data":{"name":"Jane Q. Doe","email":"jq@example.com","skills":[],"projects":[{"title":"Site","description":"Personal site","link":"https://jq.dev"}]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[handlers.UpdatePortfolioResponse](t, w)
	assert.Equal(t, "Portfolio updated successfully", resp.Message)
	assert.Equal(t, "Jane Q. Doe", *resp.Portfolio.Data.Name)
	assert.Nil(t, resp.Portfolio.Data.Title)
	assert.NotNil(t, resp.Portfolio.Data.Skills)
	assert.Empty(t, resp.Portfolio.Data.Skills)

	invalid := []struct {
		name string
		body string
	}{
		{"missing data", `{}`},
		{"bad email", `{"data":{"email":"not-an-email"}}`},
		{"bad website", `{"data":{"website":"nope"}}`},
		{"experience without company", `{"data":{"experience":[{"position":"Engineer","duration":"2020"}]}}`},
		{"project without description", `{"data":{"projects":[{"title":"X"}]}}`},
		{"malformed json", `{"data":`},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			w := put("/api/portfolio/1", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Invalid portfolio data", decode[handlers.ErrorResponse](t, w).Message)
		})
	}

	w = put("/api/portfolio/7", `{"data":{"name":"x"}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = put("/api/portfolio/0", `{"data":{"name":"x"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadPortfolio(t *testing.T) {
	s := newTestServer(t, 1024, false)
	require.Equal(t, http.StatusOK, s.do(uploadRequest(t, "/api/resume/upload", "cv.pdf", "application/pdf", []byte("%PDF"))).Code)

	w := s.do(httptest.NewRequest(http.MethodGet, "/api/portfolio/1/download", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="Jane_Doe_portfolio.json"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var data models.Portfolio
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &data))
	assert.Equal(t, "Jane Doe", *data.Name)
}

func TestJobsEndpoints(t *testing.T) {
	s := newTestServer(t, 1024, true)

	w := s.do(uploadRequest(t, "/api/resume/jobs", "cv.pdf", "application/pdf", []byte("%PDF")))
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	resp := decode[handlers.ProcessResponse](t, w)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "cv.pdf", resp.Filename)
	assert.Equal(t, "application/pdf", resp.FileType)
	assert.Zero(t, s.processor.calls)

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/resume/jobs/"+resp.TaskID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[map[string]any](t, w)
	assert.Equal(t, resp.TaskID, status["taskId"])
	assert.Equal(t, "pending", status["status"])

	w = s.do(httptest.NewRequest(http.MethodGet, "/api/resume/jobs/unknown", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestJobsRoutesAbsentWhenDisabled(t *testing.T) {
	s := newTestServer(t, 1024, false)

	w := s.do(uploadRequest(t, "/api/resume/jobs", "cv.pdf", "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, 1024, false)

	w := s.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
