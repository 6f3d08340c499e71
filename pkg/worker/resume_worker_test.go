package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/resume-portfolio/internal/agent/document"
	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
	"github.com/feichai0017/resume-portfolio/pkg/queue"
)

type fakeProcessor struct {
	err      error
	uploads  []*models.Upload
	recordID int64
}

func (p *fakeProcessor) ProcessUpload(_ context.Context, userID int64, upload *models.Upload) (*models.PortfolioRecord, error) {
	p.uploads = append(p.uploads, upload)
	if p.err != nil {
		return nil, p.err
	}
	return &models.PortfolioRecord{ID: p.recordID, UserID: userID}, nil
}

type fakeQueue struct {
	mu      sync.Mutex
	history []queue.TaskStatus
}

func (q *fakeQueue) Enqueue(context.Context, *queue.Task) error { return nil }

func (q *fakeQueue) GetTaskStatus(_ context.Context, taskID string) (*queue.TaskStatus, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := len(q.history) - 1; i >= 0; i-- {
		if q.history[i].TaskID == taskID {
			s := q.history[i]
			return &s, nil
		}
	}
	return nil, models.ErrTaskNotFound
}

func (q *fakeQueue) SaveStatus(_ context.Context, status *queue.TaskStatus) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.history = append(q.history, *status)
	return nil
}

type fakeStorage struct {
	objects   map[string][]byte
	deleted   []string
	swept     string
	threshold time.Time
}

func (s *fakeStorage) Store(_ context.Context, r io.Reader, key string) (string, error) {
	data, err := io.ReadAll(r)
	s.objects[key] = data
	return key, err
}

func (s *fakeStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	delete(s.objects, key)
	return nil
}

func (s *fakeStorage) CleanupBefore(_ context.Context, prefix string, threshold time.Time) error {
	s.swept = prefix
	s.threshold = threshold
	return nil
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestWorker(p UploadProcessor, q queue.Queue, s *fakeStorage) *ResumeWorker {
	return &ResumeWorker{
		BaseWorker: BaseWorker{logger: logger.NewNop(), stopChan: make(chan struct{})},
		processor:  p,
		queue:      q,
		storage:    s,
		retention:  24 * time.Hour,
		now:        func() time.Time { return fixedNow },
	}
}

func extractTask(t *testing.T, task queue.Task) *asynq.Task {
	t.Helper()
	q := &queue.AsynqQueue{}
	at, err := q.NewTask(&task)
	require.NoError(t, err)
	return at
}

var sampleTask = queue.Task{
	ID:        "task-1",
	UserID:    1,
	ObjectKey: "uploads/task-1.pdf",
	FileName:  "cv.pdf",
	MediaType: "application/pdf",
	Size:      8,
}

func TestHandleExtractCompletes(t *testing.T) {
	p := &fakeProcessor{recordID: 5}
	q := &fakeQueue{}
	s := &fakeStorage{objects: map[string][]byte{"uploads/task-1.pdf": []byte("%PDF-1.4")}}
	w := newTestWorker(p, q, s)

	require.NoError(t, w.HandleExtract(context.Background(), extractTask(t, sampleTask)))

	require.Len(t, p.uploads, 1)
	assert.Equal(t, "cv.pdf", p.uploads[0].FileName)
	assert.Equal(t, []byte("%PDF-1.4"), p.uploads[0].Data)
	assert.Equal(t, []string{"uploads/task-1.pdf"}, s.deleted)

	require.Len(t, q.history, 2)
	assert.Equal(t, "running", q.history[0].Status)
	final := q.history[1]
	assert.Equal(t, "completed", final.Status)
	assert.Equal(t, int64(5), final.PortfolioID)
	assert.Equal(t, 1.0, final.Progress)
	assert.Equal(t, fixedNow, final.FinishedAt)
}

func TestHandleExtractFailureSkipsRetry(t *testing.T) {
	p := &fakeProcessor{err: document.ExtractionError("ocr", errors.New("no text"))}
	q := &fakeQueue{}
	s := &fakeStorage{objects: map[string][]byte{"uploads/task-1.pdf": []byte("%PDF-1.4")}}
	w := newTestWorker(p, q, s)

	err := w.HandleExtract(context.Background(), extractTask(t, sampleTask))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
	assert.ErrorIs(t, err, models.ErrExtractionFailure)

	status, err := q.GetTaskStatus(context.Background(), "task-1")
	require.NoError(t, err)
	assert.Equal(t, "failed", status.Status)
	assert.Contains(t, status.Error, "text extraction failed")
	assert.Equal(t, []string{"uploads/task-1.pdf"}, s.deleted)
}

func TestHandleExtractMissingObjectIsRetryable(t *testing.T) {
	p := &fakeProcessor{}
	q := &fakeQueue{}
	s := &fakeStorage{objects: map[string][]byte{}}
	w := newTestWorker(p, q, s)

	err := w.HandleExtract(context.Background(), extractTask(t, sampleTask))
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
	assert.Empty(t, p.uploads)
}

func TestHandleExtractInvalidPayload(t *testing.T) {
	w := newTestWorker(&fakeProcessor{}, &fakeQueue{}, &fakeStorage{})

	err := w.HandleExtract(context.Background(), asynq.NewTask(queue.TaskTypeResumeExtract, []byte("{}")))
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestCleanupSweepsStagedUploads(t *testing.T) {
	s := &fakeStorage{}
	w := newTestWorker(&fakeProcessor{}, &fakeQueue{}, s)

	require.NoError(t, w.Cleanup(context.Background()))
	assert.Equal(t, "uploads/", s.swept)
	assert.Equal(t, fixedNow.Add(-24*time.Hour), s.threshold)
}

func TestStopIsIdempotent(t *testing.T) {
	w := newTestWorker(&fakeProcessor{}, &fakeQueue{}, &fakeStorage{})
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
