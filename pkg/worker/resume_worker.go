package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hibiken/asynq"

	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
	"github.com/feichai0017/resume-portfolio/pkg/queue"
	"github.com/feichai0017/resume-portfolio/pkg/storage"
)

// CleanupInterval is how often expired staged uploads are swept.
const CleanupInterval = time.Hour

// UploadProcessor is the synchronous extraction path shared with the API.
type UploadProcessor interface {
	ProcessUpload(ctx context.Context, userID int64, upload *models.Upload) (*models.PortfolioRecord, error)
}

type ResumeWorker struct {
	BaseWorker
	processor UploadProcessor
	queue     queue.Queue
	storage   storage.Storage
	retention time.Duration
	now       func() time.Time
}

func NewResumeWorker(
	cfg *Config,
	processor UploadProcessor,
	q queue.Queue,
	blobs storage.Storage,
	retention time.Duration,
	log logger.Logger,
) *ResumeWorker {
	log = log.Named("worker")
	server := asynq.NewServer(cfg.Redis, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      cfg.Queues,
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			return time.Duration(n) * time.Minute
		},
		Logger: asynqLogger{log},
	})

	w := &ResumeWorker{
		BaseWorker: BaseWorker{
			server:   server,
			mux:      asynq.NewServeMux(),
			logger:   log,
			stopChan: make(chan struct{}),
		},
		processor: processor,
		queue:     q,
		storage:   blobs,
		retention: retention,
		now:       time.Now,
	}
	w.mux.HandleFunc(queue.TaskTypeResumeExtract, w.HandleExtract)
	return w
}

// HandleExtract runs one resume:extract task. Rejected or unreadable
// documents fail permanently; storage and store errors are retried.
func (w *ResumeWorker) HandleExtract(ctx context.Context, t *asynq.Task) error {
	task, err := queue.DecodeTask(t)
	if err != nil {
		w.logger.Error("Invalid task payload",
			logger.String("payload", string(t.Payload())),
			logger.Error(err),
		)
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	w.logger.Info("Processing resume task",
		logger.String("taskId", task.ID),
		logger.String("filename", task.FileName),
	)

	status := &queue.TaskStatus{
		TaskID:    task.ID,
		Status:    string(models.StatusRunning),
		Progress:  0.1,
		FileName:  task.FileName,
		StartedAt: task.CreatedAt,
	}
	w.saveStatus(ctx, status)

	record, err := w.process(ctx, task)
	if err != nil {
		permanent := errors.Is(err, models.ErrExtractionFailure) ||
			errors.Is(err, models.ErrUnsupportedMediaType) ||
			errors.Is(err, models.ErrFileTooLarge)

		w.logger.Error("Resume task failed",
			logger.String("taskId", task.ID),
			logger.Bool("permanent", permanent),
			logger.Error(err),
		)

		if permanent || finalAttempt(ctx) {
			status.Status = string(models.StatusFailed)
			status.Error = err.Error()
			status.FinishedAt = w.now()
			w.saveStatus(ctx, status)
			w.removeStaged(ctx, task.ObjectKey)
		}
		if permanent {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	w.removeStaged(ctx, task.ObjectKey)

	status.Status = string(models.StatusCompleted)
	status.Progress = 1.0
	status.PortfolioID = record.ID
	status.FinishedAt = w.now()
	w.saveStatus(ctx, status)

	w.logger.Info("Resume task completed",
		logger.String("taskId", task.ID),
		logger.Int64("portfolioId", record.ID),
	)
	return nil
}

func (w *ResumeWorker) process(ctx context.Context, task *queue.Task) (*models.PortfolioRecord, error) {
	reader, err := w.storage.Get(ctx, task.ObjectKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return w.processor.ProcessUpload(ctx, task.UserID, &models.Upload{
		FileName:  task.FileName,
		MediaType: task.MediaType,
		Size:      int64(len(data)),
		Data:      data,
	})
}

func (w *ResumeWorker) saveStatus(ctx context.Context, status *queue.TaskStatus) {
	if err := w.queue.SaveStatus(ctx, status); err != nil {
		w.logger.Error("Failed to save task status",
			logger.String("taskId", status.TaskID),
			logger.String("status", status.Status),
			logger.Error(err),
		)
	}
}

func (w *ResumeWorker) removeStaged(ctx context.Context, key string) {
	if err := w.storage.Delete(ctx, key); err != nil {
		w.logger.Warn("Failed to remove staged file", logger.String("key", key), logger.Error(err))
	}
}

// finalAttempt reports whether asynq will not retry the running task again.
// Outside an asynq handler it is always true.
func finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	return !ok || retried >= maxRetry
}

// Cleanup deletes staged uploads older than the retention period.
func (w *ResumeWorker) Cleanup(ctx context.Context) error {
	threshold := w.now().Add(-w.retention)
	if err := w.storage.CleanupBefore(ctx, storage.UploadPrefix, threshold); err != nil {
		return fmt.Errorf("failed to cleanup storage: %w", err)
	}
	w.logger.Info("Completed staged upload cleanup", logger.Time("threshold", threshold))
	return nil
}

func (w *ResumeWorker) Start(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return fmt.Errorf("failed to start worker server: %w", err)
	}

	go func() {
		ticker := time.NewTicker(CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := w.Cleanup(ctx); err != nil {
					w.logger.Error("Cleanup failed", logger.Error(err))
				}
			case <-w.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		select {
		case <-ctx.Done():
			w.Stop()
		case <-w.stopChan:
		}
	}()

	return nil
}

// asynqLogger routes asynq's internal logging through the service logger.
type asynqLogger struct {
	log logger.Logger
}

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(fmt.Sprint(args...)) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(fmt.Sprint(args...)) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(fmt.Sprint(args...)) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(fmt.Sprint(args...)) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(fmt.Sprint(args...)) }
