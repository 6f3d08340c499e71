package portfolio

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/feichai0017/resume-portfolio/internal/agent/document"
	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/internal/store"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
	"github.com/feichai0017/resume-portfolio/pkg/queue"
	"github.com/feichai0017/resume-portfolio/pkg/storage"
)

// ProcessorRegistry resolves the text source for a media type.
type ProcessorRegistry interface {
	GetProcessor(mimeType string) (document.Processor, error)
}

// Parser assembles a portfolio from extracted text.
type Parser interface {
	Parse(text, fileName string) models.Portfolio
}

type ServiceConfig struct {
	MaxFileSize int64
}

type PortfolioService struct {
	processors ProcessorRegistry
	parser     Parser
	store      store.PortfolioStore
	queue      queue.Queue
	storage    storage.Storage
	logger     logger.Logger
	config     *ServiceConfig
	now        func() time.Time
}

type Option func(*PortfolioService)

// WithJobs enables SubmitUpload and GetProcessingStatus.
func WithJobs(q queue.Queue, s storage.Storage) Option {
	return func(ps *PortfolioService) {
		ps.queue = q
		ps.storage = s
	}
}

func NewService(
	processors ProcessorRegistry,
	parser Parser,
	portfolios store.PortfolioStore,
	log logger.Logger,
	cfg *ServiceConfig,
	opts ...Option,
) *PortfolioService {
	if cfg == nil {
		cfg = &ServiceConfig{MaxFileSize: 10 << 20}
	}
	s := &PortfolioService{
		processors: processors,
		parser:     parser,
		store:      portfolios,
		logger:     log.Named("portfolio"),
		config:     cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// check rejects uploads outside the size ceiling or the accepted media types.
func (s *PortfolioService) check(upload *models.Upload) error {
	if upload.Size > s.config.MaxFileSize || int64(len(upload.Data)) > s.config.MaxFileSize {
		return fmt.Errorf("%w: %d bytes", models.ErrFileTooLarge, upload.Size)
	}
	if _, ok := models.AcceptedMediaTypes[upload.MediaType]; !ok {
		return fmt.Errorf("%w: %s", models.ErrUnsupportedMediaType, upload.MediaType)
	}
	return nil
}

// Extract runs the text source and the parser without storing anything.
func (s *PortfolioService) Extract(ctx context.Context, upload *models.Upload) (models.Portfolio, error) {
	if err := s.check(upload); err != nil {
		return models.Portfolio{}, err
	}

	processor, err := s.processors.GetProcessor(upload.MediaType)
	if err != nil {
		return models.Portfolio{}, err
	}

	text, err := processor.ExtractText(ctx, bytes.NewReader(upload.Data))
	if err != nil {
		return models.Portfolio{}, err
	}
	return s.parser.Parse(text, upload.FileName), nil
}

func (s *PortfolioService) ProcessUpload(ctx context.Context, userID int64, upload *models.Upload) (*models.PortfolioRecord, error) {
	start := s.now()
	s.logger.Info("Starting resume processing",
		logger.String("filename", upload.FileName),
		logger.Int64("size", upload.Size),
		logger.String("mediaType", upload.MediaType),
	)

	data, err := s.Extract(ctx, upload)
	if err != nil {
		s.logger.Error("Resume extraction failed",
			logger.String("filename", upload.FileName),
			logger.Error(err),
		)
		return nil, err
	}

	record, err := s.store.Create(ctx, userID, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store portfolio: %w", err)
	}

	s.logger.Info("Resume processed",
		logger.Int64("portfolioId", record.ID),
		logger.String("filename", upload.FileName),
		logger.Strings("fields", data.Populated()),
		logger.Duration("elapsed", s.now().Sub(start)),
	)
	return record, nil
}

func (s *PortfolioService) GetPortfolio(ctx context.Context, id int64) (*models.PortfolioRecord, error) {
	return s.store.Get(ctx, id)
}

func (s *PortfolioService) UpdatePortfolio(ctx context.Context, id int64, data models.Portfolio) (*models.PortfolioRecord, error) {
	record, err := s.store.Update(ctx, id, data)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Portfolio updated", logger.Int64("portfolioId", id))
	return record, nil
}

func (s *PortfolioService) SubmitUpload(ctx context.Context, userID int64, upload *models.Upload) (*models.ProcessingTask, error) {
	if s.queue == nil || s.storage == nil {
		return nil, ErrJobsDisabled
	}
	if err := s.check(upload); err != nil {
		return nil, err
	}

	taskID := uuid.New().String()
	now := s.now()

	objectKey, err := s.storage.Store(ctx, bytes.NewReader(upload.Data), storage.UploadKey(taskID, upload.FileName))
	if err != nil {
		return nil, fmt.Errorf("failed to stage file: %w", err)
	}

	// pending is recorded before the task can run so a fast worker's
	// terminal status is never overwritten
	if err := s.queue.SaveStatus(ctx, &queue.TaskStatus{
		TaskID:    taskID,
		Status:    string(models.StatusPending),
		FileName:  upload.FileName,
		StartedAt: now,
	}); err != nil {
		s.removeStaged(ctx, objectKey)
		return nil, fmt.Errorf("failed to save task status: %w", err)
	}

	task := &queue.Task{
		ID:        taskID,
		UserID:    userID,
		ObjectKey: objectKey,
		FileName:  upload.FileName,
		MediaType: upload.MediaType,
		Size:      upload.Size,
		CreatedAt: now,
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		s.logger.Error("Failed to enqueue task",
			logger.String("taskId", taskID),
			logger.Error(err),
		)
		if statusErr := s.queue.SaveStatus(ctx, &queue.TaskStatus{
			TaskID:     taskID,
			Status:     string(models.StatusFailed),
			Error:      err.Error(),
			FileName:   upload.FileName,
			StartedAt:  now,
			FinishedAt: s.now(),
		}); statusErr != nil {
			s.logger.Warn("Failed to mark task failed", logger.String("taskId", taskID), logger.Error(statusErr))
		}
		s.removeStaged(ctx, objectKey)
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	s.logger.Info("Resume extraction task created",
		logger.String("taskId", task.ID),
		logger.String("filename", upload.FileName),
	)

	return &models.ProcessingTask{
		ID:       task.ID,
		Status:   models.StatusPending,
		Type:     queue.TaskTypeResumeExtract,
		Progress: 0,
		Metadata: map[string]string{
			"filename":  upload.FileName,
			"size":      strconv.FormatInt(upload.Size, 10),
			"mediaType": upload.MediaType,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PortfolioService) GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error) {
	if s.queue == nil {
		return nil, ErrJobsDisabled
	}
	status, err := s.queue.GetTaskStatus(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task status: %w", err)
	}

	var taskStatus models.ProcessingStatus
	switch status.Status {
	case "running", "active":
		taskStatus = models.StatusRunning
	case "completed":
		taskStatus = models.StatusCompleted
	case "failed":
		taskStatus = models.StatusFailed
	default:
		taskStatus = models.StatusPending
	}

	task := &models.ProcessingTask{
		ID:          status.TaskID,
		Status:      taskStatus,
		Type:        queue.TaskTypeResumeExtract,
		Progress:    status.Progress,
		Error:       status.Error,
		PortfolioID: status.PortfolioID,
		CreatedAt:   status.StartedAt,
		UpdatedAt:   status.FinishedAt,
	}
	if status.FileName != "" {
		task.Metadata = map[string]string{"filename": status.FileName}
	}
	return task, nil
}

func (s *PortfolioService) removeStaged(ctx context.Context, key string) {
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.Warn("Failed to remove staged file", logger.String("key", key), logger.Error(err))
	}
}
