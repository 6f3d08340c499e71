package portfolio

import (
	"context"
	"errors"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

// ErrJobsDisabled is returned by the async methods when no queue is wired.
var ErrJobsDisabled = errors.New("async extraction jobs are disabled")

// Service turns uploaded resumes into stored portfolios and edits them.
type Service interface {
	// ProcessUpload extracts a portfolio from upload and stores it for userID.
	ProcessUpload(ctx context.Context, userID int64, upload *models.Upload) (*models.PortfolioRecord, error)
	GetPortfolio(ctx context.Context, id int64) (*models.PortfolioRecord, error)
	UpdatePortfolio(ctx context.Context, id int64, data models.Portfolio) (*models.PortfolioRecord, error)

	// SubmitUpload stages upload and enqueues its extraction.
	SubmitUpload(ctx context.Context, userID int64, upload *models.Upload) (*models.ProcessingTask, error)
	GetProcessingStatus(ctx context.Context, taskID string) (*models.ProcessingTask, error)
}

var _ Service = (*PortfolioService)(nil)
