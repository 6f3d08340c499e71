package models

import (
	"time"
)

// FileType is the broad family of an accepted upload.
type FileType string

const (
	PDF   FileType = "pdf"
	Image FileType = "image"
)

// Accepted media types and the file family each belongs to.
var AcceptedMediaTypes = map[string]FileType{
	"application/pdf": PDF,
	"image/jpeg":      Image,
	"image/jpg":       Image,
	"image/png":       Image,
}

// ProcessingTask tracks an asynchronous extraction job.
type ProcessingTask struct {
	ID          string            `json:"taskId"`
	Status      ProcessingStatus  `json:"status"`
	Type        string            `json:"type"`
	Progress    float64           `json:"progress"`
	Error       string            `json:"error,omitempty"`
	PortfolioID int64             `json:"portfolioId,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt,omitempty"`
}

type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "pending"
	StatusRunning   ProcessingStatus = "running"
	StatusCompleted ProcessingStatus = "completed"
	StatusFailed    ProcessingStatus = "failed"
)
