package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/internal/service/portfolio"
	"github.com/feichai0017/resume-portfolio/internal/utils/validator"
	"github.com/feichai0017/resume-portfolio/pkg/converters"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

const (
	msgNoFile           = "No file uploaded"
	msgUnsupported      = "Unsupported file format. Please upload a PDF, JPG, or PNG file."
	msgTooLarge         = "File is too large. Maximum size is 10MB."
	msgUnreadable       = "Could not read text from the uploaded file. Please try again with a different file."
	msgInvalidID        = "Invalid portfolio ID"
	msgNotFound         = "Portfolio not found"
	msgInvalidPortfolio = "Invalid portfolio data"
	msgTaskNotFound     = "Task not found"
	msgJobsDisabled     = "Async processing is disabled"

	// multipart framing allowance on top of the file ceiling
	multipartOverhead = 1 << 20
)

type PortfolioHandler struct {
	service       portfolio.Service
	validator     *validator.UploadValidator
	exporter      *converters.PortfolioExporter
	defaultUserID int64
	logger        logger.Logger
}

type UploadResponse struct {
	Message     string           `json:"message"`
	PortfolioID int64            `json:"portfolioId"`
	Data        models.Portfolio `json:"data"`
}

type PortfolioResponse struct {
	Portfolio *models.PortfolioRecord `json:"portfolio"`
}

type UpdatePortfolioRequest struct {
	Data *models.Portfolio `json:"data" binding:"required"`
}

type UpdatePortfolioResponse struct {
	Message   string                  `json:"message"`
	Portfolio *models.PortfolioRecord `json:"portfolio"`
}

// ProcessResponse acknowledges an accepted extraction job.
type ProcessResponse struct {
	TaskID    string `json:"taskId"`
	Status    string `json:"status"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"fileSize"`
	FileType  string `json:"fileType"`
	CreatedAt string `json:"createdAt"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func NewPortfolioHandler(
	service portfolio.Service,
	uploadValidator *validator.UploadValidator,
	exporter *converters.PortfolioExporter,
	defaultUserID int64,
	logger logger.Logger,
) *PortfolioHandler {
	return &PortfolioHandler{
		service:       service,
		validator:     uploadValidator,
		exporter:      exporter,
		defaultUserID: defaultUserID,
		logger:        logger.Named("handler"),
	}
}

// UploadResume extracts a portfolio from the multipart "file" field and
// stores it.
func (h *PortfolioHandler) UploadResume(c *gin.Context) {
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}

	record, err := h.service.ProcessUpload(c.Request.Context(), h.defaultUserID, upload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, UploadResponse{
		Message:     "Resume processed successfully",
		PortfolioID: record.ID,
		Data:        record.Data,
	})
}

// SubmitResume queues the upload for the worker and answers immediately.
func (h *PortfolioHandler) SubmitResume(c *gin.Context) {
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}

	task, err := h.service.SubmitUpload(c.Request.Context(), h.defaultUserID, upload)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, ProcessResponse{
		TaskID:    task.ID,
		Status:    string(task.Status),
		Filename:  upload.FileName,
		FileSize:  upload.Size,
		FileType:  upload.MediaType,
		CreatedAt: formatTime(task.CreatedAt),
	})
}

func (h *PortfolioHandler) GetJobStatus(c *gin.Context) {
	taskID := c.Param("taskId")
	if taskID == "" {
		h.handleError(c, http.StatusBadRequest, "Task ID is required", nil)
		return
	}

	task, err := h.service.GetProcessingStatus(c.Request.Context(), taskID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"taskId":      task.ID,
		"status":      string(task.Status),
		"progress":    task.Progress,
		"error":       task.Error,
		"portfolioId": task.PortfolioID,
		"createdAt":   formatTime(task.CreatedAt),
		"updatedAt":   formatTime(task.UpdatedAt),
	})
}

func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	id, ok := h.portfolioID(c)
	if !ok {
		return
	}

	record, err := h.service.GetPortfolio(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, PortfolioResponse{Portfolio: record})
}

func (h *PortfolioHandler) UpdatePortfolio(c *gin.Context) {
	id, ok := h.portfolioID(c)
	if !ok {
		return
	}

	var req UpdatePortfolioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, http.StatusBadRequest, msgInvalidPortfolio, fmt.Errorf("%w: %w", models.ErrInvalidPortfolio, err))
		return
	}

	record, err := h.service.UpdatePortfolio(c.Request.Context(), id, *req.Data)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, UpdatePortfolioResponse{
		Message:   "Portfolio updated successfully",
		Portfolio: record,
	})
}

// DownloadPortfolio sends the portfolio as a JSON attachment.
func (h *PortfolioHandler) DownloadPortfolio(c *gin.Context) {
	id, ok := h.portfolioID(c)
	if !ok {
		return
	}

	record, err := h.service.GetPortfolio(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	data, err := h.exporter.Export(record)
	if err != nil {
		h.handleError(c, http.StatusInternalServerError, "Failed to serialize portfolio", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.exporter.FileName(record)))
	c.Data(http.StatusOK, "application/json", data)
}

func (h *PortfolioHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readUpload enforces the size ceiling and the media type allow-list before
// anything reaches a text source.
func (h *PortfolioHandler) readUpload(c *gin.Context) (*models.Upload, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.validator.MaxFileSize()+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.handleError(c, http.StatusRequestEntityTooLarge, msgTooLarge, err)
			return nil, false
		}
		h.handleError(c, http.StatusBadRequest, msgNoFile, err)
		return nil, false
	}

	upload, err := h.validator.ValidateFile(header)
	if err != nil {
		h.handleServiceError(c, err)
		return nil, false
	}
	return upload, true
}

func (h *PortfolioHandler) portfolioID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		h.handleError(c, http.StatusBadRequest, msgInvalidID, err)
		return 0, false
	}
	return id, true
}

// handleServiceError maps the error taxonomy onto status codes.
func (h *PortfolioHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrUnsupportedMediaType):
		h.handleError(c, http.StatusBadRequest, msgUnsupported, err)
	case errors.Is(err, models.ErrFileTooLarge):
		h.handleError(c, http.StatusRequestEntityTooLarge, msgTooLarge, err)
	case errors.Is(err, models.ErrExtractionFailure):
		h.handleError(c, http.StatusUnprocessableEntity, msgUnreadable, err)
	case errors.Is(err, models.ErrPortfolioNotFound):
		h.handleError(c, http.StatusNotFound, msgNotFound, err)
	case errors.Is(err, models.ErrTaskNotFound):
		h.handleError(c, http.StatusNotFound, msgTaskNotFound, err)
	case errors.Is(err, models.ErrInvalidPortfolio):
		h.handleError(c, http.StatusBadRequest, msgInvalidPortfolio, err)
	case errors.Is(err, portfolio.ErrJobsDisabled):
		h.handleError(c, http.StatusServiceUnavailable, msgJobsDisabled, err)
	default:
		h.handleError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

func (h *PortfolioHandler) handleError(c *gin.Context, status int, message string, err error) {
	log := logger.FromContext(c.Request.Context(), h.logger)
	fields := []logger.Field{
		logger.String("path", c.Request.URL.Path),
		logger.Int("status", status),
	}
	if err != nil {
		fields = append(fields, logger.Error(err))
	}
	if status >= http.StatusInternalServerError {
		log.Error(message, fields...)
	} else {
		log.Warn(message, fields...)
	}

	response := ErrorResponse{Message: message}
	if err != nil {
		response.Error = err.Error()
	}
	c.AbortWithStatusJSON(status, response)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
