package validator

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

const DefaultMaxFileSize = 10 << 20

// UploadValidator enforces the size ceiling and the media type allow-list
// before a document reaches extraction.
type UploadValidator struct {
	logger logger.Logger
	config *ValidatorConfig
}

type ValidatorConfig struct {
	MaxFileSize int64
	// AllowedTypes maps accepted media types to their file family.
	AllowedTypes map[string]models.FileType
	// Extensions resolves uploads declared as application/octet-stream.
	Extensions map[string]string
}

// ValidationError describes a rejected upload. It unwraps to a models
// sentinel so handlers can map it with errors.Is.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	err     error
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.err }

// FileInfo summarises an accepted upload for logging.
type FileInfo struct {
	Filename  string `json:"filename"`
	Size      int64  `json:"size"`
	MimeType  string `json:"mimeType"`
	Extension string `json:"extension"`
	Hash      string `json:"hash"`
}

func DefaultConfig() *ValidatorConfig {
	return &ValidatorConfig{
		MaxFileSize:  DefaultMaxFileSize,
		AllowedTypes: models.AcceptedMediaTypes,
		Extensions: map[string]string{
			".pdf":  "application/pdf",
			".jpg":  "image/jpeg",
			".jpeg": "image/jpeg",
			".png":  "image/png",
		},
	}
}

func NewUploadValidator(log logger.Logger, config *ValidatorConfig) *UploadValidator {
	if config == nil {
		config = DefaultConfig()
	}
	return &UploadValidator{
		logger: log,
		config: config,
	}
}

// MaxFileSize is the configured ceiling in bytes.
func (v *UploadValidator) MaxFileSize() int64 {
	return v.config.MaxFileSize
}

// ValidateFile checks a multipart upload and reads it into memory.
func (v *UploadValidator) ValidateFile(file *multipart.FileHeader) (*models.Upload, error) {
	if err := v.checkSize(file.Size); err != nil {
		return nil, err
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return v.Validate(file.Filename, file.Header.Get("Content-Type"), f)
}

// Validate reads at most one byte past the ceiling from r, so an oversized
// body is rejected without being buffered whole.
func (v *UploadValidator) Validate(fileName, declaredType string, r io.Reader) (*models.Upload, error) {
	data, err := io.ReadAll(io.LimitReader(r, v.config.MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if err := v.checkSize(int64(len(data))); err != nil {
		return nil, err
	}

	mediaType := v.ResolveMediaType(declaredType, fileName, data)
	if _, ok := v.config.AllowedTypes[mediaType]; !ok {
		v.logger.Warn("Rejected upload",
			logger.String("filename", fileName),
			logger.String("declaredType", declaredType),
			logger.String("mimeType", mediaType),
		)
		return nil, &ValidationError{
			Code:    "INVALID_FILE_TYPE",
			Message: fmt.Sprintf("file type %q is not allowed", mediaType),
			Field:   "file",
			err:     models.ErrUnsupportedMediaType,
		}
	}

	info := FileInfo{
		Filename:  fileName,
		Size:      int64(len(data)),
		MimeType:  mediaType,
		Extension: strings.ToLower(filepath.Ext(fileName)),
		Hash:      hash(data),
	}
	v.logger.Debug("Upload accepted",
		logger.String("filename", info.Filename),
		logger.Int64("size", info.Size),
		logger.String("mimeType", info.MimeType),
		logger.String("hash", info.Hash),
	)

	return &models.Upload{
		FileName:  fileName,
		MediaType: mediaType,
		Size:      info.Size,
		Data:      data,
	}, nil
}

func (v *UploadValidator) checkSize(size int64) error {
	if size > v.config.MaxFileSize {
		return &ValidationError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("file size exceeds maximum limit of %d bytes", v.config.MaxFileSize),
			Field:   "size",
			err:     models.ErrFileTooLarge,
		}
	}
	return nil
}

// ResolveMediaType trusts the declared type unless it is missing or
// generic, then falls back to the extension and finally to content sniffing.
func (v *UploadValidator) ResolveMediaType(declared, fileName string, head []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil &&
		mediaType != "" && mediaType != "application/octet-stream" {
		return strings.ToLower(mediaType)
	}
	if mediaType, ok := v.config.Extensions[strings.ToLower(filepath.Ext(fileName))]; ok {
		return mediaType
	}
	if len(head) == 0 {
		return ""
	}
	sniffed, _, _ := mime.ParseMediaType(http.DetectContentType(head))
	return sniffed
}

func hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
