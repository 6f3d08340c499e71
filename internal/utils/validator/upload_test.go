package validator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n0000")

func TestValidateAcceptsAllowedTypes(t *testing.T) {
	v := NewUploadValidator(logger.NewNop(), nil)

	tests := []struct {
		name     string
		fileName string
		declared string
		data     []byte
		want     string
	}{
		{"declared pdf", "cv.pdf", "application/pdf", []byte("%PDF-1.7"), "application/pdf"},
		{"declared with params", "cv.png", "image/png; charset=binary", pngHeader, "image/png"},
		{"jpg alias", "cv.jpg", "image/jpg", []byte{0xff, 0xd8, 0xff}, "image/jpg"},
		{"octet stream uses extension", "scan.JPEG", "application/octet-stream", []byte{0xff, 0xd8, 0xff}, "image/jpeg"},
		{"missing type sniffs content", "upload", "", pngHeader, "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			upload, err := v.Validate(tt.fileName, tt.declared, bytes.NewReader(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, upload.MediaType)
			assert.Equal(t, tt.fileName, upload.FileName)
			assert.Equal(t, int64(len(tt.data)), upload.Size)
			assert.Equal(t, tt.data, upload.Data)
		})
	}
}

func TestValidateRejectsUnsupportedType(t *testing.T) {
	v := NewUploadValidator(logger.NewNop(), nil)

	_, err := v.Validate("notes.txt", "text/plain", strings.NewReader("hello"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnsupportedMediaType))

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "INVALID_FILE_TYPE", verr.Code)

	_, err = v.Validate("notes", "", strings.NewReader("plain words"))
	assert.True(t, errors.Is(err, models.ErrUnsupportedMediaType))
}

func TestValidateRejectsOversizedFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxFileSize = 8
	v := NewUploadValidator(logger.NewNop(), cfg)

	_, err := v.Validate("cv.pdf", "application/pdf", bytes.NewReader(make([]byte, 9)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrFileTooLarge))

	upload, err := v.Validate("cv.pdf", "application/pdf", bytes.NewReader(make([]byte, 8)))
	require.NoError(t, err)
	assert.Equal(t, int64(8), upload.Size)
}

func TestDefaultCeilingIsTenMegabytes(t *testing.T) {
	v := NewUploadValidator(logger.NewNop(), nil)
	assert.Equal(t, int64(10*1024*1024), v.MaxFileSize())
}
