package document

import (
	"context"
	"fmt"
	"io"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

// Processor turns one uploaded document into plain text.
type Processor interface {
	// CanProcess reports whether the processor accepts the media type.
	CanProcess(mimeType string) bool

	// ExtractText reads the whole document and returns its text. The result
	// is valid UTF-8 and may be empty. No partial text is returned with an error.
	ExtractText(ctx context.Context, reader io.Reader) (string, error)

	// Close releases engine resources.
	Close() error
}

// ExtractionError wraps a decoder or engine failure so callers can match it
// with errors.Is(err, models.ErrExtractionFailure).
func ExtractionError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrExtractionFailure, step, err)
}
