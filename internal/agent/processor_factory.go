package agent

import (
	"context"
	"fmt"
	"strings"

	cfg "github.com/feichai0017/resume-portfolio/config"
	"github.com/feichai0017/resume-portfolio/internal/agent/document"
	"github.com/feichai0017/resume-portfolio/internal/agent/document/image"
	"github.com/feichai0017/resume-portfolio/internal/agent/document/pdf"
	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

type ProcessorFactory struct {
	processors map[string]document.Processor
	logger     logger.Logger
}

// NewProcessorFactory registers the PDF processor and the image processor
// selected by ocr.engine.
func NewProcessorFactory(ctx context.Context, conf *cfg.Config, log logger.Logger) (*ProcessorFactory, error) {
	var imageProcessor document.Processor
	switch conf.OCR.Engine {
	case cfg.EngineTextract:
		textractProcessor, err := image.NewTextractProcessor(ctx, &image.TextractConfig{
			Region:    conf.Textract.Region,
			AccessKey: conf.Textract.AccessKey,
			SecretKey: conf.Textract.SecretKey,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create textract processor: %w", err)
		}
		imageProcessor = textractProcessor
	default:
		opts := image.DefaultProcessOptions()
		opts.Languages = conf.OCR.Languages
		opts.MinWidth = conf.OCR.MinWidth
		tesseractProcessor, err := image.NewProcessor(log, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to create image processor: %w", err)
		}
		imageProcessor = tesseractProcessor
	}

	return NewProcessorFactoryWith(log, pdf.NewProcessor(log), imageProcessor), nil
}

// NewProcessorFactoryWith registers each processor for every accepted media
// type it can handle.
func NewProcessorFactoryWith(log logger.Logger, processors ...document.Processor) *ProcessorFactory {
	factory := &ProcessorFactory{
		processors: make(map[string]document.Processor),
		logger:     log,
	}
	for mimeType := range models.AcceptedMediaTypes {
		for _, p := range processors {
			if p.CanProcess(mimeType) {
				factory.processors[mimeType] = p
				break
			}
		}
	}
	return factory
}

// GetProcessor returns the processor for an accepted media type.
func (f *ProcessorFactory) GetProcessor(mimeType string) (document.Processor, error) {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if _, ok := models.AcceptedMediaTypes[mimeType]; !ok {
		f.logger.Warn("Unsupported media type", logger.String("mimeType", mimeType))
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedMediaType, mimeType)
	}

	processor, ok := f.processors[mimeType]
	if !ok {
		f.logger.Error("No processor found", logger.String("mimeType", mimeType))
		return nil, fmt.Errorf("%w: no processor for %s", models.ErrUnsupportedMediaType, mimeType)
	}
	return processor, nil
}

// Close releases every registered processor once.
func (f *ProcessorFactory) Close() error {
	seen := make(map[document.Processor]bool)
	var firstErr error
	for _, p := range f.processors {
		if seen[p] {
			continue
		}
		seen[p] = true
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
