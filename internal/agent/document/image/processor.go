package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/feichai0017/resume-portfolio/internal/agent/document"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

// Recognition stages reported through ProgressFunc.
const (
	StageDecode     = "decode"
	StagePreprocess = "preprocess"
	StageRecognize  = "recognize"
	StageDone       = "done"
)

// ProgressFunc receives advisory progress notifications in [0, 1].
type ProgressFunc func(stage string, progress float64)

// Processor recognises text in raster images with Tesseract.
type Processor struct {
	logger        logger.Logger
	preprocessors []ImagePreprocessor
	config        *ProcessOptions
}

type ProcessOptions struct {
	Languages   []string
	PageSegMode gosseract.PageSegMode
	// MinWidth upscales narrower images before recognition; 0 disables it.
	MinWidth        int
	Contrast        float64
	SharpenStrength float64
	Progress        ProgressFunc
}

func DefaultProcessOptions() *ProcessOptions {
	return &ProcessOptions{
		Languages:       []string{"eng"},
		PageSegMode:     gosseract.PSM_AUTO,
		MinWidth:        1000,
		Contrast:        20,
		SharpenStrength: 0.5,
	}
}

func NewProcessor(log logger.Logger, opts *ProcessOptions) (*Processor, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if opts == nil {
		opts = DefaultProcessOptions()
	}
	if len(opts.Languages) == 0 {
		opts.Languages = []string{"eng"}
	}

	preprocessors := []ImagePreprocessor{
		NewUpscaleProcessor(opts.MinWidth),
		NewGrayscaleProcessor(),
		NewContrastNormalizationProcessor(opts.Contrast),
		NewSharpenProcessor(opts.SharpenStrength),
	}

	return &Processor{
		logger:        log.Named("tesseract"),
		preprocessors: preprocessors,
		config:        opts,
	}, nil
}

func (p *Processor) CanProcess(mimeType string) bool {
	switch mimeType {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	default:
		return false
	}
}

func (p *Processor) progress(stage string, value float64) {
	p.logger.Debug("OCR progress", logger.String("stage", stage), logger.Float64("progress", value))
	if p.config.Progress != nil {
		p.config.Progress(stage, value)
	}
}

// ExtractText decodes, preprocesses and recognises the image. Low confidence
// text is returned as is.
func (p *Processor) ExtractText(ctx context.Context, file io.Reader) (string, error) {
	p.progress(StageDecode, 0)
	img, err := imaging.Decode(file, imaging.AutoOrientation(true))
	if err != nil {
		return "", document.ExtractionError("failed to decode image", err)
	}

	p.progress(StagePreprocess, 0.2)
	processed, err := applyPreprocessing(img, p.preprocessors)
	if err != nil {
		return "", document.ExtractionError("failed to preprocess image", err)
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, processed, imaging.PNG); err != nil {
		return "", document.ExtractionError("failed to encode image", err)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.progress(StageRecognize, 0.4)
	text, confidence, err := p.recognize(buf.Bytes())
	if err != nil {
		return "", document.ExtractionError("failed to recognise text", err)
	}

	p.logger.Info("OCR finished",
		logger.Int("characters", len(text)),
		logger.Float64("mean_confidence", confidence),
	)
	p.progress(StageDone, 1)
	return strings.ToValidUTF8(text, ""), nil
}

// recognize runs one Tesseract pass. A new client per call keeps
// concurrent uploads independent.
func (p *Processor) recognize(data []byte) (string, float64, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(p.config.Languages...); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetPageSegMode(p.config.PageSegMode); err != nil {
		return "", 0, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to get text: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		p.logger.Warn("Failed to get bounding boxes", logger.Error(err))
		return text, 0, nil
	}
	return text, meanConfidence(boxes), nil
}

func meanConfidence(boxes []gosseract.BoundingBox) float64 {
	if len(boxes) == 0 {
		return 0
	}
	total := 0.0
	for _, box := range boxes {
		total += box.Confidence
	}
	return total / float64(len(boxes))
}

func (p *Processor) Close() error {
	return nil
}
