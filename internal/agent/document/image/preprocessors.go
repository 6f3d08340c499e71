package image

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ImagePreprocessor transforms an image before recognition.
type ImagePreprocessor interface {
	Process(img image.Image) (image.Image, error)
}

type GrayscaleProcessor struct{}

func NewGrayscaleProcessor() *GrayscaleProcessor {
	return &GrayscaleProcessor{}
}

func (p *GrayscaleProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Grayscale(img), nil
}

// ContrastNormalizationProcessor stretches contrast by a percentage in
// [-100, 100].
type ContrastNormalizationProcessor struct {
	amount float64
}

func NewContrastNormalizationProcessor(amount float64) *ContrastNormalizationProcessor {
	return &ContrastNormalizationProcessor{amount: amount}
}

func (p *ContrastNormalizationProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.AdjustContrast(img, p.amount), nil
}

type SharpenProcessor struct {
	strength float64
}

func NewSharpenProcessor(strength float64) *SharpenProcessor {
	return &SharpenProcessor{strength: strength}
}

func (p *SharpenProcessor) Process(img image.Image) (image.Image, error) {
	return imaging.Sharpen(img, p.strength), nil
}

// UpscaleProcessor enlarges narrow scans, which Tesseract reads poorly.
type UpscaleProcessor struct {
	minWidth int
}

func NewUpscaleProcessor(minWidth int) *UpscaleProcessor {
	return &UpscaleProcessor{minWidth: minWidth}
}

func (p *UpscaleProcessor) Process(img image.Image) (image.Image, error) {
	w := img.Bounds().Dx()
	if w == 0 || p.minWidth <= 0 || w >= p.minWidth {
		return img, nil
	}
	return imaging.Resize(img, p.minWidth, 0, imaging.Lanczos), nil
}

// applyPreprocessing runs the pipeline in order.
func applyPreprocessing(img image.Image, preprocessors []ImagePreprocessor) (image.Image, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	var err error
	result := img
	for _, processor := range preprocessors {
		result, err = processor.Process(result)
		if err != nil {
			return nil, fmt.Errorf("preprocessing failed: %w", err)
		}
		if result == nil {
			return nil, fmt.Errorf("preprocessor returned nil image")
		}
	}
	return result, nil
}
