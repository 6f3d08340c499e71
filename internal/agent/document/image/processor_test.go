package image

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

func TestPreprocessingPipeline(t *testing.T) {
	src := imaging.New(400, 200, color.NRGBA{R: 200, G: 30, B: 30, A: 255})

	out, err := applyPreprocessing(src, []ImagePreprocessor{
		NewUpscaleProcessor(800),
		NewGrayscaleProcessor(),
		NewContrastNormalizationProcessor(20),
		NewSharpenProcessor(0.5),
	})
	require.NoError(t, err)
	assert.Equal(t, 800, out.Bounds().Dx())
	assert.Equal(t, 400, out.Bounds().Dy())

	r, g, b, _ := out.At(10, 10).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestUpscaleLeavesWideImages(t *testing.T) {
	src := imaging.New(1200, 100, color.White)
	out, err := NewUpscaleProcessor(1000).Process(src)
	require.NoError(t, err)
	assert.Equal(t, 1200, out.Bounds().Dx())
}

func TestApplyPreprocessingRejectsNil(t *testing.T) {
	_, err := applyPreprocessing(nil, nil)
	assert.Error(t, err)
}

func TestExtractTextRejectsUndecodableImage(t *testing.T) {
	var stages []string
	opts := DefaultProcessOptions()
	opts.Progress = func(stage string, _ float64) { stages = append(stages, stage) }

	p, err := NewProcessor(logger.NewNop(), opts)
	require.NoError(t, err)

	_, err = p.ExtractText(context.Background(), bytes.NewReader([]byte("definitely not a png")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrExtractionFailure))
	assert.Equal(t, []string{StageDecode}, stages)
}

func TestProcessorCanProcess(t *testing.T) {
	p, err := NewProcessor(logger.NewNop(), nil)
	require.NoError(t, err)
	assert.True(t, p.CanProcess("image/jpeg"))
	assert.True(t, p.CanProcess("image/jpg"))
	assert.True(t, p.CanProcess("image/png"))
	assert.False(t, p.CanProcess("application/pdf"))

	_, err = NewProcessor(nil, nil)
	assert.Error(t, err)
}

func TestMeanConfidence(t *testing.T) {
	assert.Equal(t, 0.0, meanConfidence(nil))
	assert.InDelta(t, 50.0, meanConfidence([]gosseract.BoundingBox{{Confidence: 40}, {Confidence: 60}}), 0.001)
}

type fakeTextract struct {
	out *textract.DetectDocumentTextOutput
	err error
	got *textract.DetectDocumentTextInput
}

func (f *fakeTextract) DetectDocumentText(_ context.Context, in *textract.DetectDocumentTextInput, _ ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error) {
	f.got = in
	return f.out, f.err
}

func TestTextractJoinsLines(t *testing.T) {
	fake := &fakeTextract{out: &textract.DetectDocumentTextOutput{Blocks: []types.Block{
		{BlockType: types.BlockTypePage},
		{BlockType: types.BlockTypeLine, Text: aws.String("Jane Doe")},
		{BlockType: types.BlockTypeWord, Text: aws.String("Jane")},
		{BlockType: types.BlockTypeLine, Text: aws.String("Data Analyst")},
	}}}
	p := NewTextractProcessorWithClient(fake, logger.NewNop())

	text, err := p.ExtractText(context.Background(), bytes.NewReader([]byte("img")))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nData Analyst", text)
	assert.Equal(t, []byte("img"), fake.got.Document.Bytes)
}

func TestTextractWrapsFailures(t *testing.T) {
	p := NewTextractProcessorWithClient(&fakeTextract{err: errors.New("throttled")}, logger.NewNop())

	_, err := p.ExtractText(context.Background(), bytes.NewReader(nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrExtractionFailure))
	assert.Contains(t, err.Error(), "throttled")
}
