package image

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"

	"github.com/feichai0017/resume-portfolio/internal/agent/document"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

// TextractAPI is the part of the Textract client the processor uses.
type TextractAPI interface {
	DetectDocumentText(ctx context.Context, params *textract.DetectDocumentTextInput, optFns ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error)
}

type TextractConfig struct {
	Region    string
	AccessKey string
	SecretKey string
}

// TextractProcessor recognises text in images with AWS Textract.
type TextractProcessor struct {
	client TextractAPI
	logger logger.Logger
}

func NewTextractProcessor(ctx context.Context, cfg *TextractConfig, log logger.Logger) (*TextractProcessor, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	// without static keys the default credential chain applies
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS config: %w", err)
	}

	return NewTextractProcessorWithClient(textract.NewFromConfig(awsCfg), log), nil
}

func NewTextractProcessorWithClient(client TextractAPI, log logger.Logger) *TextractProcessor {
	return &TextractProcessor{
		client: client,
		logger: log.Named("textract"),
	}
}

func (p *TextractProcessor) CanProcess(mimeType string) bool {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg", "image/png":
		return true
	default:
		return false
	}
}

// ExtractText returns the detected LINE blocks joined by newlines, in the
// order Textract returns them.
func (p *TextractProcessor) ExtractText(ctx context.Context, reader io.Reader) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", document.ExtractionError("failed to read image", err)
	}

	result, err := p.client.DetectDocumentText(ctx, &textract.DetectDocumentTextInput{
		Document: &types.Document{Bytes: data},
	})
	if err != nil {
		return "", document.ExtractionError("failed to detect document text", err)
	}

	var lines []string
	for _, block := range result.Blocks {
		if block.BlockType != types.BlockTypeLine {
			continue
		}
		if text := aws.ToString(block.Text); text != "" {
			lines = append(lines, text)
		}
	}

	p.logger.Info("Textract finished",
		logger.Int("blocks", len(result.Blocks)),
		logger.Int("lines", len(lines)),
	)
	return strings.ToValidUTF8(strings.Join(lines, "\n"), ""), nil
}

func (p *TextractProcessor) Close() error {
	return nil
}
