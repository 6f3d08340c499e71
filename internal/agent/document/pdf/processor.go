package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"

	"github.com/feichai0017/resume-portfolio/internal/agent/document"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

const (
	maxWorkers = 4
	// a horizontal gap wider than this share of the font size separates words
	wordGapRatio = 0.25
	// a vertical gap taller than this multiple of the font size ends a paragraph
	paragraphGapRatio = 1.8
	defaultFontSize   = 10
)

type Processor struct {
	logger logger.Logger
}

func NewProcessor(log logger.Logger) *Processor {
	return &Processor{
		logger: log.Named("pdf"),
	}
}

func (p *Processor) CanProcess(mimeType string) bool {
	return mimeType == "application/pdf"
}

func (p *Processor) ExtractText(ctx context.Context, file io.Reader) (text string, err error) {
	content, err := io.ReadAll(file)
	if err != nil {
		return "", document.ExtractionError("failed to read pdf", err)
	}

	// the pdf decoder panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			text, err = "", document.ExtractionError("failed to decode pdf", fmt.Errorf("%v", r))
		}
	}()

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", document.ExtractionError("failed to open pdf", err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, numPages)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for i := 1; i <= numPages; i++ {
		pageNum := i
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("page %d: %v", pageNum, r)
				}
			}()
			if ctx.Err() != nil {
				return ctx.Err()
			}

			page := pdfReader.Page(pageNum)
			if page.V.IsNull() {
				return nil
			}

			rows, err := page.GetTextByRow()
			if err == nil {
				pages[pageNum-1] = joinRows(rows)
				return nil
			}

			p.logger.Debug("Row extraction failed, falling back to plain text",
				logger.Int("page", pageNum),
				logger.Error(err),
			)
			plain, err := page.GetPlainText(nil)
			if err != nil {
				return fmt.Errorf("failed to get text from page %d: %w", pageNum, err)
			}
			pages[pageNum-1] = plain
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return "", document.ExtractionError("failed to extract pdf text", err)
	}

	var kept []string
	for _, page := range pages {
		if page = strings.TrimSpace(page); page != "" {
			kept = append(kept, page)
		}
	}

	p.logger.Debug("PDF text extracted",
		logger.Int("pages", numPages),
		logger.Int("bytes", len(content)),
	)
	return strings.ToValidUTF8(strings.Join(kept, "\n\n"), ""), nil
}

// joinRows renders rows top to bottom. Glyph runs within a row are joined,
// with a space wherever the horizontal gap looks like a word break.
func joinRows(rows pdf.Rows) string {
	var b strings.Builder
	var prevY, prevSize float64
	for _, row := range rows {
		if row == nil || len(row.Content) == 0 {
			continue
		}
		line, size := joinRow(row.Content)
		if strings.TrimSpace(line) == "" {
			continue
		}

		y := float64(row.Position)
		if b.Len() > 0 {
			b.WriteByte('\n')
			if math.Abs(prevY-y) > paragraphGapRatio*math.Max(size, prevSize) {
				b.WriteByte('\n')
			}
		}
		b.WriteString(strings.TrimRight(line, " \t"))
		prevY, prevSize = y, size
	}
	return b.String()
}

func joinRow(texts pdf.TextHorizontal) (string, float64) {
	var b strings.Builder
	size := 0.0
	var prev *pdf.Text
	for i := range texts {
		t := &texts[i]
		size = math.Max(size, t.FontSize)
		if prev != nil && t.S != "" {
			gap := t.X - (prev.X + prev.W)
			fs := t.FontSize
			if fs <= 0 {
				fs = defaultFontSize
			}
			if gap > wordGapRatio*fs &&
				!strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(t.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(t.S)
		prev = t
	}
	if size <= 0 {
		size = defaultFontSize
	}
	return b.String(), size
}

func (p *Processor) Close() error {
	return nil
}
