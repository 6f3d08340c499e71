package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

func glyphs(x, y, size float64, words ...string) *pdf.Row {
	row := &pdf.Row{Position: int64(y)}
	for _, w := range words {
		for _, r := range w {
			row.Content = append(row.Content, pdf.Text{S: string(r), X: x, Y: y, W: size * 0.5, FontSize: size})
			x += size * 0.5
		}
		x += size
	}
	return row
}

func TestJoinRows(t *testing.T) {
	rows := pdf.Rows{
		glyphs(50, 700, 12, "Jane", "Doe"),
		glyphs(50, 686, 10, "Software", "Engineer"),
		glyphs(50, 640, 10, "Experience"),
	}

	assert.Equal(t, "Jane Doe\nSoftware Engineer\n\nExperience", joinRows(rows))
}

func TestJoinRowsSkipsEmptyRows(t *testing.T) {
	rows := pdf.Rows{
		glyphs(50, 700, 10, "Skills"),
		nil,
		{Position: 690},
		glyphs(50, 688, 10, "Go,", "SQL"),
	}

	assert.Equal(t, "Skills\nGo, SQL", joinRows(rows))
}

func TestJoinRowKeepsExistingSpaces(t *testing.T) {
	line, size := joinRow(pdf.TextHorizontal{
		{S: "Hello ", X: 0, W: 30, FontSize: 10},
		{S: "world", X: 40, W: 25, FontSize: 10},
	})
	assert.Equal(t, "Hello world", line)
	assert.Equal(t, 10.0, size)
}

func TestExtractTextRejectsCorruptInput(t *testing.T) {
	p := NewProcessor(logger.NewNop())

	for _, input := range []string{"", "not a pdf at all", "%PDF-1.4\n%%EOF"} {
		text, err := p.ExtractText(context.Background(), strings.NewReader(input))
		require.Error(t, err)
		assert.True(t, errors.Is(err, models.ErrExtractionFailure))
		assert.Empty(t, text)
	}
}

func TestCanProcess(t *testing.T) {
	p := NewProcessor(logger.NewNop())
	assert.True(t, p.CanProcess("application/pdf"))
	assert.False(t, p.CanProcess("image/png"))
	assert.NoError(t, p.Close())
}
