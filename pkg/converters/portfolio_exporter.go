package converters

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

var whitespace = regexp.MustCompile(`\s+`)

// PortfolioExporter renders stored portfolios as downloadable JSON files.
type PortfolioExporter struct {
	indent string
}

func NewPortfolioExporter() *PortfolioExporter {
	return &PortfolioExporter{indent: "  "}
}

// Export returns the indented JSON of the portfolio data. Absent fields
// are omitted.
func (e *PortfolioExporter) Export(record *models.PortfolioRecord) ([]byte, error) {
	data, err := json.MarshalIndent(record.Data, "", e.indent)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal portfolio: %w", err)
	}
	return data, nil
}

// FileName is <name>_portfolio.json with whitespace runs replaced by
// underscores, or portfolio_<id>.json when the portfolio has no name.
func (e *PortfolioExporter) FileName(record *models.PortfolioRecord) string {
	if record.Data.Name != nil {
		if name := strings.TrimSpace(*record.Data.Name); name != "" {
			name = strings.NewReplacer("/", "_", `\`, "_", `"`, "").Replace(name)
			return whitespace.ReplaceAllString(name, "_") + "_portfolio.json"
		}
	}
	return fmt.Sprintf("portfolio_%d.json", record.ID)
}
