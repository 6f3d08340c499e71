package resume

import (
	"path/filepath"
	"strings"

	"github.com/feichai0017/resume-portfolio/internal/models"
	"github.com/feichai0017/resume-portfolio/pkg/logger"
)

// Fields holds the raw result of every extractor. Nil means not found.
type Fields struct {
	Name       *string
	Title      *string
	Email      *string
	Phone      *string
	Location   *string
	Website    *string
	About      *string
	Experience []models.Experience
	Education  []models.Education
	Skills     []string
	Projects   []models.Project
}

func optional(v string, ok bool) *string {
	if !ok {
		return nil
	}
	return models.StringPtr(v)
}

// Extract runs every extractor over text. The extractors share no state, so
// the order is irrelevant.
func Extract(text string) Fields {
	text = normalize(text)

	f := Fields{
		Name:     optional(ExtractName(text)),
		Title:    optional(ExtractTitle(text)),
		Email:    optional(ExtractEmail(text)),
		Phone:    optional(ExtractPhone(text)),
		Location: optional(ExtractLocation(text)),
		Website:  optional(ExtractWebsite(text)),
		About:    optional(ExtractAbout(text)),
	}
	f.Experience, _ = ExtractExperience(text)
	f.Education, _ = ExtractEducation(text)
	f.Skills, _ = ExtractSkills(text)
	f.Projects, _ = ExtractProjects(text)
	return f
}

// Assemble copies extracted fields into a portfolio. The name is the only
// value that may be synthesised, from sourceFileName, and only when no name
// was extracted.
func Assemble(f Fields, sourceFileName string) models.Portfolio {
	p := models.Portfolio{
		Name:       f.Name,
		Title:      f.Title,
		Email:      f.Email,
		Phone:      f.Phone,
		Location:   f.Location,
		Website:    f.Website,
		About:      f.About,
		Experience: f.Experience,
		Education:  f.Education,
		Skills:     f.Skills,
		Projects:   f.Projects,
	}
	if p.Name == nil {
		p.Name = NameFromFileName(sourceFileName)
	}
	return p
}

// NameFromFileName derives a display name from an upload's file name:
// "jane_doe-resume.pdf" becomes "jane doe resume".
func NameFromFileName(fileName string) *string {
	base := filepath.Base(strings.ReplaceAll(fileName, `\`, "/"))
	if base == "." || base == "/" {
		return nil
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	name := strings.Join(strings.Fields(base), " ")
	if name == "" {
		return nil
	}
	return &name
}

// Parser turns extracted document text into a portfolio.
type Parser struct {
	logger logger.Logger
}

func NewParser(log logger.Logger) *Parser {
	if log == nil {
		log = logger.NewNop()
	}
	return &Parser{logger: log.Named("resume")}
}

// Parse extracts every field from text and assembles the portfolio.
func (p *Parser) Parse(text, fileName string) models.Portfolio {
	portfolio := Assemble(Extract(text), fileName)
	p.logger.Debug("resume parsed",
		logger.String("filename", fileName),
		logger.Int("text_length", len(text)),
		logger.Strings("fields", portfolio.Populated()),
	)
	return portfolio
}
