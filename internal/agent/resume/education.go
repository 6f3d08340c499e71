package resume

import (
	"regexp"
	"strings"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

const (
	maxEducation           = 2
	degreePlaceholder      = "Degree"
	institutionPlaceholder = "Institution"
)

const (
	fieldPhrase      = `(?:[ \t]+(?:of|in)[ \t]+[A-Z][A-Za-z&]*(?:[ \t]+(?:[A-Z][A-Za-z&]*|and|of|&))*)?`
	institutionNouns = `University|College|School|Institute|Academy`
)

var (
	institutionNoun = regexp.MustCompile(`\b(?:` + institutionNouns + `)\b`)

	degreeRules = []rule{
		{
			re:        regexp.MustCompile(`\b((?:Bachelor|Master|Associate|Doctor)(?:'?s)?(?:[ \t]+(?:of|in)[ \t]+(?:Science|Arts|Engineering|Business Administration|Fine Arts|Philosophy))?` + fieldPhrase + `)`),
			group:     1,
			transform: trimConnectors,
		},
		{
			re:        regexp.MustCompile(`\b((?:Ph\.?D|B\.?Sc|M\.?Sc|B\.?S|M\.?S|B\.?A|M\.?A|MBA|B\.?Eng|M\.?Eng|B\.?Tech|M\.?Tech|Diploma)\.?` + fieldPhrase + `)(?:[^A-Za-z]|$)`),
			group:     1,
			transform: trimConnectors,
		},
		{
			re:        regexp.MustCompile(`\b([A-Z][A-Za-z&]*(?:[ \t]+[A-Z][A-Za-z&]*)*[ \t]+(?:in|of)[ \t]+[A-Z][A-Za-z&]*(?:[ \t]+(?:[A-Z][A-Za-z&]*|and|&))*)`),
			group:     1,
			transform: trimConnectors,
			accept:    func(v string) bool { return !institutionNoun.MatchString(v) },
		},
	}

	institutionRules = []rule{
		{
			re:        regexp.MustCompile(`\b(?:at|from)[ \t]+([A-Z][A-Za-z&.'\-]*(?:[ \t]+(?:[A-Z][A-Za-z&.'\-]*|of|and|the|for|&))*)`),
			group:     1,
			transform: trimConnectors,
		},
		{
			re:        regexp.MustCompile(`((?:[A-Z][A-Za-z&.'\-]*[ \t]+){0,4}(?:` + institutionNouns + `)\b(?:[ \t]+(?:of|for|and|the|at|in|&|[A-Z][A-Za-z&.'\-]*))*)`),
			group:     1,
			transform: trimConnectors,
		},
	}
)

// ExtractEducation parses up to two degree entries from the education
// section.
func ExtractEducation(text string) ([]models.Education, bool) {
	section, ok := Locate(text, Education)
	if !ok {
		return nil, false
	}

	var out []models.Education
	for _, entry := range splitEntries(section) {
		institution, _ := firstMatch(entry, institutionRules...)
		degree, _ := firstMatch(removeFirst(entry, institution), degreeRules...)
		if degree == "" && institution == "" {
			continue
		}
		duration, _ := firstMatch(entry, durationRules...)

		var description *string
		if rest := fragments(removeFirst(entry, degree, institution, duration), minFragmentLen, maxFragmentLen); len(rest) > 0 {
			description = models.StringPtr(strings.Join(rest, " "))
		}
		if degree == "" {
			degree = degreePlaceholder
		}
		if institution == "" {
			institution = institutionPlaceholder
		}

		out = append(out, models.Education{
			Degree:      degree,
			Institution: institution,
			Duration:    duration,
			Description: description,
		})
		if len(out) == maxEducation {
			break
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
