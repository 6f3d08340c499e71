package resume

import (
	"regexp"
	"strings"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

const (
	maxExperience       = 3
	maxHeadingLines     = 3
	maxCompanyLen       = 60
	minFragmentLen      = 10
	maxFragmentLen      = 300
	positionPlaceholder = "Professional Position"
	companyPlaceholder  = "Company"
	detailsPlaceholder  = "Details for this role were not listed in the resume."
)

const months = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	dateRange = regexp.MustCompile(`(?i)\b((?:(?:` + months + `)\.?[ \t]+|\d{1,2}/)?\d{4}[ \t]*(?:-|–|—|to)[ \t]*(?:(?:(?:` + months + `)\.?[ \t]+|\d{1,2}/)?\d{4}|present|current|now))\b`)
	dateStart = regexp.MustCompile(`(?i)\b(?:(?:` + months + `)\.?[ \t]+\d{4}|\d{1,2}/\d{4}|\d{4})\b`)

	durationRules = []rule{{re: dateRange, group: 1}}

	companyPhrase = `([A-Z0-9][A-Za-z0-9&.'\-]*(?:[ \t]+(?:[A-Z0-9&][A-Za-z0-9&.'\-]*|of|and|the|de))*)`

	companyAfterPreposition = rule{
		re:        regexp.MustCompile(`(?:\b(?:at|with|for)[ \t]+|@[ \t]*)` + companyPhrase),
		group:     1,
		transform: companyName,
		accept:    isCompany,
	}

	companyLeadingPhrase = rule{
		re:        regexp.MustCompile(`(?m)^[ \t]*([A-Z][^\n(|,–—]*?)[ \t]*(?:[(|,–—]|[ \t]-[ \t]|$)`),
		group:     1,
		transform: companyName,
		accept:    isCompany,
	}
)

// companyName cuts a captured phrase at the first date and drops dangling
// separators and connector words.
func companyName(v string) string {
	if loc := dateStart.FindStringIndex(v); loc != nil {
		v = v[:loc[0]]
	}
	return trimConnectors(strings.Trim(v, separatorTrim))
}

func isCompany(v string) bool {
	return hasLetter(v) && runeLen(v) <= maxCompanyLen && !roleNoun.MatchString(v)
}

// companyRules orders the company heuristics for an entry whose position
// is already known.
func companyRules(position string) []rule {
	rules := []rule{companyAfterPreposition}
	if position != "" {
		rules = append(rules, rule{
			re:        regexp.MustCompile(regexp.QuoteMeta(position) + `[ \t]*(?:,|\||-|–|—)[ \t]*([^\n,|()–—]+)`),
			group:     1,
			transform: companyName,
			accept:    isCompany,
		})
	}
	return append(rules, companyLeadingPhrase)
}

// heading returns the leading non-bullet lines of an entry.
func heading(entry string) string {
	var lines []string
	for _, line := range strings.Split(entry, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if bulletPrefix.MatchString(line) && hasBullet.MatchString(line) {
			break
		}
		lines = append(lines, line)
		if len(lines) == maxHeadingLines {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// ExtractExperience parses up to three work history entries from the
// experience section.
func ExtractExperience(text string) ([]models.Experience, bool) {
	section, ok := Locate(text, Experience)
	if !ok {
		return nil, false
	}

	var out []models.Experience
	for _, entry := range splitEntries(section) {
		head := heading(entry)

		position, _ := firstMatch(head, titleRules...)
		if position == "" {
			position, _ = firstMatch(entry, titleRules...)
		}
		company, _ := firstMatch(head, companyRules(position)...)
		if position == "" && company == "" {
			continue
		}
		duration, _ := firstMatch(entry, durationRules...)

		description := fragments(removeFirst(entry, position, company, duration), minFragmentLen, maxFragmentLen)
		if len(description) == 0 {
			description = []string{detailsPlaceholder}
		}
		if position == "" {
			position = positionPlaceholder
		}
		if company == "" {
			company = companyPlaceholder
		}

		out = append(out, models.Experience{
			Position:    position,
			Company:     company,
			Duration:    duration,
			Description: description,
		})
		if len(out) == maxExperience {
			break
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}
