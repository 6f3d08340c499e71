package resume

import (
	"regexp"
	"strings"
)

const (
	roleNouns    = `Developer|Engineer|Designer|Manager|Director|Consultant|Analyst|Specialist|Architect|Administrator`
	maxAboutLen  = 500
	minLocation  = 3
	maxLocation  = 50
	aboutFromRow = 2
	aboutToRow   = 5
)

var (
	resumeTitle = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:resume|résumé|curriculum|vitae|cv)(?:[^\p{L}]|$)`)
	roleNoun    = regexp.MustCompile(`\b(?:` + roleNouns + `)s?\b`)

	titleRules = []rule{{
		re:    regexp.MustCompile(`\b((?:[A-Z][A-Za-z+#./&\-]*[ \t]+){0,3}(?:` + roleNouns + `)s?)\b`),
		group: 1,
	}}

	emailRules = []rule{{
		re:    regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`),
		group: 0,
	}}

	phoneRules = []rule{{
		re:    regexp.MustCompile(`(?:^|[^\d])((?:\+?1[ .\-]?)?(?:\(\d{3}\)|\d{3})[ .\-]?\d{3}[ .\-]?\d{4})(?:[^\d]|$)`),
		group: 1,
	}}

	locationRules = []rule{{
		re:    regexp.MustCompile(`\b([A-Z][A-Za-z.'\-]*(?:[ \t]+[A-Z][A-Za-z.'\-]*)*,[ \t]*[A-Z][A-Za-z.'\-]*(?:[ \t]+[A-Z][A-Za-z.'\-]*)*)`),
		group: 1,
		accept: func(v string) bool {
			n := runeLen(v)
			return n >= minLocation && n <= maxLocation && !roleNoun.MatchString(v)
		},
	}}

	websiteRules = []rule{
		{
			re:        regexp.MustCompile(`https?://[^\s<>"'()\[\]]+`),
			group:     0,
			transform: trimURL,
			accept:    func(v string) bool { return strings.Contains(v, ".") },
		},
		{
			re:        regexp.MustCompile(`(?i)(?:www\.)?linkedin\.com/in/[A-Za-z0-9_%\-]+/?`),
			group:     0,
			transform: func(v string) string { return "https://" + v },
		},
	}
)

func trimURL(v string) string {
	return strings.TrimRight(v, ".,;:!?")
}

// ExtractName returns the first non-empty line, skipping it when it is a
// "Resume" or "Curriculum Vitae" banner.
func ExtractName(text string) (string, bool) {
	lines := nonEmptyLines(normalize(text))
	if len(lines) == 0 {
		return "", false
	}
	if !resumeTitle.MatchString(lines[0]) {
		return lines[0], true
	}
	if len(lines) > 1 {
		return lines[1], true
	}
	return "", false
}

// ExtractTitle returns the first capitalised phrase ending in a role noun.
func ExtractTitle(text string) (string, bool) {
	return firstMatch(normalize(text), titleRules...)
}

// ExtractEmail returns the first email address.
func ExtractEmail(text string) (string, bool) {
	return firstMatch(normalize(text), emailRules...)
}

// ExtractPhone returns the first North American phone number.
func ExtractPhone(text string) (string, bool) {
	return firstMatch(normalize(text), phoneRules...)
}

// ExtractLocation returns the first "City, Region" shaped phrase.
func ExtractLocation(text string) (string, bool) {
	return firstMatch(normalize(text), locationRules...)
}

// ExtractWebsite returns the first absolute URL, or a LinkedIn profile path
// promoted to one.
func ExtractWebsite(text string) (string, bool) {
	return firstMatch(normalize(text), websiteRules...)
}

// ExtractAbout returns the summary section, or lines three to five of the
// document when there is none.
func ExtractAbout(text string) (string, bool) {
	text = normalize(text)
	if section, ok := Locate(text, About); ok {
		about := strings.TrimSpace(truncateRunes(blankLineRun.ReplaceAllString(section, "\n\n"), maxAboutLen))
		if about != "" {
			return about, true
		}
	}

	lines := nonEmptyLines(text)
	if len(lines) <= aboutFromRow {
		return "", false
	}
	window := lines[aboutFromRow:min(aboutToRow, len(lines))]
	return spaceRun.ReplaceAllString(strings.Join(window, " "), " "), true
}
