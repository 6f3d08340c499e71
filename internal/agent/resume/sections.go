package resume

import (
	"regexp"
	"strings"
)

// Label names a resume section.
type Label string

const (
	Experience Label = "experience"
	Education  Label = "education"
	Skills     Label = "skills"
	Projects   Label = "projects"
	About      Label = "about"
)

// Labels lists every locatable section.
var Labels = []Label{Experience, Education, Skills, Projects, About}

var sectionKeywords = map[Label]string{
	Experience: `experience|employment|work history`,
	Education:  `education|academic background|qualifications`,
	Skills:     `skills|technologies|technical proficiencies|competencies`,
	Projects:   `projects`,
	About:      `summary|about me|about|profile|objective`,
}

// Headers that only end other sections.
const terminatorKeywords = `certifications?|awards|honou?rs|languages|interests|hobbies|references|publications|volunteering|volunteer|contact|achievements`

var (
	sectionHeaders = compileEach(headerPattern)
	inlineHeaders  = compileEach(inlinePattern)

	anyHeader = headerPattern(allKeywords())

	// an inline header only ends a section when it opens a new block
	anyInlineBlock = regexp.MustCompile(`(?i)\n[ \t]*\n[ \t]*(?:[a-z&]+[ \t]+){0,2}(?:` + allKeywords() + `)[ \t]*:[ \t]*\S`)

	// profile lines such as "LinkedIn Profile: linkedin.com/in/x" are links, not sections
	linkLike = regexp.MustCompile(`(?i)https?://|www\.|@|linkedin|github|\.[a-z]{2,}/`)

	doubleBlankLine = regexp.MustCompile(`\n[ \t]*\n[ \t]*\n`)
)

func compileEach(pattern func(string) *regexp.Regexp) map[Label]*regexp.Regexp {
	m := make(map[Label]*regexp.Regexp, len(sectionKeywords))
	for label, keywords := range sectionKeywords {
		m[label] = pattern(keywords)
	}
	return m
}

func allKeywords() string {
	all := make([]string, 0, len(sectionKeywords)+1)
	for _, label := range Labels {
		all = append(all, sectionKeywords[label])
	}
	return strings.Join(append(all, terminatorKeywords), "|")
}

// headerPattern matches a header standing on its own line: the keyword with
// up to two qualifier words on either side and an optional trailing colon.
func headerPattern(keywords string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:[a-z&]+[ \t]+){0,2}(?:` + keywords + `)(?:[ \t]+[a-z&]+){0,2}[ \t]*:?[ \t]*$`)
}

// inlinePattern matches "Skills: Go, SQL" style headers. Group 1 is the
// content after the colon.
func inlinePattern(keywords string) *regexp.Regexp {
	return regexp.MustCompile(`(?im)^[ \t]*(?:[a-z&]+[ \t]+){0,2}(?:` + keywords + `)[ \t]*:[ \t]*(\S[^\n]*)$`)
}

// opening returns the offset where the section body for label starts, or -1.
// A standalone header wins over an inline one anywhere in the text.
func opening(text string, label Label) int {
	if loc := sectionHeaders[label].FindStringIndex(text); loc != nil {
		return loc[1]
	}
	for _, m := range inlineHeaders[label].FindAllStringSubmatchIndex(text, -1) {
		if linkLike.MatchString(text[m[0]:m[1]]) {
			continue
		}
		return m[2]
	}
	return -1
}

// Locate returns the text belonging to the first section headed by label.
// The capture ends at the next standalone header, an inline header opening
// a new block, or a double blank line. A header with nothing after it
// counts as no section.
func Locate(text string, label Label) (string, bool) {
	if _, ok := sectionKeywords[label]; !ok {
		return "", false
	}

	text = normalize(text)
	start := opening(text, label)
	if start < 0 {
		return "", false
	}
	rest := text[start:]

	// content on the header line itself never starts a new section
	searchFrom := 0
	if !strings.HasPrefix(rest, "\n") {
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			searchFrom = i
		} else {
			searchFrom = len(rest)
		}
	}

	end := len(rest)
	for _, boundary := range []*regexp.Regexp{anyHeader, anyInlineBlock} {
		if b := boundary.FindStringIndex(rest[searchFrom:]); b != nil && searchFrom+b[0] < end {
			end = searchFrom + b[0]
		}
	}
	if b := doubleBlankLine.FindStringIndex(rest); b != nil && b[0] < end {
		end = b[0]
	}

	section := strings.TrimSpace(rest[:end])
	if section == "" {
		return "", false
	}
	return section, true
}
