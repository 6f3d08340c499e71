package resume

import (
	"regexp"
	"sort"
	"strings"
)

const (
	maxSkills        = 12
	maxKeywordSkills = 8
	maxSkillLen      = 50
)

// Keywords is the technology vocabulary scanned when a resume has no
// skills section. Matching is case-sensitive.
var Keywords = []string{
	"JavaScript", "TypeScript", "Python", "Java", "Golang", "Rust", "Ruby", "PHP", "Swift",
	"Kotlin", "C++", "C#", "Scala", "SQL", "HTML", "CSS", "React", "Angular", "Vue",
	"Node.js", "Express", "Django", "Flask", "Spring", "Rails", ".NET", "GraphQL", "REST",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "Linux", "Git", "PostgreSQL",
	"MySQL", "MongoDB", "Redis", "Kafka", "Jenkins", "TensorFlow", "PyTorch", "Figma",
}

var (
	commaOrLine = regexp.MustCompile(`,|\n`)

	keywordPatterns = func() []*regexp.Regexp {
		patterns := make([]*regexp.Regexp, len(Keywords))
		for i, k := range Keywords {
			patterns[i] = regexp.MustCompile(`(?:^|[^A-Za-z0-9+#.])(` + regexp.QuoteMeta(k) + `)(?:[^A-Za-z0-9+#]|$)`)
		}
		return patterns
	}()
)

// ExtractSkills splits the skills section into at most twelve entries. When
// the resume has no skills section it falls back to a keyword scan of the
// whole text, returning at most eight.
func ExtractSkills(text string) ([]string, bool) {
	text = normalize(text)
	section, ok := Locate(text, Skills)
	if !ok {
		return keywordSkills(text)
	}

	var candidates []string
	switch {
	case hasBullet.MatchString(section):
		candidates = bulletSplit.Split(section, -1)
	case strings.Contains(section, ","):
		candidates = commaOrLine.Split(section, -1)
	default:
		candidates = strings.Split(section, "\n")
	}

	var out []string
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if n := runeLen(c); n > 0 && n < maxSkillLen {
			out = append(out, c)
			if len(out) == maxSkills {
				break
			}
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func keywordSkills(text string) ([]string, bool) {
	type hit struct {
		keyword string
		at      int
	}
	var hits []hit
	for i, re := range keywordPatterns {
		if m := re.FindStringSubmatchIndex(text); m != nil {
			hits = append(hits, hit{keyword: Keywords[i], at: m[2]})
		}
	}
	if len(hits) == 0 {
		return nil, false
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at < hits[j].at })
	out := make([]string, 0, min(len(hits), maxKeywordSkills))
	for _, h := range hits[:min(len(hits), maxKeywordSkills)] {
		out = append(out, h.keyword)
	}
	return out, true
}
