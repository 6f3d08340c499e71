package resume

import (
	"regexp"
	"strings"

	"github.com/feichai0017/resume-portfolio/internal/models"
)

const (
	maxProjects     = 2
	minProjectEntry = 20
)

var (
	notURL = func(v string) bool {
		lower := strings.ToLower(v)
		return !strings.HasPrefix(lower, "http") && !strings.HasPrefix(lower, "www.")
	}

	projectTitleRules = []rule{
		{
			re:     regexp.MustCompile(`^[ \t]*[-•*][ \t]*([^\n:.,;(|–—]+?)[ \t]*(?:[:.,;(|–—\n]|[ \t]-[ \t]|$)`),
			group:  1,
			accept: notURL,
		},
		{
			re:     regexp.MustCompile(`^[ \t]*([^\n:.,;(|–—]+?)[ \t]*(?:[:.,;(|–—\n]|[ \t]-[ \t]|$)`),
			group:  1,
			accept: notURL,
		},
	}

	projectLinkRules = []rule{{
		re:        regexp.MustCompile(`https?://[^\s<>"'()\[\]]+`),
		group:     0,
		transform: trimURL,
	}}

	leadingResidue = regexp.MustCompile(`^[\s:.,;|\-–—]+`)
)

// ExtractProjects parses up to two project entries from the projects
// section.
func ExtractProjects(text string) ([]models.Project, bool) {
	section, ok := Locate(text, Projects)
	if !ok {
		return nil, false
	}

	var out []models.Project
	for _, entry := range splitEntries(section) {
		if runeLen(entry) < minProjectEntry {
			continue
		}
		title, _ := firstMatch(entry, projectTitleRules...)
		link, hasLink := firstMatch(entry, projectLinkRules...)

		description := projectDescription(removeFirst(entry, title, link))
		if title == "" || description == "" {
			continue
		}

		p := models.Project{Title: title, Description: description}
		if hasLink {
			p.Link = models.StringPtr(link)
		}
		out = append(out, p)
		if len(out) == maxProjects {
			break
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

func projectDescription(rest string) string {
	var lines []string
	for _, line := range strings.Split(rest, "\n") {
		if line = strings.TrimSpace(bulletPrefix.ReplaceAllString(line, "")); line != "" {
			lines = append(lines, line)
		}
	}
	joined := spaceRun.ReplaceAllString(strings.Join(lines, " "), " ")
	joined = emptyParens.ReplaceAllString(joined, "")
	joined = spaceRun.ReplaceAllString(joined, " ")
	return strings.TrimSpace(leadingResidue.ReplaceAllString(joined, ""))
}
