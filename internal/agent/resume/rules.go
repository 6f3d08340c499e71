// Package resume turns plain resume text into a structured portfolio using
// ordered regular-expression passes over the whole text or a located section.
package resume

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// rule is one step of an ordered extraction pass: the first accepted
// capture of the first matching rule wins.
type rule struct {
	re     *regexp.Regexp
	group  int
	accept func(string) bool
	// transform rewrites a capture before accept sees it, e.g. to promote a
	// bare path to a URL.
	transform func(string) string
}

func (r rule) find(text string) (string, bool) {
	for _, m := range r.re.FindAllStringSubmatch(text, -1) {
		v := strings.TrimSpace(m[r.group])
		if r.transform != nil {
			v = strings.TrimSpace(r.transform(v))
		}
		if v == "" {
			continue
		}
		if r.accept != nil && !r.accept(v) {
			continue
		}
		return v, true
	}
	return "", false
}

// firstMatch evaluates rules in order against text.
func firstMatch(text string, rules ...rule) (string, bool) {
	for _, r := range rules {
		if v, ok := r.find(text); ok {
			return v, true
		}
	}
	return "", false
}

var (
	lineBreaks    = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\u00a0", " ", "\f", "\n")
	blankLineRun  = regexp.MustCompile(`\n[ \t]*\n(?:[ \t]*\n)*`)
	entrySplit    = regexp.MustCompile(`\n\s*\n`)
	spaceRun      = regexp.MustCompile(`[ \t]{2,}`)
	bulletPrefix  = regexp.MustCompile(`^[ \t]*[-•*▪◦][ \t]*`)
	bulletSplit   = regexp.MustCompile(`(?m)^[ \t]*[-*▪◦][ \t]*|•`)
	hasBullet     = regexp.MustCompile(`(?m)^[ \t]*[-*▪◦][ \t]+|•`)
	emptyParens   = regexp.MustCompile(`\(\s*\)`)
	separatorTrim = " \t\n,;:|-–—@•*"
)

// normalize makes line endings uniform and guarantees valid UTF-8.
func normalize(text string) string {
	return lineBreaks.Replace(strings.ToValidUTF8(text, ""))
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// splitEntries splits a section into blank-line separated entries.
func splitEntries(section string) []string {
	var entries []string
	for _, e := range entrySplit.Split(section, -1) {
		if e = strings.TrimSpace(e); e != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if runeLen(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// removeFirst deletes the first occurrence of each non-empty span.
func removeFirst(text string, spans ...string) string {
	for _, span := range spans {
		if span != "" {
			text = strings.Replace(text, span, "", 1)
		}
	}
	return text
}

// fragments splits entry residue on leading bullets, or on line breaks when
// bullets yield at most one piece, keeping pieces whose length is in [min, max).
func fragments(body string, min, max int) []string {
	pieces := nonEmpty(bulletSplit.Split(body, -1))
	if len(pieces) <= 1 {
		pieces = nonEmpty(strings.Split(body, "\n"))
	}
	var out []string
	for _, p := range pieces {
		p = strings.Trim(collapseLines(emptyParens.ReplaceAllString(p, "")), separatorTrim)
		if n := runeLen(p); n >= min && n < max {
			out = append(out, p)
		}
	}
	return out
}

func nonEmpty(parts []string) []string {
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// collapseLines joins wrapped lines of one fragment with single spaces.
func collapseLines(s string) string {
	return spaceRun.ReplaceAllString(strings.Join(nonEmptyLines(s), " "), " ")
}

var trailingConnector = regexp.MustCompile(`(?:[ \t]+(?:of|for|and|the|at|in|&))+$`)

func trimConnectors(s string) string {
	return strings.TrimSpace(trailingConnector.ReplaceAllString(s, ""))
}

func hasLetter(s string) bool {
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			return true
		}
	}
	return false
}
