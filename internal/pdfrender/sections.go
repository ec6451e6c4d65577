// Package pdfrender turns an optimized plain-text résumé into a printable A4 document.
package pdfrender

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Section is a titled block of résumé lines. The leading block (name and contacts) has no title.
type Section struct {
	Title string
	Lines []string
}

var sectionKeywords = []string{
	"SUMMARY", "PROFILE", "OBJECTIVE", "CONTACTS", "EXPERIENCE", "EDUCATION", "SKILLS",
	"PROJECTS", "CERTIFICATIONS", "LANGUAGES", "ACHIEVEMENTS",
	"ОПЫТ", "ОБРАЗОВАНИЕ", "НАВЫКИ", "КОНТАКТЫ", "КОНТАКТНАЯ", "ЦЕЛЬ", "ДОСТИЖЕНИЯ",
	"ПРОЕКТЫ", "ЯЗЫКИ", "ОБ АВТОРЕ",
}

const (
	maxCapsHeaderRunes = 40
	minCapsHeaderRunes = 4
)

// ParseSections splits text into sections. A line starts a new section when it begins with a
// known heading word or is a short line written entirely in capitals.
func ParseSections(text string) []Section {
	var (
		sections []Section
		current  *Section
	)
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if isHeading(line) {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &Section{Title: strings.TrimRight(line, ":")}
			continue
		}
		if current == nil {
			current = &Section{}
		}
		current.Lines = append(current.Lines, stripBullet(line))
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return sections
}

func isHeading(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range sectionKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}

	n := utf8.RuneCountInString(line)
	if n < minCapsHeaderRunes || n >= maxCapsHeaderRunes || upper != line {
		return false
	}
	return strings.IndexFunc(line, unicode.IsLetter) >= 0
}

func stripBullet(line string) string {
	for _, marker := range []string{"- ", "• ", "* ", "– "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(line[len(marker):])
		}
	}
	return line
}
