package generation

import "strings"

const (
	maxTitleRunes = 60
	UntitledTitle = "Untitled"
)

// Title derives a history title from the first line of the vacancy text.
func Title(vacancyText string) string {
	line, _, _ := strings.Cut(vacancyText, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return UntitledTitle
	}
	runes := []rune(line)
	if len(runes) > maxTitleRunes {
		line = strings.TrimSpace(string(runes[:maxTitleRunes]))
	}
	return line
}

// ScoreBand buckets an ATS score the way the dashboard colours it.
func ScoreBand(score int) string {
	switch {
	case score >= 80:
		return "strong"
	case score >= 60:
		return "fair"
	default:
		return "weak"
	}
}
