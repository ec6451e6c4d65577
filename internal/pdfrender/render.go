package pdfrender

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var ErrEmptyResume = errors.New("resume text is empty")

const (
	bodySize      = 10
	runesPerLine  = 95
	lineHeight    = 5.0
	fallbackTitle = "Resume"
	footerNote    = "Optimized with Resume AI"
)

// RenderResume lays the sections out on A4 pages: the first line as the name, the untitled
// leading block as contact lines, titled sections with bullet lines.
func RenderResume(resumeText string) ([]byte, error) {
	sections := ParseSections(resumeText)
	if len(sections) == 0 {
		return nil, ErrEmptyResume
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		WithPageNumber(props.PageNumber{
			Pattern: "{current} / {total}",
			Place:   props.RightBottom,
			Size:    8,
		}).
		Build()

	m := maroto.New(cfg)
	name, sections := splitName(sections)

	m.AddRow(12, text.NewCol(12, name, props.Text{Size: 18, Style: fontstyle.Bold}))
	m.AddRow(6, text.NewCol(12, footerNote, props.Text{Size: 8, Style: fontstyle.Italic}))

	for _, s := range sections {
		if s.Title != "" {
			m.AddRow(10, text.NewCol(12, s.Title, props.Text{Top: 4, Size: 12, Style: fontstyle.Bold}))
		}
		for _, line := range s.Lines {
			if s.Title != "" {
				m.AddRow(rowHeight(line)+1, bullet(line)...)
				continue
			}
			m.AddRow(rowHeight(line), text.NewCol(12, line, props.Text{Size: bodySize}))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("render resume pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

// splitName takes the first line of an untitled leading block as the document name.
func splitName(sections []Section) (string, []Section) {
	first := sections[0]
	if first.Title == "" && len(first.Lines) > 0 {
		rest := append([]Section{{Lines: first.Lines[1:]}}, sections[1:]...)
		return first.Lines[0], rest
	}
	if first.Title != "" && len(sections) == 1 && len(first.Lines) == 0 {
		return first.Title, nil
	}
	return fallbackTitle, sections
}

func bullet(line string) []core.Col {
	return []core.Col{
		text.NewCol(1, "•", props.Text{Size: bodySize, Align: align.Right, Right: 2}),
		text.NewCol(11, line, props.Text{Size: bodySize}),
	}
}

func rowHeight(line string) float64 {
	lines := (utf8.RuneCountInString(strings.TrimSpace(line)) + runesPerLine - 1) / runesPerLine
	if lines < 1 {
		lines = 1
	}
	return float64(lines) * lineHeight
}
