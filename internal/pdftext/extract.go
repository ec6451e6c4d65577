// Package pdftext pulls the text layer out of uploaded résumé PDFs.
package pdftext

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrInvalidPDF is returned for input the parser cannot read at all.
	ErrInvalidPDF = errors.New("file is not a readable PDF")
	// ErrNoText is returned for PDFs without a text layer, typically scans.
	ErrNoText = errors.New("no text found in PDF")
)

// Extract returns the text of every page in order, pages separated by a blank line.
func Extract(r io.ReaderAt, size int64) (text string, pages int, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			text, pages, err = "", 0, fmt.Errorf("%w: %v", ErrInvalidPDF, rec)
		}
	}()

	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	pages = reader.NumPage()
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			// Keep what the other pages yield.
			continue
		}
		if content = normalize(content); content != "" {
			parts = append(parts, content)
		}
	}

	if len(parts) == 0 {
		return "", pages, ErrNoText
	}
	return strings.Join(parts, "\n\n"), pages, nil
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
