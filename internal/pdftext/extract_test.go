package pdftext

import (
	"bytes"
	"testing"

	"github.com/ahmetcoskunkizilkaya/resumeai-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	data := testutil.MinimalPDF("BT /F1 12 Tf 72 720 Td (Jane Doe Go Engineer) Tj ET")

	text, pages, err := Extract(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.Contains(t, text, "Jane Doe")
}

func TestExtractNoTextLayer(t *testing.T) {
	data := testutil.MinimalPDF("0 0 m 100 100 l S")

	_, pages, err := Extract(bytes.NewReader(data), int64(len(data)))
	assert.ErrorIs(t, err, ErrNoText)
	assert.Equal(t, 1, pages)
}

func TestExtractRejectsGarbage(t *testing.T) {
	for name, data := range map[string][]byte{
		"empty":     {},
		"plain":     []byte("definitely not a pdf"),
		"truncated": testutil.MinimalPDF("BT (x) Tj ET")[:40],
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := Extract(bytes.NewReader(data), int64(len(data)))
			assert.ErrorIs(t, err, ErrInvalidPDF)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "a b\nc", normalize("  a   b \r\n\r\n c "))
}
