package textfetch

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// minEmbeddedTextLen is the threshold below which embedded PDF text is
// treated as absent (scanned documents usually carry none, or a few stray
// glyphs).
const minEmbeddedTextLen = 32

// embeddedPDFText reads the text layer of a PDF without any network call.
// Returns ok=false when the document has no usable text layer.
func embeddedPDFText(path string) (string, bool, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", false, fmt.Errorf("open pdf: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	rd, err := r.GetPlainText()
	if err != nil {
		return "", false, fmt.Errorf("read pdf text: %w", err)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, rd); err != nil {
		return "", false, fmt.Errorf("read pdf text: %w", err)
	}

	text := b.String()
	if len(strings.TrimSpace(text)) < minEmbeddedTextLen {
		return "", false, nil
	}
	return text, true, nil
}
