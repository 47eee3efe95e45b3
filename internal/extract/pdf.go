package extract

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"
)

// pdfEmbeddedText pulls the selectable text layer out of a PDF.
//
// The pdf package can panic on malformed documents, so the whole read is
// fenced with a recover — a broken upload must degrade, never crash the
// request.
func pdfEmbeddedText(contents []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("extract: pdf reader panicked: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(contents), int64(len(contents)))
	if err != nil {
		return "", fmt.Errorf("extract: opening pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract: reading pdf text: %w", err)
	}

	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("extract: reading pdf text: %w", err)
	}

	return string(b), nil
}
