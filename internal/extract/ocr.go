package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// OCREngine turns an image into text. The concrete engine is an external
// collaborator — the extractor only needs this one method and tolerates the
// engine being absent entirely (a nil OCREngine).
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Tesseract runs the tesseract binary over stdin/stdout.
//
// The binary is an optional system dependency: NewTesseract probes the PATH
// once at startup, and the server simply runs without OCR when it's missing.
type Tesseract struct {
	bin string
}

// NewTesseract locates the tesseract binary. Returns an error if it's not
// installed; callers treat that as "OCR unavailable", not a startup failure.
func NewTesseract() (*Tesseract, error) {
	bin, err := exec.LookPath("tesseract")
	if err != nil {
		return nil, fmt.Errorf("extract: tesseract not found in PATH: %w", err)
	}
	return &Tesseract{bin: bin}, nil
}

// Recognize feeds the image to tesseract and returns the recognized text.
// A hung binary is bounded by ctx — the request's context cancels it.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	cmd := exec.CommandContext(ctx, t.bin, "stdin", "stdout")
	cmd.Stdin = bytes.NewReader(image)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("extract: tesseract: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	return out.String(), nil
}
