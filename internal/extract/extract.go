// Package extract derives best-effort plain text from uploaded files.
//
// Extraction is deliberately infallible from the caller's point of view:
// every path ends in either text or a user-facing placeholder asking for
// manual entry. A failed OCR call or a corrupt PDF degrades the content of
// one note — it never fails the upload.
package extract

import (
	"context"
	"log/slog"
	"strings"
)

// Placeholder strings returned when extraction comes up empty. These are
// shown to the user verbatim.
const (
	PlaceholderOCRUnavailable = "OCR not available. Please enter text manually."
	PlaceholderPDFFailed      = "PDF processing failed. Please enter text manually."
	PlaceholderPDFUnreadable  = "Could not process PDF. Please enter text manually."
)

var (
	textExts  = map[string]bool{"txt": true, "md": true}
	imageExts = map[string]bool{"jpg": true, "jpeg": true, "png": true, "webp": true, "gif": true}
)

// Extractor picks an extraction policy from the file-extension hint.
// The OCR engine may be nil, meaning OCR-dependent paths fall through to
// their placeholders.
type Extractor struct {
	ocr    OCREngine
	logger *slog.Logger
}

func New(ocr OCREngine, logger *slog.Logger) *Extractor {
	return &Extractor{ocr: ocr, logger: logger}
}

// OCRAvailable reports whether an OCR engine was configured.
func (e *Extractor) OCRAvailable() bool {
	return e.ocr != nil
}

// Extract returns best-effort plain text for the upload.
//
// Policy by extension hint:
//   - txt/md: decode as UTF-8, replacing undecodable sequences
//   - jpg/jpeg/png/webp/gif: OCR, or the OCR placeholder
//   - pdf: embedded text first, then OCR, then a placeholder — in that
//     order, always, because the embedded text layer is cheaper and
//     higher-fidelity than rasterized OCR when it exists
//   - anything else: best-effort decode
func (e *Extractor) Extract(ctx context.Context, contents []byte, ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	switch {
	case textExts[ext]:
		return decodeText(contents)
	case imageExts[ext]:
		return e.extractImage(ctx, contents)
	case ext == "pdf":
		return e.extractPDF(ctx, contents)
	default:
		return decodeText(contents)
	}
}

// OCRText runs the OCR engine directly (used for sample uploads, where the
// file is known to be an image). Returns "" when OCR is unavailable or
// fails — sample processing continues with empty text either way.
func (e *Extractor) OCRText(ctx context.Context, image []byte) string {
	if e.ocr == nil {
		return ""
	}
	text, err := e.ocr.Recognize(ctx, image)
	if err != nil {
		e.logger.Warn("OCR failed", slog.String("error", err.Error()))
		return ""
	}
	return text
}

func (e *Extractor) extractImage(ctx context.Context, contents []byte) string {
	text := e.OCRText(ctx, contents)
	if strings.TrimSpace(text) == "" {
		return PlaceholderOCRUnavailable
	}
	return text
}

// extractPDF tries a fixed sequence of named strategies, each returning a
// result or "no result". The order is part of the contract: embedded text
// before OCR, placeholder last.
func (e *Extractor) extractPDF(ctx context.Context, contents []byte) string {
	strategies := []struct {
		name string
		run  func() (string, bool)
	}{
		{"embedded-text", func() (string, bool) {
			text, err := pdfEmbeddedText(contents)
			if err != nil {
				e.logger.Warn("pdf text extraction failed", slog.String("error", err.Error()))
				return "", false
			}
			if strings.TrimSpace(text) == "" {
				return "", false
			}
			return text, true
		}},
		{"ocr", func() (string, bool) {
			if e.ocr == nil {
				return "", false
			}
			text, err := e.ocr.Recognize(ctx, contents)
			if err != nil {
				e.logger.Warn("pdf OCR fallback failed", slog.String("error", err.Error()))
				return PlaceholderPDFUnreadable, true
			}
			if strings.TrimSpace(text) == "" {
				return PlaceholderPDFFailed, true
			}
			return text, true
		}},
	}

	for _, s := range strategies {
		if text, ok := s.run(); ok {
			return text
		}
	}
	return PlaceholderPDFFailed
}

// decodeText interprets bytes as UTF-8, substituting the replacement rune
// for undecodable sequences. Never errors on malformed input.
func decodeText(contents []byte) string {
	return strings.ToValidUTF8(string(contents), "�")
}
