package handler

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/service"
)

// maxUploadBytes caps multipart uploads (samples and note source files).
const maxUploadBytes = 10 << 20 // 10 MB

// ocrExcerptRunes caps the OCR excerpt echoed in the upload response.
const ocrExcerptRunes = 200

// SampleHandler owns the /api/samples routes.
type SampleHandler struct {
	samples *service.SampleService
	logger  *slog.Logger
}

func NewSampleHandler(samples *service.SampleService, logger *slog.Logger) *SampleHandler {
	return &SampleHandler{samples: samples, logger: logger}
}

// sampleUploadResponse echoes what was extracted so the client can show
// immediate feedback. OCRText is a bounded excerpt, not the full text.
type sampleUploadResponse struct {
	ID         string             `json:"id"`
	SampleName string             `json:"sample_name"`
	OCRText    string             `json:"ocr_text"`
	StyleData  model.StyleProfile `json:"style_data"`
	Message    string             `json:"message"`
}

// HandleUpload ingests a handwriting image.
//
// HTTP: POST /api/samples/upload (bearer)
// Form: file (required), sample_name (optional, defaults to "My Handwriting")
func (h *SampleHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid multipart form"})
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "file is required"})
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		h.logger.Warn("sample upload: reading file failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "could not read file"})
		return
	}

	sample, err := h.samples.Upload(r.Context(), userID, r.FormValue("sample_name"), contents)
	if err != nil {
		writeError(w, err)
		return
	}

	// Cut on runes, not bytes: a byte cut can split a multi-byte character
	// and hand the JSON encoder an invalid tail.
	ocrExcerpt := sample.OCRText
	if runes := []rune(ocrExcerpt); len(runes) > ocrExcerptRunes {
		ocrExcerpt = string(runes[:ocrExcerptRunes])
	}
	if ocrExcerpt == "" {
		ocrExcerpt = "OCR not available"
	}

	writeJSON(w, http.StatusCreated, sampleUploadResponse{
		ID:         sample.ID,
		SampleName: sample.SampleName,
		OCRText:    ocrExcerpt,
		StyleData:  sample.StyleData,
		Message:    "Handwriting sample processed successfully!",
	})
}

// HandleList returns the user's samples, newest first.
//
// HTTP: GET /api/samples (bearer)
func (h *SampleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	samples, err := h.samples.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, samples)
}
