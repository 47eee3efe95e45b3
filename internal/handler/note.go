package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
	"github.com/sakif/inkwell/internal/service"
)

// NoteHandler owns the /api/notes routes.
type NoteHandler struct {
	notes  *service.NoteService
	logger *slog.Logger
}

func NewNoteHandler(notes *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

type noteCreateRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Subject string   `json:"subject"`
	Tags    []string `json:"tags"`
}

// noteUpdateRequest uses pointers so "field absent" and "field set to zero
// value" are distinguishable — a PATCH only touches what it names.
type noteUpdateRequest struct {
	Title      *string   `json:"title"`
	IsFavorite *bool     `json:"is_favorite"`
	Tags       *[]string `json:"tags"`
}

type noteListResponse struct {
	Notes []model.NoteSummary `json:"notes"`
	Total int                 `json:"total"`
	Page  int                 `json:"page"`
	Pages int                 `json:"pages"`
}

// HandleGenerate creates a note from an uploaded file.
//
// HTTP: POST /api/notes/generate (bearer)
// Form: file (required), title, subject, tags (JSON array string),
// sample_id (optional handwriting sample to style after)
func (h *NoteHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
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

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "file is required"})
		return
	}
	defer file.Close()

	contents, err := io.ReadAll(file)
	if err != nil {
		h.logger.Warn("note generate: reading file failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "could not read file"})
		return
	}

	// Tags arrive as a JSON array string inside the multipart form.
	tags := []string{}
	if raw := r.FormValue("tags"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "tags must be a JSON array"})
			return
		}
	}

	note, err := h.notes.GenerateFromFile(
		r.Context(),
		userID,
		header.Filename,
		contents,
		r.FormValue("title"),
		r.FormValue("subject"),
		tags,
		r.FormValue("sample_id"),
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// HandleCreate creates a note from directly submitted text.
//
// HTTP: POST /api/notes/create (bearer)
func (h *NoteHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	var req noteCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	note, err := h.notes.CreateFromText(r.Context(), userID, req.Title, req.Content, req.Subject, req.Tags)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, note)
}

// HandleList returns a filtered, searched, paginated listing.
//
// HTTP: GET /api/notes?subject=&search=&page=1&limit=12 (bearer)
func (h *NoteHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	q := r.URL.Query()
	filter := repository.NoteFilter{
		Subject:  q.Get("subject"),
		Search:   q.Get("search"),
		Page:     intQueryParam(q.Get("page"), 1),
		PageSize: intQueryParam(q.Get("limit"), repository.DefaultPageSize),
	}

	page, err := h.notes.List(r.Context(), userID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, noteListResponse{
		Notes: page.Items,
		Total: page.Total,
		Page:  page.Page,
		Pages: page.PageCount,
	})
}

// HandleGet fetches one note.
//
// HTTP: GET /api/notes/{id} (bearer) — 404 for missing or unowned ids alike.
func (h *NoteHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	note, err := h.notes.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, note)
}

// HandleUpdate applies a partial update.
//
// HTTP: PATCH /api/notes/{id} (bearer)
// Body: any of {"title": "...", "is_favorite": true, "tags": [...]}
func (h *NoteHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	var req noteUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: "invalid JSON body"})
		return
	}

	patch := repository.NoteUpdate{
		Title:      req.Title,
		IsFavorite: req.IsFavorite,
		Tags:       req.Tags,
	}
	if err := h.notes.Update(r.Context(), userID, r.PathValue("id"), patch); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note updated"})
}

// HandleDelete removes a note.
//
// HTTP: DELETE /api/notes/{id} (bearer)
func (h *NoteHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	if err := h.notes.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Note deleted"})
}

// HandleStats returns the dashboard aggregates.
//
// HTTP: GET /api/notes/stats/summary (bearer)
func (h *NoteHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	stats, err := h.notes.Stats(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// intQueryParam parses a query integer, falling back to def on absence or
// garbage.
func intQueryParam(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
