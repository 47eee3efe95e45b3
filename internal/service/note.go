package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/sakif/inkwell/internal/ai"
	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/extract"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

const MaxTitleLength = 255

// StyleSourceDefault is recorded on notes composed without a handwriting
// sample.
const StyleSourceDefault = "default"

// NoteService owns the note lifecycle: generation from uploads, direct
// creation from text, listing, partial updates, deletion, and stats.
// Every operation is scoped to the requesting user.
type NoteService struct {
	notes     repository.NoteRepository
	samples   repository.SampleRepository
	extractor *extract.Extractor
	composer  *ai.Composer
	logger    *slog.Logger
}

func NewNoteService(
	notes repository.NoteRepository,
	samples repository.SampleRepository,
	extractor *extract.Extractor,
	composer *ai.Composer,
	logger *slog.Logger,
) *NoteService {
	return &NoteService{
		notes:     notes,
		samples:   samples,
		extractor: extractor,
		composer:  composer,
		logger:    logger,
	}
}

// GenerateFromFile extracts text from an upload, composes study notes, and
// persists the result.
//
// The optional sampleID selects a handwriting sample whose style biases the
// composition. The lookup is ownership-scoped; an unknown or unowned id is
// simply ignored and the default style is used — the note still gets
// created, matching how extraction and composition degrade.
func (s *NoteService) GenerateFromFile(
	ctx context.Context,
	userID string,
	filename string,
	contents []byte,
	title, subject string,
	tags []string,
	sampleID string,
) (*model.Note, error) {
	if len(contents) == 0 {
		return nil, apperror.ValidationFailed("file", "file is required")
	}
	title = defaultString(strings.TrimSpace(title), "Untitled Note")
	subject = defaultString(strings.TrimSpace(subject), "General")
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}

	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		ext = "txt"
	}
	raw := s.extractor.Extract(ctx, contents, ext)

	var style *model.StyleProfile
	styleApplied := StyleSourceDefault
	if sampleID != "" {
		sample, err := s.samples.GetSample(ctx, userID, sampleID)
		switch {
		case err == nil:
			style = &sample.StyleData
			styleApplied = sample.ID
		case errors.Is(err, apperror.ErrNotFound):
			// Unknown or unowned sample: compose with the default style.
			s.logger.Debug("sample not found for note generation",
				slog.String("sampleID", sampleID),
			)
		default:
			return nil, fmt.Errorf("service/note: fetching sample %s: %w", sampleID, err)
		}
	}

	processed := s.composer.Compose(ctx, raw, subject, style)

	note := &model.Note{
		UserID:           userID,
		Title:            title,
		OriginalContent:  raw,
		ProcessedContent: processed,
		StyleApplied:     styleApplied,
		Subject:          subject,
		Tags:             tags,
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("service/note: creating note: %w", err)
	}

	s.logger.Info("note generated from file",
		slog.String("noteID", note.ID),
		slog.String("userID", userID),
		slog.String("subject", subject),
	)

	return note, nil
}

// CreateFromText composes and persists a note from directly submitted text.
func (s *NoteService) CreateFromText(
	ctx context.Context,
	userID, title, content, subject string,
	tags []string,
) (*model.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	subject = defaultString(strings.TrimSpace(subject), "General")

	processed := s.composer.Compose(ctx, content, subject, nil)

	note := &model.Note{
		UserID:           userID,
		Title:            title,
		OriginalContent:  content,
		ProcessedContent: processed,
		StyleApplied:     StyleSourceDefault,
		Subject:          subject,
		Tags:             tags,
	}
	if err := s.notes.CreateNote(ctx, note); err != nil {
		return nil, fmt.Errorf("service/note: creating note: %w", err)
	}

	s.logger.Info("note created",
		slog.String("noteID", note.ID),
		slog.String("userID", userID),
	)

	return note, nil
}

// List returns one page of the user's notes.
func (s *NoteService) List(ctx context.Context, userID string, filter repository.NoteFilter) (*repository.NotePage, error) {
	page, err := s.notes.ListNotes(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("service/note: listing notes: %w", err)
	}
	return page, nil
}

// Get fetches one note; missing and unowned ids are both NotFound.
func (s *NoteService) Get(ctx context.Context, userID, id string) (*model.Note, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "note ID is required")
	}
	return s.notes.GetNote(ctx, userID, id)
}

// Update applies a partial update to an owned note. Zero affected rows —
// missing or unowned, indistinguishable — surfaces as NotFound.
func (s *NoteService) Update(ctx context.Context, userID, id string, patch repository.NoteUpdate) error {
	if id == "" {
		return apperror.ValidationFailed("id", "note ID is required")
	}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return apperror.ValidationFailed("title", "title must not be empty")
		}
		if len(title) > MaxTitleLength {
			return apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
		}
		patch.Title = &title
	}

	affected, err := s.notes.UpdateNote(ctx, userID, id, patch)
	if err != nil {
		return fmt.Errorf("service/note: updating note %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("note", id)
	}

	s.logger.Info("note updated", slog.String("noteID", id))
	return nil
}

// Delete removes an owned note. Deleting a missing or unowned id reports
// NotFound; a repeat delete cannot change state.
func (s *NoteService) Delete(ctx context.Context, userID, id string) error {
	if id == "" {
		return apperror.ValidationFailed("id", "note ID is required")
	}

	affected, err := s.notes.DeleteNote(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("service/note: deleting note %s: %w", id, err)
	}
	if affected == 0 {
		return apperror.NotFound("note", id)
	}

	s.logger.Info("note deleted", slog.String("noteID", id))
	return nil
}

// Stats returns the user's aggregate dashboard numbers.
func (s *NoteService) Stats(ctx context.Context, userID string) (*model.Stats, error) {
	stats, err := s.notes.Stats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/note: computing stats: %w", err)
	}
	return stats, nil
}

func defaultString(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
