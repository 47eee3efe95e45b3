package repository

import (
	"context"

	"github.com/sakif/inkwell/internal/model"
)

// NoteFilter narrows and pages a note listing. Filters are additive (AND).
// A Subject of "" or "All" means no subject filter. Search matches title or
// processed content case-insensitively as a substring.
type NoteFilter struct {
	Subject  string
	Search   string
	Page     int // 1-indexed; values < 1 are treated as 1
	PageSize int // clamped to [1, MaxPageSize]; 0 means DefaultPageSize
}

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// NotePage is one page of a note listing plus the numbers a client needs to
// render pagination controls.
type NotePage struct {
	Items     []model.NoteSummary
	Total     int
	Page      int
	PageCount int // ceil(Total / PageSize)
}

// NoteUpdate is a partial update. Nil fields are left untouched; the
// updated_at timestamp is always refreshed.
type NoteUpdate struct {
	Title      *string
	IsFavorite *bool
	Tags       *[]string
}

type UserRepository interface {
	// CreateUser inserts a new user; returns apperror.ErrConflict if the
	// email is already registered.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

type SampleRepository interface {
	CreateSample(ctx context.Context, sample *model.HandwritingSample) error
	// ListSamples returns the user's samples, newest first.
	ListSamples(ctx context.Context, userID string) ([]model.HandwritingSample, error)
	// GetSample is ownership-scoped: a sample belonging to another user is
	// reported as not found.
	GetSample(ctx context.Context, userID, id string) (*model.HandwritingSample, error)
}

type NoteRepository interface {
	CreateNote(ctx context.Context, note *model.Note) error
	ListNotes(ctx context.Context, userID string, filter NoteFilter) (*NotePage, error)
	GetNote(ctx context.Context, userID, id string) (*model.Note, error)
	// UpdateNote applies the patch to the note if it is owned by userID and
	// returns the number of rows affected — zero means missing or unowned,
	// and the two are indistinguishable on purpose.
	UpdateNote(ctx context.Context, userID, id string, patch NoteUpdate) (int64, error)
	// DeleteNote removes the note if owned; returns rows affected.
	DeleteNote(ctx context.Context, userID, id string) (int64, error)
	Stats(ctx context.Context, userID string) (*model.Stats, error)
}
