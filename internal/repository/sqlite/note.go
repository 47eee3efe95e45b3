package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

var _ repository.NoteRepository = (*DB)(nil)

const notePreviewLen = 200

// CreateNote inserts a new note, generating the id and both timestamps.
func (db *DB) CreateNote(ctx context.Context, note *model.Note) error {
	note.ID = xid.New().String()
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now

	if note.Tags == nil {
		note.Tags = []string{}
	}
	tagsJSON, err := json.Marshal(note.Tags)
	if err != nil {
		return fmt.Errorf("sqlite: encoding tags: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, original_content, processed_content,
		                    style_applied, subject, tags, is_favorite, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		note.ID,
		note.UserID,
		note.Title,
		note.OriginalContent,
		note.ProcessedContent,
		note.StyleApplied,
		note.Subject,
		string(tagsJSON),
		note.IsFavorite,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating note: %w", err)
	}

	return nil
}

// ListNotes returns one page of the user's notes, newest first.
//
// Filters are additive. The COUNT query applies the same WHERE clause as the
// page query, so Total and PageCount always describe the filtered set. A
// page past the end is not an error — it yields an empty item list with a
// valid Total.
func (db *DB) ListNotes(ctx context.Context, userID string, filter repository.NoteFilter) (*repository.NotePage, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = repository.DefaultPageSize
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}

	where := "WHERE user_id = ?"
	args := []any{userID}

	if filter.Subject != "" && filter.Subject != "All" {
		where += " AND subject = ?"
		args = append(args, filter.Subject)
	}
	if filter.Search != "" {
		// LIKE is case-insensitive for ASCII in SQLite.
		where += " AND (title LIKE ? OR processed_content LIKE ?)"
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notes "+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("sqlite: counting notes: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, subject, tags, is_favorite, created_at,
		        substr(processed_content, 1, `+fmt.Sprint(notePreviewLen)+`) AS preview
		 FROM notes `+where+`
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		append(args, pageSize, offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notes: %w", err)
	}
	defer rows.Close()

	items := []model.NoteSummary{}
	for rows.Next() {
		var n model.NoteSummary
		var tagsJSON string
		if err := rows.Scan(&n.ID, &n.Title, &n.Subject, &tagsJSON, &n.IsFavorite, &n.CreatedAt, &n.Preview); err != nil {
			return nil, fmt.Errorf("sqlite: scanning note row: %w", err)
		}
		if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
			return nil, fmt.Errorf("sqlite: decoding tags for note %s: %w", n.ID, err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notes: %w", err)
	}

	pageCount := (total + pageSize - 1) / pageSize

	return &repository.NotePage{
		Items:     items,
		Total:     total,
		Page:      page,
		PageCount: pageCount,
	}, nil
}

// GetNote retrieves a single note scoped to its owner.
func (db *DB) GetNote(ctx context.Context, userID, id string) (*model.Note, error) {
	var n model.Note
	var tagsJSON string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, original_content, processed_content,
		        style_applied, subject, tags, is_favorite, created_at, updated_at
		 FROM notes
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(
		&n.ID, &n.UserID, &n.Title, &n.OriginalContent, &n.ProcessedContent,
		&n.StyleApplied, &n.Subject, &tagsJSON, &n.IsFavorite, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("note", id)
		}
		return nil, fmt.Errorf("sqlite: getting note %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(tagsJSON), &n.Tags); err != nil {
		return nil, fmt.Errorf("sqlite: decoding tags for note %s: %w", id, err)
	}

	return &n, nil
}

// UpdateNote applies a partial update to an owned note.
//
// Only the fields present in the patch make it into the SET clause;
// updated_at is refreshed unconditionally, even for an empty patch. The
// WHERE clause carries the ownership check, so an unowned id simply
// affects zero rows.
func (db *DB) UpdateNote(ctx context.Context, userID, id string, patch repository.NoteUpdate) (int64, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.IsFavorite != nil {
		sets = append(sets, "is_favorite = ?")
		args = append(args, *patch.IsFavorite)
	}
	if patch.Tags != nil {
		tagsJSON, err := json.Marshal(*patch.Tags)
		if err != nil {
			return 0, fmt.Errorf("sqlite: encoding tags: %w", err)
		}
		sets = append(sets, "tags = ?")
		args = append(args, string(tagsJSON))
	}

	args = append(args, id, userID)
	result, err := db.conn.ExecContext(ctx,
		"UPDATE notes SET "+strings.Join(sets, ", ")+" WHERE id = ? AND user_id = ?",
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: updating note %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected, nil
}

// DeleteNote removes an owned note and reports how many rows went away.
func (db *DB) DeleteNote(ctx context.Context, userID, id string) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: deleting note %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return affected, nil
}

// Stats aggregates the user's dashboard numbers in three queries: note and
// favorite counts, sample count, and the five most common subjects.
func (db *DB) Stats(ctx context.Context, userID string) (*model.Stats, error) {
	stats := &model.Stats{TopSubjects: []model.SubjectCount{}}

	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_favorite), 0)
		 FROM notes WHERE user_id = ?`,
		userID,
	).Scan(&stats.TotalNotes, &stats.Favorites)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting notes for stats: %w", err)
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM handwriting_samples WHERE user_id = ?`,
		userID,
	).Scan(&stats.Samples)
	if err != nil {
		return nil, fmt.Errorf("sqlite: counting samples for stats: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT subject, COUNT(*) AS count
		 FROM notes WHERE user_id = ?
		 GROUP BY subject
		 ORDER BY count DESC
		 LIMIT 5`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: querying top subjects: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc model.SubjectCount
		if err := rows.Scan(&sc.Subject, &sc.Count); err != nil {
			return nil, fmt.Errorf("sqlite: scanning subject row: %w", err)
		}
		stats.TopSubjects = append(stats.TopSubjects, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating subjects: %w", err)
	}

	return stats, nil
}
