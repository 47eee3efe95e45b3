package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/inkwell/internal/apperror"
	"github.com/sakif/inkwell/internal/model"
	"github.com/sakif/inkwell/internal/repository"
)

var _ repository.SampleRepository = (*DB)(nil)

// CreateSample inserts a handwriting sample. The style profile is stored as
// a JSON blob in a TEXT column — it is only ever read back whole, never
// queried by field.
func (db *DB) CreateSample(ctx context.Context, sample *model.HandwritingSample) error {
	sample.ID = xid.New().String()
	sample.CreatedAt = time.Now().UTC()

	styleJSON, err := json.Marshal(sample.StyleData)
	if err != nil {
		return fmt.Errorf("sqlite: encoding style data: %w", err)
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO handwriting_samples (id, user_id, sample_name, ocr_text, style_data, image_base64, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sample.ID,
		sample.UserID,
		sample.SampleName,
		sample.OCRText,
		string(styleJSON),
		sample.ImageBase64,
		sample.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating sample: %w", err)
	}

	return nil
}

// ListSamples returns all of a user's samples, newest first. The image
// payload is not selected — list responses never include it.
func (db *DB) ListSamples(ctx context.Context, userID string) ([]model.HandwritingSample, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, sample_name, ocr_text, style_data, created_at
		 FROM handwriting_samples
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing samples: %w", err)
	}
	defer rows.Close()

	samples := []model.HandwritingSample{}
	for rows.Next() {
		var s model.HandwritingSample
		var styleJSON string
		if err := rows.Scan(&s.ID, &s.UserID, &s.SampleName, &s.OCRText, &styleJSON, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning sample row: %w", err)
		}
		if err := json.Unmarshal([]byte(styleJSON), &s.StyleData); err != nil {
			return nil, fmt.Errorf("sqlite: decoding style data for sample %s: %w", s.ID, err)
		}
		samples = append(samples, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating samples: %w", err)
	}

	return samples, nil
}

// GetSample retrieves one sample, scoped to its owner. A sample that exists
// but belongs to someone else is reported exactly like a missing one.
func (db *DB) GetSample(ctx context.Context, userID, id string) (*model.HandwritingSample, error) {
	var s model.HandwritingSample
	var styleJSON string

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, sample_name, ocr_text, style_data, image_base64, created_at
		 FROM handwriting_samples
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&s.ID, &s.UserID, &s.SampleName, &s.OCRText, &styleJSON, &s.ImageBase64, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("sample", id)
		}
		return nil, fmt.Errorf("sqlite: getting sample %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(styleJSON), &s.StyleData); err != nil {
		return nil, fmt.Errorf("sqlite: decoding style data for sample %s: %w", id, err)
	}

	return &s, nil
}
