package model

import "time"

// Note is a generated study note.
//
// OriginalContent holds the text as extracted from the upload (or submitted
// directly); ProcessedContent holds the AI- or template-formatted version.
// StyleApplied records which handwriting sample biased the formatting —
// either a sample id or the literal "default".
//
// Tags keep their submitted order and may contain duplicates; they are
// stored as a JSON array, not normalized.
type Note struct {
	ID               string    `json:"id"                db:"id"`
	UserID           string    `json:"-"                 db:"user_id"`
	Title            string    `json:"title"             db:"title"`
	OriginalContent  string    `json:"original_content"  db:"original_content"`
	ProcessedContent string    `json:"processed_content" db:"processed_content"`
	StyleApplied     string    `json:"style_applied"     db:"style_applied"`
	Subject          string    `json:"subject"           db:"subject"`
	Tags             []string  `json:"tags"              db:"tags"`
	IsFavorite       bool      `json:"is_favorite"       db:"is_favorite"`
	CreatedAt        time.Time `json:"created_at"        db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"        db:"updated_at"`
}

// NoteSummary is the listing projection of a Note: everything a notes index
// page needs, with a short preview instead of the full processed content.
type NoteSummary struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Subject    string    `json:"subject"`
	Tags       []string  `json:"tags"`
	IsFavorite bool      `json:"is_favorite"`
	Preview    string    `json:"preview"` // first 200 chars of processed content
	CreatedAt  time.Time `json:"created_at"`
}

// SubjectCount is one row of the per-subject aggregate in Stats.
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// Stats are the per-user aggregate counts shown on the dashboard.
type Stats struct {
	TotalNotes  int            `json:"total_notes"`
	Favorites   int            `json:"favorites"`
	Samples     int            `json:"samples"`
	TopSubjects []SubjectCount `json:"subjects"` // at most 5, descending by count
}
