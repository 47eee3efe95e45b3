package model

import "time"

// StyleProfile describes the visual character of a handwriting sample.
//
// The AI analyzer returns free-form JSON; we decode it into this fixed shape
// rather than carrying an open-ended map around. Unknown keys are dropped at
// the analyzer boundary, missing ones fall back to defaults there too, so
// everything downstream can rely on the fields being populated.
type StyleProfile struct {
	FontStyle        string `json:"font_style"`        // casual / formal / print / cursive
	Slant            string `json:"slant"`             // left / upright / slight-right / right
	Size             string `json:"size"`              // small / medium / large
	Spacing          string `json:"spacing"`           // tight / normal / relaxed
	Pressure         string `json:"pressure"`          // light / medium / heavy
	StyleDescription string `json:"style_description,omitempty"`
}

// HandwritingSample is an uploaded handwriting image together with its OCR
// text and inferred style. Samples are immutable after upload — there is no
// update or delete operation on them.
type HandwritingSample struct {
	ID          string       `json:"id"          db:"id"`
	UserID      string       `json:"-"           db:"user_id"`
	SampleName  string       `json:"sample_name" db:"sample_name"`
	OCRText     string       `json:"ocr_text"    db:"ocr_text"`
	StyleData   StyleProfile `json:"style_data"  db:"style_data"`
	ImageBase64 string       `json:"-"           db:"image_base64"` // raw upload, kept out of list responses
	CreatedAt   time.Time    `json:"created_at"  db:"created_at"`
}
