package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/inkwell/internal/model"
)

// styleSampleLimit bounds how much OCR text goes into the analysis prompt.
const styleSampleLimit = 500

// DefaultStyle is returned whenever the model is unavailable or its answer
// is unusable. Callers can always rely on a fully populated profile.
func DefaultStyle() model.StyleProfile {
	return model.StyleProfile{
		FontStyle: "casual-handwritten",
		Slant:     "slight-right",
		Size:      "medium",
		Spacing:   "relaxed",
		Pressure:  "medium",
	}
}

// AnalyzeStyle infers a style profile from a sample's OCR text.
//
// Failure is not an option here in the literal sense: no model, a failed
// call, or an unparseable response all yield DefaultStyle. The surrounding
// upload keeps going regardless.
func AnalyzeStyle(ctx context.Context, gen TextGenerator, ocrText string, logger *slog.Logger) model.StyleProfile {
	if gen == nil {
		return DefaultStyle()
	}

	prompt := fmt.Sprintf(`Analyze this handwriting sample OCR text and return a JSON object with writing style characteristics.
OCR Text: %s

Return ONLY valid JSON like:
{"font_style": "casual/formal/print/cursive", "slant": "left/upright/slight-right/right", "size": "small/medium/large", "spacing": "tight/normal/relaxed", "pressure": "light/medium/heavy", "style_description": "brief description"}`,
		truncateRunes(ocrText, styleSampleLimit))

	resp, err := gen.Generate(ctx, prompt)
	if err != nil {
		logger.Warn("style analysis failed", slog.String("error", err.Error()))
		return DefaultStyle()
	}

	var profile model.StyleProfile
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &profile); err != nil {
		logger.Warn("style analysis returned unparseable JSON", slog.String("error", err.Error()))
		return DefaultStyle()
	}

	return withDefaults(profile)
}

// stripCodeFence removes a leading/trailing markdown fence. Models like to
// wrap JSON answers in ```json ... ``` even when told not to.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the opening fence.
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(s[:idx])
		if firstLine == "json" || firstLine == "" {
			s = s[idx+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// withDefaults fills any field the model left empty from DefaultStyle, so
// downstream code never sees a partially populated profile.
func withDefaults(p model.StyleProfile) model.StyleProfile {
	def := DefaultStyle()
	if p.FontStyle == "" {
		p.FontStyle = def.FontStyle
	}
	if p.Slant == "" {
		p.Slant = def.Slant
	}
	if p.Size == "" {
		p.Size = def.Size
	}
	if p.Spacing == "" {
		p.Spacing = def.Spacing
	}
	if p.Pressure == "" {
		p.Pressure = def.Pressure
	}
	return p
}
