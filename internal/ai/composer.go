package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/inkwell/internal/model"
)

const (
	// composeInputLimit bounds how much extracted text goes into the prompt.
	composeInputLimit = 3000
	// previewLimit bounds the excerpt embedded in the offline template.
	previewLimit = 800
)

// Composer turns extracted text into formatted study notes.
//
// With a generator, it issues one generation request and returns the model's
// text verbatim. Without one (nil gen), it renders a deterministic template
// — same input, byte-identical output — which is both the demo mode and
// what tests pin down. A generator error produces a response that flags the
// failure and carries the full original text, so nothing is silently lost.
type Composer struct {
	gen    TextGenerator
	logger *slog.Logger
}

func NewComposer(gen TextGenerator, logger *slog.Logger) *Composer {
	return &Composer{gen: gen, logger: logger}
}

// Available reports whether an AI model is wired in.
func (c *Composer) Available() bool {
	return c.gen != nil
}

// Compose produces the processed content for a note.
func (c *Composer) Compose(ctx context.Context, text, subject string, style *model.StyleProfile) string {
	if c.gen == nil {
		return offlineTemplate(text, subject)
	}

	styleDesc := "student-friendly"
	if style != nil {
		if style.StyleDescription != "" {
			styleDesc = style.StyleDescription
		} else {
			styleDesc = "casual handwritten"
		}
	}

	prompt := fmt.Sprintf(`You are an expert note-taking assistant. Transform the following content into well-structured,
engaging study notes optimized for learning.

Subject: %s
Writing Style to emulate: %s

Content to transform:
%s

Create structured notes with:
1. A clear title/header
2. Key concepts highlighted with ★
3. Important definitions marked with →
4. Examples labeled clearly
5. Summary points at the end
6. Use emojis sparingly for visual interest
7. Keep a conversational, student-friendly tone
8. Use --- for section dividers

Format it as if written in a notebook. Make it engaging and memorable.`,
		subject, styleDesc, truncateRunes(text, composeInputLimit))

	resp, err := c.gen.Generate(ctx, prompt)
	if err != nil {
		c.logger.Warn("note composition failed, keeping original content",
			slog.String("error", err.Error()),
		)
		return fmt.Sprintf("[AI processing failed: %v]\n\nOriginal content:\n%s", err, text)
	}

	return resp
}

// offlineTemplate is the no-AI rendering. Same (text, subject) pair must
// always yield byte-identical output.
func offlineTemplate(text, subject string) string {
	body := truncateRunes(text, previewLimit)
	if strings.TrimSpace(body) == "" {
		body = "Your notes content will appear here, beautifully formatted in your handwriting style!"
	}

	return fmt.Sprintf(`📚 %s Notes
━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━

%s

Key Takeaways:
• Review and understand core concepts
• Practice with examples
• Connect ideas to prior knowledge

💡 Note: Connect the Gemini API for AI-powered restructuring!
`, subject, body)
}
