// Package ai holds everything that talks to the generative model: a thin
// Gemini client wrapper, the handwriting style analyzer, and the note
// composer.
//
// The model is an external collaborator behind the one-method TextGenerator
// interface. Both the analyzer and the composer accept a nil generator and
// degrade to deterministic offline output — a missing API key reduces the
// product, it never breaks it.
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when GEMINI_MODEL is not set.
const DefaultModel = "gemini-1.5-flash"

// TextGenerator is the narrow view of the AI model: one prompt in, one text
// response out. Tests substitute a fake; production wires *Gemini.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini implements TextGenerator on the Google GenAI SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini-backed generator. The caller decides what to do
// when this fails — the server logs a warning and runs without AI.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("ai: API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("ai: creating genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Generate issues a single generation request and returns the response text.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("ai: generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", errors.New("ai: model returned no text")
	}
	return text, nil
}

// truncateRunes caps s at n runes. Prompts carry bounded prefixes of user
// content to bound cost and latency; cutting on runes keeps multi-byte
// characters intact.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
