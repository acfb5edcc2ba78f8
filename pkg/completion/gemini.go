package completion

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Gemini answers through the Gemini API.
type Gemini struct {
	client *genai.Client
	cfg    Config
}

// NewGemini creates a client defaulting to gemini-2.0-flash.
func NewGemini(ctx context.Context, apiKey string, opts ...Option) (*Gemini, error) {
	cfg := newConfig("gemini-2.0-flash", opts)
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, cfg: cfg}, nil
}

// Complete generates content and joins the text parts of the first candidate.
func (g *Gemini) Complete(ctx context.Context, prompt, details string) (string, error) {
	ctx, cancel := g.cfg.withTimeout(ctx)
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model,
		genai.Text(userMessage(prompt, details)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(g.cfg.SystemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr(float32(g.cfg.Temperature)),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini api error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
