package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Anthropic answers through the Messages API.
type Anthropic struct {
	client anthropic.Client
	cfg    Config
}

// NewAnthropic creates a client defaulting to Claude 3.5 Sonnet.
func NewAnthropic(apiKey string, opts ...Option) *Anthropic {
	cfg := newConfig(string(anthropic.ModelClaude3_5Sonnet20241022), opts)
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Anthropic{client: anthropic.NewClient(reqOpts...), cfg: cfg}
}

// Complete sends the prompt with the system instructions and joins the text blocks of the answer.
func (a *Anthropic) Complete(ctx context.Context, prompt, details string) (string, error) {
	ctx, cancel := a.cfg.withTimeout(ctx)
	defer cancel()

	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(a.cfg.Model),
		MaxTokens:   a.cfg.MaxTokens,
		Temperature: anthropic.Float(a.cfg.Temperature),
		System:      []anthropic.TextBlockParam{{Text: a.cfg.SystemPrompt}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage(prompt, details))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}
