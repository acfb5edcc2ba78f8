package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI answers through the Chat Completions API.
type OpenAI struct {
	client openai.Client
	cfg    Config
}

// NewOpenAI creates a client defaulting to gpt-4o-mini.
func NewOpenAI(apiKey string, opts ...Option) *OpenAI {
	cfg := newConfig(openai.ChatModelGPT4oMini, opts)
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{client: openai.NewClient(reqOpts...), cfg: cfg}
}

// Complete sends the system instructions and the prompt as one exchange.
func (o *OpenAI) Complete(ctx context.Context, prompt, details string) (string, error) {
	ctx, cancel := o.cfg.withTimeout(ctx)
	defer cancel()

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(o.cfg.SystemPrompt),
			openai.UserMessage(userMessage(prompt, details)),
		},
		Model:               o.cfg.Model,
		Temperature:         openai.Float(o.cfg.Temperature),
		MaxCompletionTokens: openai.Int(o.cfg.MaxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
