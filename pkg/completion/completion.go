// Package completion implements ports.CompletionClient on top of hosted
// language models, and the deterministic fallback texts used when no model
// answers.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/unifecaf/triagebot/pkg/ports"
)

// ErrUnavailable is returned by clients that cannot reach a model.
var ErrUnavailable = errors.New("completion service unavailable")

// ErrEmptyResponse is returned when a model answers with no text.
var ErrEmptyResponse = errors.New("completion returned no text")

// SystemPrompt are the fixed instructions sent with every request.
const SystemPrompt = `Você é um assistente especializado da UniFECAF. Siga estas diretrizes:

🎯 **PARA RECUPERAÇÃO/REPOSIÇÃO:**
- Confirme disciplina e semestre
- Informe prazos (48h úteis)
- Explique procedimentos
- Fornece contato da secretaria

💰 **PARA FINANCEIRO:**
- Confirme tipo de solicitação
- Informe prazos (24h úteis)
- Oriente sobre documentação
- Fornece contato do financeiro

📄 **PARA DOCUMENTOS:**
- Confirme documento solicitado
- Explique opções (email/retirar)
- Informe prazos de emissão
- Fornece contato de documentos

🎓 **PARA CURSOS:**
- Use dados reais do catálogo
- Seja preciso nas informações
- Sugira contato com coordenação

📋 **PARA TODOS:**
- Seja educado e profissional
- Use emojis moderadamente
- Confirme dados do aluno quando disponíveis
- Fornece contatos específicos`

// Config holds the request parameters shared by every backend.
type Config struct {
	Model        string
	Temperature  float64
	MaxTokens    int64
	SystemPrompt string
	BaseURL      string
	Timeout      time.Duration
}

// Option configures a backend.
type Option func(*Config)

// WithModel overrides the backend's default model.
func WithModel(model string) Option {
	return func(c *Config) {
		if model != "" {
			c.Model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Config) {
		c.Temperature = t
	}
}

// WithMaxTokens bounds the length of the answer.
func WithMaxTokens(n int64) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTokens = n
		}
	}
}

// WithSystemPrompt replaces SystemPrompt.
func WithSystemPrompt(s string) Option {
	return func(c *Config) {
		c.SystemPrompt = s
	}
}

// WithBaseURL points the backend at a different endpoint (proxies, tests).
func WithBaseURL(url string) Option {
	return func(c *Config) {
		c.BaseURL = url
	}
}

// WithTimeout bounds a single request.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

func newConfig(model string, opts []Option) Config {
	cfg := Config{
		Model:        model,
		Temperature:  0.4,
		MaxTokens:    500,
		SystemPrompt: SystemPrompt,
		Timeout:      30 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func (c Config) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.Timeout)
}

// userMessage joins the prompt and its details into one user turn.
func userMessage(prompt, details string) string {
	if strings.TrimSpace(details) == "" {
		return prompt
	}
	return prompt + "\n\n" + details
}

// Provider names accepted by New.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOffline   = "offline"
)

// New builds the client for provider. An empty API key yields Offline, so
// every answer comes from the fallback templates.
func New(ctx context.Context, provider, apiKey string, opts ...Option) (ports.CompletionClient, error) {
	if apiKey == "" && provider != ProviderOffline {
		return Offline{}, nil
	}
	switch strings.ToLower(provider) {
	case ProviderOpenAI, "":
		return NewOpenAI(apiKey, opts...), nil
	case ProviderAnthropic:
		return NewAnthropic(apiKey, opts...), nil
	case ProviderGemini:
		return NewGemini(ctx, apiKey, opts...)
	case ProviderOffline:
		return Offline{}, nil
	default:
		return nil, fmt.Errorf("unknown completion provider %q", provider)
	}
}

// Offline never reaches a model.
type Offline struct{}

// Complete always fails with ErrUnavailable.
func (Offline) Complete(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}
