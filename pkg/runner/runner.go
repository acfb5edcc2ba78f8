package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/unifecaf/triagebot"
	"github.com/unifecaf/triagebot/internal/logging"
)

// DefaultUserID identifies the local user of a terminal session.
const DefaultUserID = "terminal"

// Assistant is the part of triagebot.Assistant the Runner needs.
type Assistant interface {
	Handle(ctx context.Context, userID, text string) (*triagebot.Reply, error)
}

// Runner handles the read-handle-write loop against an Assistant.
type Runner struct {
	Handler IOHandler
	Logger  *slog.Logger
	UserID  string

	// Welcome is shown once before the first prompt, if set.
	Welcome string
}

// Option configures a Runner.
type Option func(*Runner)

// WithInputHandler configures the IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.Logger = logger
		}
	}
}

// WithUserID sets the identity under which messages are sent.
func WithUserID(id string) Option {
	return func(r *Runner) {
		if id != "" {
			r.UserID = id
		}
	}
}

// WithWelcome sets a system message shown before the first prompt.
func WithWelcome(msg string) Option {
	return func(r *Runner) {
		r.Welcome = msg
	}
}

// NewRunner creates a Runner reading Stdin and writing Stdout.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger: logging.NewNop(),
		UserID: DefaultUserID,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(nil, nil)
	}
	return r
}

// Run executes the loop until EOF, an exit command or cancellation of ctx.
// Reaching the end of the input is not an error.
func (r *Runner) Run(ctx context.Context, a Assistant) error {
	if r.Welcome != "" {
		if err := r.Handler.SystemOutput(ctx, r.Welcome); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	for {
		text, err := r.Handler.Input(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				r.Logger.Debug("Runner stopped", "user_id", r.UserID, "err", err)
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		if isExit(text) {
			return nil
		}

		reply, err := a.Handle(ctx, r.UserID, text)
		if err != nil {
			return fmt.Errorf("turn failed: %w", err)
		}
		if err := r.Handler.Output(ctx, reply); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
		if reply.Terminated {
			r.Logger.Debug("Conversation finished", "user_id", r.UserID, "artifact_id", reply.ArtifactID)
		}
	}
}

func isExit(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "exit", "quit":
		return true
	}
	return false
}
