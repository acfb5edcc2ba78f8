package observability

import (
	"context"
	"log/slog"

	"github.com/unifecaf/triagebot/pkg/domain"
)

// LogHooks writes one structured line per lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(ctx context.Context, e *domain.TurnEvent) {
			logger.InfoContext(ctx, "turn",
				"user_id", e.UserID,
				"from", e.From,
				"to", e.To,
				"terminated", e.Terminated,
				"messages", e.Messages,
				"duration", e.Duration,
			)
		},
		OnSession: func(ctx context.Context, e *domain.SessionEvent) {
			logger.InfoContext(ctx, "session", "user_id", e.UserID, "origin", e.Origin)
		},
		OnCompletion: func(ctx context.Context, e *domain.CompletionEvent) {
			if e.Fallback {
				logger.WarnContext(ctx, "completion_fallback", "user_id", e.UserID, "step", e.Step, "category", e.Category, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "completion", "user_id", e.UserID, "step", e.Step, "duration", e.Duration)
		},
		OnExport: func(ctx context.Context, e *domain.ExportEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "audit_export", "user_id", e.UserID, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "audit_export", "user_id", e.UserID, "artifact_id", e.ArtifactID)
		},
	}
}
