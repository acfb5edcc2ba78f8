package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurn        EventType = "turn"
	EventSession     EventType = "session"
	EventCompletion  EventType = "completion"
	EventAuditExport EventType = "audit_export"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
}

// TurnEvent describes one processed inbound message.
type TurnEvent struct {
	EventBase
	From       Step          `json:"from"`
	To         Step          `json:"to"`
	Terminated bool          `json:"terminated"`
	Messages   int           `json:"messages"`
	Duration   time.Duration `json:"duration"`
}

// SessionOrigin tells how the session handling a turn came to be.
type SessionOrigin string

const (
	SessionResumed   SessionOrigin = "resumed"
	SessionCreated   SessionOrigin = "created"
	SessionExpired   SessionOrigin = "expired"
	SessionRestarted SessionOrigin = "restarted"
	SessionSwept     SessionOrigin = "swept"
)

// SessionEvent reports creation or discard of a session outside a terminal transition.
type SessionEvent struct {
	EventBase
	Origin SessionOrigin `json:"origin"`
}

// CompletionEvent reports a call to the text-completion service.
type CompletionEvent struct {
	EventBase
	Step     Step          `json:"step"`
	Fallback bool          `json:"fallback"`
	Category string        `json:"category,omitempty"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// ExportEvent reports an audit export attempt.
type ExportEvent struct {
	EventBase
	ArtifactID string `json:"artifact_id,omitempty"`
	Err        error  `json:"-"`
}

// LifecycleHooks defines callbacks for observability. Nil hooks are skipped.
type LifecycleHooks struct {
	OnTurn       func(context.Context, *TurnEvent)
	OnSession    func(context.Context, *SessionEvent)
	OnCompletion func(context.Context, *CompletionEvent)
	OnExport     func(context.Context, *ExportEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurn:       chain(h.OnTurn, other.OnTurn),
		OnSession:    chain(h.OnSession, other.OnSession),
		OnCompletion: chain(h.OnCompletion, other.OnCompletion),
		OnExport:     chain(h.OnExport, other.OnExport),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
