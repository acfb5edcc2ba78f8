// Package runtime implements the triage conversation: a declarative table of
// steps and labelled transitions, free-text delegation to the completion
// service, catalog lookups and the terminal export.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/pkg/catalog"
	"github.com/unifecaf/triagebot/pkg/completion"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"
)

// Engine is the conversation state machine. It holds no per-user state: every
// call receives a session and returns the next one, so callers are
// responsible for serializing turns of the same user.
type Engine struct {
	catalog   ports.CatalogClient
	completer ports.CompletionClient
	exporter  ports.AuditExporter

	table       map[domain.Step]state
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	now         func() time.Time
	maxInput    int
	maxOutbound int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// WithMaxInputSize bounds the size, in bytes, of an accepted message.
func WithMaxInputSize(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxInput = n
		}
	}
}

// WithMaxMessageLength sets the chunk size of outbound text.
func WithMaxMessageLength(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxOutbound = n
		}
	}
}

// NewEngine creates an engine. A nil courses client reports the catalog as
// unavailable, a nil completer behaves as if the completion service were
// down, and a nil exporter skips the audit export.
func NewEngine(courses ports.CatalogClient, completer ports.CompletionClient, exporter ports.AuditExporter, opts ...EngineOption) *Engine {
	if courses == nil {
		courses = catalog.NewClient(nil)
	}
	if completer == nil {
		completer = completion.Offline{}
	}
	e := &Engine{
		catalog:     courses,
		completer:   completer,
		exporter:    exporter,
		logger:      logging.NewNop(),
		now:         time.Now,
		maxInput:    DefaultMaxInputSize,
		maxOutbound: domain.MaxMessageLength,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.table = e.transitions()
	return e
}

// Result is the outcome of one turn.
type Result struct {
	// Messages are ready to send, already split to the outbound limit.
	Messages []domain.Outbound

	// Session is the updated session. It is nil when Terminated is set.
	Session *domain.Session

	// Terminated reports that the conversation ended and must be removed from the store.
	Terminated bool

	// ArtifactID names the audit record written on termination, if any.
	ArtifactID string
}

// turn is the scratch state of one Handle call.
type turn struct {
	ctx      context.Context
	sess     *domain.Session
	raw      string
	input    string
	out      []domain.Outbound
	done     bool
	artifact string
}

func (t *turn) say(text string, options [][]string) {
	t.out = append(t.out, domain.Outbound{Text: text, Options: options})
}

func (t *turn) goTo(step domain.Step, text string, options [][]string) {
	t.sess.Step = step
	t.say(text, options)
}

func (t *turn) set(key, value string) {
	t.sess.Attributes.Set(key, value)
}

func (t *turn) get(key string) string {
	return t.sess.Attributes.ValueOr(key, notInformed)
}

// Handle processes one inbound message. The given session is not modified.
func (e *Engine) Handle(ctx context.Context, sess *domain.Session, raw string) (Result, error) {
	if sess == nil {
		return Result{}, errors.New("nil session")
	}
	start := e.now()
	t := &turn{ctx: ctx, sess: sess.Clone()}

	if e.accept(t, raw) {
		e.dispatch(t)
	}
	return e.complete(t, sess.Step, start), nil
}

// Begin handles the first message of a session that was just created, or
// recreated after expiry. A message answering the opening question is
// handled normally; anything else gets the greeting.
func (e *Engine) Begin(ctx context.Context, sess *domain.Session, origin domain.SessionOrigin, raw string) (Result, error) {
	if sess == nil {
		return Result{}, errors.New("nil session")
	}
	start := e.now()
	t := &turn{ctx: ctx, sess: sess.Clone()}
	if origin == domain.SessionExpired {
		t.say(msgExpired, nil)
	}

	if clean, err := Sanitize(raw, e.maxInput); err == nil && e.matches(t.sess.Step, normalize(clean)) {
		e.accept(t, clean)
		e.dispatch(t)
	} else {
		t.say(msgGreeting, kbRole)
	}
	return e.complete(t, sess.Step, start), nil
}

// Greet returns the opening prompt without touching the step of sess.
func (e *Engine) Greet(ctx context.Context, sess *domain.Session) Result {
	t := &turn{ctx: ctx, sess: sess.Clone()}
	t.say(msgGreeting, kbRole)
	return e.complete(t, sess.Step, e.now())
}

// Courses moves sess to the course query menu. A non-empty query is then
// handled as if typed there.
func (e *Engine) Courses(ctx context.Context, sess *domain.Session, query string) (Result, error) {
	if sess == nil {
		return Result{}, errors.New("nil session")
	}
	start := e.now()
	t := &turn{ctx: ctx, sess: sess.Clone()}
	t.sess.Step = domain.StepCourseQuery

	if strings.TrimSpace(query) == "" {
		t.say(msgCourseCommand, kbCourses)
	} else if e.accept(t, query) {
		e.dispatch(t)
	}
	return e.complete(t, sess.Step, start), nil
}

// accept sanitizes raw into t. It emits a re-prompt and returns false when
// the message cannot be processed.
func (e *Engine) accept(t *turn, raw string) bool {
	clean, err := Sanitize(raw, e.maxInput)
	switch {
	case errors.Is(err, ErrInputTooLarge):
		t.say(msgInputTooLong, nil)
		return false
	case err != nil:
		t.say(msgInvalidInput, nil)
		return false
	}

	t.raw = strings.TrimSpace(clean)
	if t.raw == "" {
		t.say(msgInvalidInput, nil)
		return false
	}
	t.input = strings.ToLower(t.raw)
	return true
}

func (e *Engine) dispatch(t *turn) {
	st, ok := e.table[t.sess.Step]
	if !ok {
		e.logger.Error("No transitions for step", "user_id", t.sess.UserID, "step", t.sess.Step)
		e.unmapped(t)
		return
	}
	for _, r := range st.rules {
		if r.matches(t.input) {
			r.apply(t)
			return
		}
	}
	if st.otherwise == nil {
		e.unmapped(t)
		return
	}
	st.otherwise(t)
}

func (e *Engine) matches(step domain.Step, input string) bool {
	for _, r := range e.table[step].rules {
		if r.matches(input) {
			return true
		}
	}
	return false
}

// unmapped forwards the user to a human and ends the conversation.
func (e *Engine) unmapped(t *turn) {
	t.say(unmappedText(t.get(domain.KeyStudentID)), nil)
	e.finish(t)
}

// finish exports the session exactly once and emits the closing messages.
// Export failures are only logged; the closing message is sent either way.
func (e *Engine) finish(t *turn) {
	if t.done {
		return
	}
	t.done = true
	t.sess.Terminated = true

	if e.exporter == nil {
		t.say(msgClosing, nil)
		return
	}

	id, err := e.exporter.Export(t.ctx, t.sess)
	if e.hooks.OnExport != nil {
		e.hooks.OnExport(t.ctx, &domain.ExportEvent{
			EventBase:  e.event(domain.EventAuditExport, t.sess.UserID),
			ArtifactID: id,
			Err:        err,
		})
	}
	if err != nil {
		e.logger.Error("Audit export failed", "user_id", t.sess.UserID, "audit_id", t.sess.AuditID, "err", err)
	} else if id != "" {
		t.artifact = id
		t.say(fmt.Sprintf(msgArtifact, id), nil)
	}
	t.say(msgClosing, nil)
}

func (e *Engine) complete(t *turn, from domain.Step, start time.Time) Result {
	res := Result{Terminated: t.done, ArtifactID: t.artifact}
	for _, o := range t.out {
		res.Messages = append(res.Messages, o.Split(e.maxOutbound)...)
	}
	if !t.done {
		res.Session = t.sess
	}

	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(t.ctx, &domain.TurnEvent{
			EventBase:  e.event(domain.EventTurn, t.sess.UserID),
			From:       from,
			To:         t.sess.Step,
			Terminated: t.done,
			Messages:   len(res.Messages),
			Duration:   e.now().Sub(start),
		})
	}
	e.logger.Debug("Turn processed",
		"user_id", t.sess.UserID,
		"from", from,
		"to", t.sess.Step,
		"terminated", t.done,
	)
	return res
}

func (e *Engine) event(typ domain.EventType, userID string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: typ, UserID: userID}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
