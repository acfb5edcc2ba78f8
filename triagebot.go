package triagebot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/internal/runtime"
	"github.com/unifecaf/triagebot/pkg/adapters/memory"
	"github.com/unifecaf/triagebot/pkg/audit"
	"github.com/unifecaf/triagebot/pkg/catalog"
	"github.com/unifecaf/triagebot/pkg/completion"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"
	"github.com/unifecaf/triagebot/pkg/session"
)

// Version is reported by the CLI and the HTTP health check.
var Version = "0.1.0"

// Commands recognized before the state machine sees the text.
const (
	CommandStart   = "/start"
	CommandCourses = "/cursos"
)

// ErrEmptyUserID is returned when a message carries no user identifier.
var ErrEmptyUserID = errors.New("user id is required")

// Reply is what a transport sends back for one inbound message.
type Reply struct {
	Messages   []domain.Outbound `json:"messages"`
	Terminated bool              `json:"terminated"`
	ArtifactID string            `json:"artifact_id,omitempty"`
}

// Assistant is the entry point for transports: one call per inbound message.
// Turns of the same user are serialized; different users run in parallel.
type Assistant struct {
	manager *session.Manager
	engine  *runtime.Engine
	catalog ports.CatalogClient
	logger  *slog.Logger
}

type config struct {
	store     ports.SessionStore
	locker    ports.DistributedLocker
	lockTTL   time.Duration
	ttl       time.Duration
	catalog   ports.CatalogClient
	completer ports.CompletionClient
	exporter  ports.AuditExporter
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
	maxInput  int
}

// Option configures the Assistant.
type Option func(*config)

// WithStore sets the session store (default: in memory).
func WithStore(store ports.SessionStore) Option {
	return func(c *config) {
		c.store = store
	}
}

// WithLocker serializes turns across replicas sharing the store.
func WithLocker(locker ports.DistributedLocker, ttl time.Duration) Option {
	return func(c *config) {
		c.locker = locker
		c.lockTTL = ttl
	}
}

// WithSessionTTL overrides the 30 minute session expiry.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithCatalog sets the course catalog (default: the embedded one).
func WithCatalog(cat ports.CatalogClient) Option {
	return func(c *config) {
		c.catalog = cat
	}
}

// WithCompletion sets the text-completion client (default: offline).
func WithCompletion(client ports.CompletionClient) Option {
	return func(c *config) {
		c.completer = client
	}
}

// WithExporter sets the audit exporter (default: CSV files under ./atendimentos).
func WithExporter(exporter ports.AuditExporter) Option {
	return func(c *config) {
		c.exporter = exporter
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *config) {
		c.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithClock replaces time.Now for expiry and events.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithMaxInputSize bounds the size of an accepted message, in bytes.
func WithMaxInputSize(n int) Option {
	return func(c *config) {
		c.maxInput = n
	}
}

// New builds an Assistant. Without options it keeps sessions in memory,
// answers from the embedded catalog, uses canned completions and writes CSV
// audit records to ./atendimentos.
func New(opts ...Option) *Assistant {
	c := config{
		ttl:     session.DefaultTTL,
		lockTTL: 30 * time.Second,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.store == nil {
		c.store = memory.NewStore()
	}
	if c.catalog == nil {
		c.catalog = catalog.NewClient(catalog.Default(), catalog.WithLogger(c.logger))
	}
	if c.completer == nil {
		c.completer = completion.Offline{}
	}
	if c.exporter == nil {
		c.exporter = audit.NewCSVExporter(audit.DefaultDir, audit.WithLogger(c.logger), audit.WithClock(c.now))
	}

	managerOpts := []session.Option{
		session.WithTTL(c.ttl),
		session.WithClock(c.now),
		session.WithLogger(c.logger),
		session.WithLifecycleHooks(c.hooks),
	}
	if c.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(c.locker), session.WithLockTTL(c.lockTTL))
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(c.logger),
		runtime.WithLifecycleHooks(c.hooks),
		runtime.WithClock(c.now),
	}
	if c.maxInput > 0 {
		engineOpts = append(engineOpts, runtime.WithMaxInputSize(c.maxInput))
	}

	return &Assistant{
		manager: session.NewManager(c.store, managerOpts...),
		engine:  runtime.NewEngine(c.catalog, c.completer, c.exporter, engineOpts...),
		catalog: c.catalog,
		logger:  c.logger,
	}
}

// Handle processes one inbound message of userID. Only store failures are
// returned as errors; every other problem is answered in the reply.
func (a *Assistant) Handle(ctx context.Context, userID, text string) (*Reply, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}
	cmd, args := parseCommand(text)

	var reply *Reply
	err := a.manager.WithLock(ctx, userID, func(ctx context.Context) error {
		var (
			res runtime.Result
			err error
		)
		switch cmd {
		case CommandStart:
			res, err = a.restart(ctx, userID)
		case CommandCourses:
			res, err = a.courses(ctx, userID, args)
		default:
			res, err = a.turn(ctx, userID, text)
		}
		if err != nil {
			return err
		}
		if err := a.commit(ctx, userID, res); err != nil {
			return err
		}
		reply = &Reply{Messages: res.Messages, Terminated: res.Terminated, ArtifactID: res.ArtifactID}
		return nil
	})
	if err != nil {
		a.logger.Error("Turn failed", "user_id", userID, "err", err)
		return nil, err
	}
	return reply, nil
}

// Restart discards the live session of userID without exporting it and greets again.
func (a *Assistant) Restart(ctx context.Context, userID string) (*Reply, error) {
	return a.Handle(ctx, userID, CommandStart)
}

// QueryCourses runs a catalog query outside any conversation.
func (a *Assistant) QueryCourses(ctx context.Context, filter domain.CourseFilter) (string, error) {
	text, err := a.catalog.Query(ctx, filter)
	if errors.Is(err, domain.ErrCatalogUnavailable) {
		return catalog.Unavailable, nil
	}
	return text, err
}

// Sessions lists the users with a stored session.
func (a *Assistant) Sessions(ctx context.Context) ([]string, error) {
	return a.manager.List(ctx)
}

// Manager exposes the session manager, e.g. to run the sweeper.
func (a *Assistant) Manager() *session.Manager {
	return a.manager
}

func (a *Assistant) turn(ctx context.Context, userID, text string) (runtime.Result, error) {
	sess, origin, err := a.manager.GetOrCreate(ctx, userID)
	if err != nil {
		return runtime.Result{}, err
	}
	if origin == domain.SessionResumed {
		return a.engine.Handle(ctx, sess, text)
	}
	return a.engine.Begin(ctx, sess, origin, text)
}

func (a *Assistant) restart(ctx context.Context, userID string) (runtime.Result, error) {
	sess, err := a.manager.Restart(ctx, userID)
	if err != nil {
		return runtime.Result{}, err
	}
	return a.engine.Greet(ctx, sess), nil
}

func (a *Assistant) courses(ctx context.Context, userID, query string) (runtime.Result, error) {
	sess, _, err := a.manager.GetOrCreate(ctx, userID)
	if err != nil {
		return runtime.Result{}, err
	}
	return a.engine.Courses(ctx, sess, query)
}

// commit stores the next session, or removes it after a terminal transition.
func (a *Assistant) commit(ctx context.Context, userID string, res runtime.Result) error {
	if res.Terminated {
		return a.manager.Delete(ctx, userID)
	}
	if res.Session == nil {
		return fmt.Errorf("turn for %s produced no session", userID)
	}
	return a.manager.Put(ctx, res.Session)
}

// parseCommand splits "/cmd@bot args" into a lower-cased command and its
// arguments. Text that is not a command yields an empty command.
func parseCommand(text string) (string, string) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", ""
	}
	cmd, args, _ := strings.Cut(trimmed, " ")
	if at := strings.IndexByte(cmd, '@'); at > 0 {
		cmd = cmd[:at]
	}
	return strings.ToLower(cmd), strings.TrimSpace(args)
}
