package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/unifecaf/triagebot"
	"github.com/unifecaf/triagebot/internal/config"
	"github.com/unifecaf/triagebot/pkg/adapters/file"
	"github.com/unifecaf/triagebot/pkg/adapters/memory"
	"github.com/unifecaf/triagebot/pkg/adapters/redis"
	"github.com/unifecaf/triagebot/pkg/audit"
	"github.com/unifecaf/triagebot/pkg/catalog"
	"github.com/unifecaf/triagebot/pkg/completion"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/observability"
	"github.com/unifecaf/triagebot/pkg/persistence/middleware"
	"github.com/unifecaf/triagebot/pkg/ports"
)

// app holds the assembled assistant and what must be released on exit.
type app struct {
	assistant *triagebot.Assistant
	catalog   *catalog.Client
	closers   []io.Closer
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

// build wires every collaborator named in c. Extra hooks are merged after
// the structured log hooks.
func build(ctx context.Context, c config.Config, logger *slog.Logger, hooks ...domain.LifecycleHooks) (*app, error) {
	a := &app{}
	fail := func(err error) (*app, error) {
		_ = a.Close()
		return nil, err
	}

	store, locker, err := a.openStore(c.Session)
	if err != nil {
		return fail(err)
	}

	if c.Catalog.Path != "" {
		a.catalog, err = catalog.Open(c.Catalog.Path, catalog.WithLogger(logger))
		if err != nil {
			return fail(fmt.Errorf("failed to load catalog: %w", err))
		}
	} else {
		a.catalog = catalog.NewClient(catalog.Default(), catalog.WithLogger(logger))
	}

	completer, err := completion.New(ctx, c.Completion.Provider, c.Completion.APIKey, completionOptions(c.Completion)...)
	if err != nil {
		return fail(err)
	}
	if _, offline := completer.(completion.Offline); offline {
		logger.Info("Completion disabled, answering from templates", "provider", c.Completion.Provider)
	}

	exporter, err := a.openExporter(c.Audit, logger)
	if err != nil {
		return fail(err)
	}

	merged := observability.LogHooks(logger)
	for _, h := range hooks {
		merged = merged.Merge(h)
	}

	opts := []triagebot.Option{
		triagebot.WithStore(store),
		triagebot.WithSessionTTL(c.Session.TTL),
		triagebot.WithCatalog(a.catalog),
		triagebot.WithCompletion(completer),
		triagebot.WithExporter(exporter),
		triagebot.WithLifecycleHooks(merged),
		triagebot.WithLogger(logger),
		triagebot.WithMaxInputSize(c.Session.MaxInputBytes),
	}
	if locker != nil {
		opts = append(opts, triagebot.WithLocker(locker, c.Session.LockTTL))
	}
	a.assistant = triagebot.New(opts...)
	return a, nil
}

func (a *app) openStore(c config.SessionConfig) (ports.SessionStore, ports.DistributedLocker, error) {
	var (
		store  ports.SessionStore
		locker ports.DistributedLocker
	)
	switch c.Store {
	case config.StoreRedis:
		rs := redis.New(c.RedisAddr, c.RedisPassword, c.RedisDB, redis.WithTTL(c.TTL))
		a.closers = append(a.closers, rs)
		store = rs
		locker = redis.NewLocker(rs.Client(), "triagebot:lock:")
	case config.StoreFile:
		store = file.New(c.Dir)
	default:
		store = memory.NewStore()
	}

	if c.EncryptionKey != "" {
		key, err := middleware.ParseKey(c.EncryptionKey)
		if err != nil {
			return nil, nil, err
		}
		store = middleware.Chain(store, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return store, locker, nil
}

func (a *app) openExporter(c config.AuditConfig, logger *slog.Logger) (ports.AuditExporter, error) {
	var exporter ports.AuditExporter = audit.NewCSVExporter(c.Dir, audit.WithLogger(logger))
	if c.SQLitePath != "" {
		db, err := audit.OpenSQLite(c.SQLitePath, audit.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to open audit database: %w", err)
		}
		a.closers = append(a.closers, db)
		exporter = audit.NewMulti(logger, exporter, db)
	}
	if len(c.Redact) > 0 {
		exporter = audit.Redact(exporter, c.Redact)
	}
	return exporter, nil
}

func completionOptions(c config.CompletionConfig) []completion.Option {
	opts := []completion.Option{
		completion.WithTemperature(c.Temperature),
		completion.WithMaxTokens(c.MaxTokens),
		completion.WithTimeout(c.Timeout),
	}
	if c.Model != "" {
		opts = append(opts, completion.WithModel(c.Model))
	}
	if c.BaseURL != "" {
		opts = append(opts, completion.WithBaseURL(c.BaseURL))
	}
	return opts
}
