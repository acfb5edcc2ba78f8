package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"
)

// Client implements ports.CatalogClient over a swappable Catalog snapshot.
// Reloads replace the snapshot atomically; in-flight lookups keep the old one.
type Client struct {
	current atomic.Pointer[Catalog]
	path    string
	logger  *slog.Logger
}

var _ ports.CatalogClient = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithLogger configures a logger for reload events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient serves the given catalog. A nil catalog makes every lookup
// report domain.ErrCatalogUnavailable.
func NewClient(cat *Catalog, opts ...Option) *Client {
	c := &Client{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	c.current.Store(cat)
	return c
}

// Open loads the catalog at path and returns a client able to reload it.
func Open(path string, opts ...Option) (*Client, error) {
	cat, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	c := NewClient(cat, opts...)
	c.path = path
	return c, nil
}

// Catalog returns the current snapshot.
func (c *Client) Catalog() *Catalog {
	return c.current.Load()
}

// Reload re-reads the backing file. On failure the previous snapshot stays active.
func (c *Client) Reload() error {
	if c.path == "" {
		return fmt.Errorf("catalog has no backing file")
	}
	cat, err := LoadFile(c.path)
	if err != nil {
		return fmt.Errorf("failed to reload catalog: %w", err)
	}
	c.current.Store(cat)
	c.logger.Info("Catalog reloaded", "path", c.path, "courses", len(cat.Courses))
	return nil
}

// Follow reloads the catalog every time w signals a change, until ctx is done.
func (c *Client) Follow(ctx context.Context, w ports.Watchable) error {
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch catalog: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := c.Reload(); err != nil {
				c.logger.Warn("Catalog reload failed, keeping previous data", "path", c.path, "err", err)
			}
		}
	}
}

func (c *Client) snapshot() (*Catalog, error) {
	cat := c.current.Load()
	if cat.Empty() {
		return nil, domain.ErrCatalogUnavailable
	}
	return cat, nil
}

// Query formats the entries selected by filter.
func (c *Client) Query(ctx context.Context, filter domain.CourseFilter) (string, error) {
	cat, err := c.snapshot()
	if err != nil {
		return "", err
	}
	return cat.Query(filter), nil
}

// Courses returns the course names in catalog order.
func (c *Client) Courses(ctx context.Context) ([]string, error) {
	cat, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return cat.CourseNames(), nil
}

// SearchDiscipline finds the first discipline named in text.
func (c *Client) SearchDiscipline(ctx context.Context, text string) (domain.DisciplineMatch, bool, error) {
	cat, err := c.snapshot()
	if err != nil {
		return domain.DisciplineMatch{}, false, err
	}
	m, ok := cat.SearchDiscipline(text)
	return m, ok, nil
}
