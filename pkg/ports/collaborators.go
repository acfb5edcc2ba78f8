package ports

import (
	"context"

	"github.com/unifecaf/triagebot/pkg/domain"
)

// CatalogClient looks up course information.
//
// Matching is case-insensitive substring and the first entry in catalog order
// wins. A miss is not an error: it yields a "not found" text listing the
// alternatives at that level.
type CatalogClient interface {
	// Query formats the catalog entries selected by filter.
	Query(ctx context.Context, filter domain.CourseFilter) (string, error)

	// Courses returns the course names in catalog order.
	Courses(ctx context.Context) ([]string, error)

	// SearchDiscipline finds the first discipline whose name appears in text.
	SearchDiscipline(ctx context.Context, text string) (domain.DisciplineMatch, bool, error)
}

// CompletionClient produces generated text for a prompt.
// Errors are recovered by the caller with deterministic fallbacks.
type CompletionClient interface {
	Complete(ctx context.Context, prompt, details string) (string, error)
}

// AuditExporter persists the record of a finished session and returns an
// identifier of the written artifact.
type AuditExporter interface {
	Export(ctx context.Context, session *domain.Session) (string, error)
}

// Watchable defines an interface for sources that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying data changes.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
