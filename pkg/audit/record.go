// Package audit writes the record of a finished conversation: a flat list of
// key/value rows with fixed header rows followed by every collected
// attribute in insertion order.
package audit

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/pkg/domain"
)

// TimeLayout formats the start and end rows.
const TimeLayout = "2006-01-02 15:04:05"

// Header row keys, in order.
const (
	KeyUserID  = "user_id"
	KeyAuditID = "id_atendimento"
	KeyStart   = "inicio"
	KeyEnd     = "fim"
)

// Entry is one row of a record.
type Entry struct {
	Key   string
	Value string
}

// Record is the flattened export of one session.
type Record struct {
	ArtifactID string
	Start      time.Time
	End        time.Time
	Entries    []Entry
}

// NewRecord flattens s, finished at end.
func NewRecord(s *domain.Session, end time.Time) Record {
	entries := []Entry{
		{KeyUserID, s.UserID},
		{KeyAuditID, s.AuditID},
		{KeyStart, s.CreatedAt.Format(TimeLayout)},
		{KeyEnd, end.Format(TimeLayout)},
	}
	for _, a := range s.Attributes.Entries() {
		entries = append(entries, Entry{a.Key, a.Value})
	}
	return Record{
		ArtifactID: ArtifactName(s.UserID, s.AuditID, end),
		Start:      s.CreatedAt,
		End:        end,
		Entries:    entries,
	}
}

// ArtifactName builds atendimento_<user>_<audit>_<YYYY-MM-DD_HHhMM>.csv.
// Characters unsafe in file names are replaced in the user part.
func ArtifactName(userID, auditID string, end time.Time) string {
	return fmt.Sprintf("atendimento_%s_%s_%s.csv", safeName(userID), auditID, end.Format("2006-01-02_15h04"))
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

// Option configures an exporter.
type Option func(*config)

type config struct {
	now    func() time.Time
	logger *slog.Logger
}

func newConfig(opts []Option) config {
	c := config{now: time.Now, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithClock replaces time.Now when stamping the end of a record.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

// WithLogger configures a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
