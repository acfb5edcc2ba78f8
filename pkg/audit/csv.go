package audit

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"

	"github.com/unifecaf/triagebot/internal/fsutil"
	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"
)

// DefaultDir is where CSV artifacts are written unless configured otherwise.
const DefaultDir = "atendimentos"

// CSVExporter writes one CSV file per finished session.
type CSVExporter struct {
	dir string
	cfg config
}

var _ ports.AuditExporter = (*CSVExporter)(nil)

// NewCSVExporter writes into dir, creating it on first use.
func NewCSVExporter(dir string, opts ...Option) *CSVExporter {
	if dir == "" {
		dir = DefaultDir
	}
	return &CSVExporter{dir: dir, cfg: newConfig(opts)}
}

// Export writes the record and returns the path of the file.
func (e *CSVExporter) Export(ctx context.Context, s *domain.Session) (string, error) {
	rec := NewRecord(s, e.cfg.now())

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"CHAVE", "VALOR"})
	for _, entry := range rec.Entries {
		_ = w.Write([]string{entry.Key, entry.Value})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to encode audit record: %w", err)
	}

	path := filepath.Join(e.dir, rec.ArtifactID)
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write audit record: %w", err)
	}
	e.cfg.logger.Info("Audit record written", "path", path, "user_id", s.UserID, "audit_id", s.AuditID)
	return path, nil
}
