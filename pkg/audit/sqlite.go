package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/unifecaf/triagebot/pkg/domain"
	"github.com/unifecaf/triagebot/pkg/ports"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_records (
	artifact_id TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	audit_id    TEXT NOT NULL,
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS audit_entries (
	artifact_id TEXT    NOT NULL REFERENCES audit_records(artifact_id),
	position    INTEGER NOT NULL,
	key         TEXT    NOT NULL,
	value       TEXT    NOT NULL,
	PRIMARY KEY (artifact_id, position)
);
CREATE INDEX IF NOT EXISTS audit_records_user ON audit_records(user_id);
`

// SQLiteExporter stores records in a SQLite database, one row per entry.
type SQLiteExporter struct {
	db  *sql.DB
	cfg config
}

var _ ports.AuditExporter = (*SQLiteExporter)(nil)

// OpenSQLite opens (or creates) the database at path and applies the schema.
func OpenSQLite(path string, opts ...Option) (*SQLiteExporter, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply audit schema: %w", err)
	}
	return &SQLiteExporter{db: db, cfg: newConfig(opts)}, nil
}

// Export inserts the record in one transaction and returns its artifact id.
func (e *SQLiteExporter) Export(ctx context.Context, s *domain.Session) (string, error) {
	rec := NewRecord(s, e.cfg.now())

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin audit transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audit_records (artifact_id, user_id, audit_id, started_at, finished_at) VALUES (?, ?, ?, ?, ?)`,
		rec.ArtifactID, s.UserID, s.AuditID, rec.Start.Format(TimeLayout), rec.End.Format(TimeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert audit record: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO audit_entries (artifact_id, position, key, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare audit entries: %w", err)
	}
	defer stmt.Close()

	for i, entry := range rec.Entries {
		if _, err := stmt.ExecContext(ctx, rec.ArtifactID, i, entry.Key, entry.Value); err != nil {
			return "", fmt.Errorf("failed to insert audit entry %q: %w", entry.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit audit record: %w", err)
	}
	e.cfg.logger.Info("Audit record stored", "artifact_id", rec.ArtifactID, "user_id", s.UserID)
	return rec.ArtifactID, nil
}

// Entries reads back the rows of an exported record, in order.
func (e *SQLiteExporter) Entries(ctx context.Context, artifactID string) ([]Entry, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT key, value FROM audit_entries WHERE artifact_id = ? ORDER BY position`, artifactID)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Key, &entry.Value); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

// Close releases the database.
func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}
