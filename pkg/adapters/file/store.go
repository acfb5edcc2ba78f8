package file

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/unifecaf/triagebot/internal/fsutil"
	"github.com/unifecaf/triagebot/pkg/domain"
)

const ext = ".json"

// Store implements ports.SessionStore using the local filesystem.
// It stores sessions as JSON files in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".triagebot/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".triagebot", "sessions")
	}
	return &Store{BasePath: basePath}
}

// path escapes the user ID so arbitrary identifiers map to a single file name.
func (s *Store) path(userID string) string {
	return filepath.Join(s.BasePath, url.PathEscape(userID)+ext)
}

// Save persists the session to a JSON file atomically.
func (s *Store) Save(ctx context.Context, userID string, session *domain.Session) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := fsutil.WriteFileAtomic(s.path(userID), data, 0o600); err != nil {
		return fmt.Errorf("failed to save session %s: %w", userID, err)
	}
	return nil
}

// Load retrieves the session from its JSON file.
func (s *Store) Load(ctx context.Context, userID string) (*domain.Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("userID cannot be empty")
	}

	data, err := os.ReadFile(s.path(userID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("userID cannot be empty")
	}

	err := os.Remove(s.path(userID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns the user IDs of all stored sessions.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var users []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ext || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		id, err := url.PathUnescape(strings.TrimSuffix(name, ext))
		if err != nil {
			continue
		}
		users = append(users, id)
	}
	return users, nil
}
