package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"readtrack/internal/modules/session/domain"
	sessionout "readtrack/internal/modules/session/port/out"
	apperrors "readtrack/internal/platform/errors"
)

const activeSessionFile = "active-session.json"

// FileActiveSessionStore keeps the single in-flight session as JSON inside the
// data directory (<vault>/.readtrack).
type FileActiveSessionStore struct {
	path string
}

func NewFileActiveSessionStore(dataDir string) sessionout.ActiveSessionStore {
	return &FileActiveSessionStore{path: filepath.Join(dataDir, activeSessionFile)}
}

func (s *FileActiveSessionStore) SaveActive(_ context.Context, session domain.ActiveSession) error {
	payload, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write active session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace active session: %w", err)
	}
	return nil
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context) (domain.ActiveSession, error) {
	payload, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	case err != nil:
		return domain.ActiveSession{}, fmt.Errorf("read active session: %w", err)
	}
	var active domain.ActiveSession
	if err := json.Unmarshal(payload, &active); err != nil {
		return domain.ActiveSession{}, fmt.Errorf("decode active session: %w", err)
	}
	if active.SessionID == "" || active.BookID == "" {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	return active, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context) error {
	err := os.Remove(s.path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("clear active session: %w", err)
}
