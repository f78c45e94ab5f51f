package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"StorkPull/internal/domain/models"
	"StorkPull/internal/domain/repository"
	applogger "StorkPull/pkg/logger"
	xutil "StorkPull/pkg/util"
)

// FileSessionStore keeps one JSON file per account in dir.
type FileSessionStore struct {
	dir string
	l   *applogger.Logger
}

// NewFileSessionStore creates the store, creating dir if needed.
func NewFileSessionStore(dir string, l *applogger.Logger) (repository.SessionStore, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileSessionStore{dir: dir, l: l}, nil
}

// Path is the file backing accountKey.
func (s *FileSessionStore) Path(accountKey string) string {
	return filepath.Join(s.dir, "tokens_"+xutil.SanitizeKey(accountKey)+".json")
}

func (s *FileSessionStore) Load(_ context.Context, accountKey string) (*models.Session, bool) {
	path := s.Path(accountKey)
	b, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.l.Warn("read session file", applogger.String("path", path), applogger.Error(err))
		}
		return nil, false
	}

	var rec models.SessionRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		s.l.Warn("malformed session file, ignoring", applogger.String("path", path), applogger.Error(err))
		return nil, false
	}
	return rec.Session()
}

func (s *FileSessionStore) Save(_ context.Context, accountKey string, sess *models.Session) error {
	if sess == nil {
		return errors.New("save session: nil session")
	}
	if err := xutil.WriteJSONFileAtomic(s.Path(accountKey), models.NewSessionRecord(sess), 0o600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *FileSessionStore) Invalidate(_ context.Context, accountKey string) error {
	if err := os.Remove(s.Path(accountKey)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}
