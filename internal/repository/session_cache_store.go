package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"StorkPull/internal/domain/models"
	"StorkPull/internal/domain/repository"
	"StorkPull/pkg/cache"
	applogger "StorkPull/pkg/logger"
	xutil "StorkPull/pkg/util"
)

const sessionKeyPrefix = "session"

// CacheSessionStore keeps session records in a cache.Service (redis or memory).
type CacheSessionStore struct {
	cache cache.Service
	l     *applogger.Logger
}

// NewCacheSessionStore creates a session store over c.
func NewCacheSessionStore(c cache.Service, l *applogger.Logger) repository.SessionStore {
	return &CacheSessionStore{cache: c, l: l}
}

func sessionKey(accountKey string) string {
	return cache.GenerateKey(sessionKeyPrefix, xutil.SanitizeKey(accountKey))
}

func (s *CacheSessionStore) Load(ctx context.Context, accountKey string) (*models.Session, bool) {
	var raw string
	if err := s.cache.Get(ctx, sessionKey(accountKey), &raw); err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.l.Warn("read session", applogger.String("key", sessionKey(accountKey)), applogger.Error(err))
		}
		return nil, false
	}

	var rec models.SessionRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		s.l.Warn("malformed session record, ignoring", applogger.String("key", sessionKey(accountKey)), applogger.Error(err))
		return nil, false
	}
	return rec.Session()
}

func (s *CacheSessionStore) Save(ctx context.Context, accountKey string, sess *models.Session) error {
	if sess == nil {
		return errors.New("save session: nil session")
	}
	b, err := json.Marshal(models.NewSessionRecord(sess))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	// no TTL: the refresh token outlives the access token
	if err := s.cache.Set(ctx, sessionKey(accountKey), string(b), 0); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *CacheSessionStore) Invalidate(ctx context.Context, accountKey string) error {
	if err := s.cache.Delete(ctx, sessionKey(accountKey)); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}
