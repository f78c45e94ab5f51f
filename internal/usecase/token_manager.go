package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"StorkPull/internal/domain/models"
	drepo "StorkPull/internal/domain/repository"
	applogger "StorkPull/pkg/logger"
)

// TokenState is the lifecycle position of an account session.
type TokenState string

const (
	StateUninitialized    TokenState = "uninitialized"
	StateValid            TokenState = "valid"
	StateExpired          TokenState = "expired"
	StateRefreshing       TokenState = "refreshing"
	StateReauthenticating TokenState = "reauthenticating"
	StateAuthFailed       TokenState = "auth_failed"
	StateResetRequired    TokenState = "password_reset_required"
)

const (
	renewalRefresh      = "refresh"
	renewalAuthenticate = "authenticate"
	renewalRotate       = "rotate"
)

// TokenManagerOption configures TokenManager.
type TokenManagerOption func(*TokenManager)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) TokenManagerOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

// TokenManager keeps one account's session valid. All renewals run under
// mu, so memory and the durable slot are updated together and concurrent
// callers share a single renewal.
type TokenManager struct {
	key     string
	store   drepo.SessionStore
	auth    drepo.Authenticator
	metrics drepo.Metrics
	l       *applogger.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *models.Session

	// readable without waiting on a renewal
	state     atomic.Value
	expiresAt atomic.Int64
}

// NewTokenManager creates a manager for the account identified by key.
func NewTokenManager(key string, store drepo.SessionStore, auth drepo.Authenticator, metrics drepo.Metrics, l *applogger.Logger, opts ...TokenManagerOption) *TokenManager {
	m := &TokenManager{
		key:     key,
		store:   store,
		auth:    auth,
		metrics: metrics,
		l:       l,
		now:     time.Now,
	}
	m.state.Store(StateUninitialized)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Init seeds memory from the durable slot and then makes sure a valid
// token is held.
func (m *TokenManager) Init(ctx context.Context) error {
	m.mu.Lock()
	if s, ok := m.store.Load(ctx, m.key); ok {
		m.setSession(s)
		if s.Expired(m.now()) {
			m.setState(StateExpired)
		}
		m.l.Debug("loaded stored session", applogger.String("state", string(m.State())))
	}
	m.mu.Unlock()

	_, err := m.GetValidToken(ctx)
	return err
}

// GetValidToken returns the access token, renewing it first when none is
// held or it has expired.
func (m *TokenManager) GetValidToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil || m.session.AccessToken == "" || m.session.Expired(m.now()) {
		if m.session != nil {
			m.setState(StateExpired)
		}
		if err := m.refreshOrAuthenticate(ctx); err != nil {
			return "", err
		}
	}
	return m.session.AccessToken, nil
}

// ForceRotate drops the durable and in-memory session and authenticates
// from scratch.
func (m *TokenManager) ForceRotate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Invalidate(ctx, m.key); err != nil {
		m.l.Warn("delete stored session", applogger.Error(err))
	}
	m.setSession(nil)
	m.metrics.RecordTokenRenewal(m.key, renewalRotate)

	return m.refreshOrAuthenticate(ctx)
}

// refreshOrAuthenticate must be called with mu held. A failed refresh
// clears the durable slot and falls through to one full authentication.
func (m *TokenManager) refreshOrAuthenticate(ctx context.Context) error {
	if m.session != nil && m.session.RefreshToken != "" {
		m.setState(StateRefreshing)
		tokens, err := m.auth.Refresh(ctx, m.session.RefreshToken)
		if err == nil {
			m.apply(ctx, tokens, renewalRefresh)
			return nil
		}

		m.metrics.RecordError(m.key, "refresh")
		m.l.Warn("refresh token rejected, re-authenticating", applogger.Error(err))
		m.setSession(nil)
		if ierr := m.store.Invalidate(ctx, m.key); ierr != nil {
			m.l.Warn("delete stored session", applogger.Error(ierr))
		} else {
			m.l.Info("deleted stored session after refresh failure")
		}
	}

	m.setState(StateReauthenticating)
	tokens, err := m.auth.Authenticate(ctx)
	if err != nil {
		m.setState(StateAuthFailed)
		kind := "auth"
		if errors.Is(err, models.ErrPasswordResetRequired) {
			m.setState(StateResetRequired)
			kind = "password_reset"
		}
		m.metrics.RecordError(m.key, kind)
		return fmt.Errorf("authenticate: %w", err)
	}
	m.apply(ctx, tokens, renewalAuthenticate)
	return nil
}

func (m *TokenManager) apply(ctx context.Context, tokens *models.TokenSet, kind string) {
	s := &models.Session{
		AccessToken:  tokens.AccessToken,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    m.now().Add(tokens.ExpiresIn),
	}
	if s.RefreshToken == "" && m.session != nil {
		s.RefreshToken = m.session.RefreshToken
	}

	m.setSession(s)
	m.metrics.RecordTokenRenewal(m.key, kind)

	if err := m.store.Save(ctx, m.key, s); err != nil {
		m.l.Error("persist session", applogger.Error(err))
	}
	m.l.Info("token renewed", applogger.String("kind", kind), applogger.Time("expires_at", s.ExpiresAt))
}

func (m *TokenManager) setSession(s *models.Session) {
	m.session = s
	if s == nil {
		m.expiresAt.Store(0)
		m.setState(StateUninitialized)
		return
	}
	var ns int64
	if !s.ExpiresAt.IsZero() {
		ns = s.ExpiresAt.UnixNano()
	}
	m.expiresAt.Store(ns)
	m.setState(StateValid)
}

func (m *TokenManager) setState(s TokenState) {
	m.state.Store(s)
}

// State reports the current lifecycle state.
func (m *TokenManager) State() TokenState {
	return m.state.Load().(TokenState)
}

// ExpiresAt is the expiry of the held session, or zero when none is held.
func (m *TokenManager) ExpiresAt() time.Time {
	ns := m.expiresAt.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
