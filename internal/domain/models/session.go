package models

import "time"

// TokenSet is what the authenticator hands back after a login or refresh.
type TokenSet struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// Session is the token triple plus the absolute instant the access token
// stops being accepted.
type Session struct {
	AccessToken  string
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// Complete reports whether all three tokens are populated.
func (s *Session) Complete() bool {
	return s != nil && s.AccessToken != "" && s.IDToken != "" && s.RefreshToken != ""
}

// Expired reports whether the access token is no longer usable at now.
// A zero expiry counts as expired.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(s.ExpiresAt)
}

// SessionRecord is the durable per-account slot.
type SessionRecord struct {
	AccessToken     string     `json:"accessToken"`
	IDToken         string     `json:"idToken"`
	RefreshToken    string     `json:"refreshToken"`
	IsAuthenticated bool       `json:"isAuthenticated"`
	IsVerifying     bool       `json:"isVerifying"`
	ExpiresAt       *time.Time `json:"expiresAt,omitempty"`
}

// NewSessionRecord converts a live session into its durable form.
func NewSessionRecord(s *Session) SessionRecord {
	r := SessionRecord{
		AccessToken:     s.AccessToken,
		IDToken:         s.IDToken,
		RefreshToken:    s.RefreshToken,
		IsAuthenticated: true,
		IsVerifying:     false,
	}
	if !s.ExpiresAt.IsZero() {
		exp := s.ExpiresAt.UTC()
		r.ExpiresAt = &exp
	}
	return r
}

// Session converts the record back. Records missing any of the three
// tokens are treated as absent; records without an expiry load as already
// expired.
func (r SessionRecord) Session() (*Session, bool) {
	s := &Session{
		AccessToken:  r.AccessToken,
		IDToken:      r.IDToken,
		RefreshToken: r.RefreshToken,
	}
	if !s.Complete() {
		return nil, false
	}
	if r.ExpiresAt != nil {
		s.ExpiresAt = *r.ExpiresAt
	}
	return s, true
}
