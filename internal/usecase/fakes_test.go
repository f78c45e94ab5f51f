package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"StorkPull/internal/domain/models"
)

type fakeStore struct {
	mu          sync.Mutex
	sessions    map[string]*models.Session
	saves       int
	invalidates int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: map[string]*models.Session{}}
}

func (f *fakeStore) Load(_ context.Context, key string) (*models.Session, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[key]
	if !ok {
		return nil, false
	}
	cp := *s
	return &cp, true
}

func (f *fakeStore) Save(_ context.Context, key string, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *s
	f.sessions[key] = &cp
	f.saves++
	return nil
}

func (f *fakeStore) Invalidate(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, key)
	f.invalidates++
	return nil
}

func (f *fakeStore) get(key string) *models.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[key]
}

type fakeAuth struct {
	mu         sync.Mutex
	authCalls  int
	refreshes  int
	authErr    error
	refreshErr error
	expiresIn  time.Duration
}

func (f *fakeAuth) Authenticate(context.Context) (*models.TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authCalls++
	if f.authErr != nil {
		return nil, f.authErr
	}
	return &models.TokenSet{AccessToken: "auth-access", IDToken: "auth-id", RefreshToken: "auth-refresh", ExpiresIn: f.lifetime()}, nil
}

func (f *fakeAuth) Refresh(_ context.Context, refreshToken string) (*models.TokenSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return nil, &models.RefreshError{Username: "u", Err: f.refreshErr}
	}
	return &models.TokenSet{AccessToken: "refreshed-access", IDToken: "refreshed-id", RefreshToken: refreshToken, ExpiresIn: f.lifetime()}, nil
}

func (f *fakeAuth) lifetime() time.Duration {
	if f.expiresIn == 0 {
		return time.Hour
	}
	return f.expiresIn
}

func (f *fakeAuth) counts() (auth, refresh int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authCalls, f.refreshes
}

var errReport = errors.New("report rejected")

type report struct {
	egress string
	valid  bool
}

type fakeOracle struct {
	mu       sync.Mutex
	prices   []models.SignedPrice
	priceErr error
	statsErr error
	points   int64
	fail     map[string]bool
	panics   map[string]bool
	reports  map[string]report
	tokens   []string
	// submits wait on block until it is closed or ctx ends
	block    chan struct{}
}

func (f *fakeOracle) UserStats(_ context.Context, _ string) (*models.UserStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	return &models.UserStats{ValidCount: f.points}, nil
}

func (f *fakeOracle) SignedPrices(_ context.Context, token string) ([]models.SignedPrice, error) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
	if f.priceErr != nil {
		return nil, &models.FetchError{Op: "prices", Err: f.priceErr}
	}
	return f.prices, nil
}

func (f *fakeOracle) SubmitValidation(ctx context.Context, _, egress, msgHash string, valid bool) error {
	if f.panics[msgHash] {
		panic("boom")
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reports == nil {
		f.reports = map[string]report{}
	}
	f.reports[msgHash] = report{egress: egress, valid: valid}
	if f.fail[msgHash] {
		return errReport
	}
	return nil
}

func (f *fakeOracle) reportCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

func freshPrice(hash string, now time.Time) models.SignedPrice {
	return models.SignedPrice{
		Asset:     "ASSET" + hash,
		MsgHash:   hash,
		Price:     decimal.NewNullDecimal(decimal.RequireFromString("101.25")),
		Timestamp: now.Add(-time.Minute),
	}
}
