package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"

	"StorkPull/internal/domain/models"
	applogger "StorkPull/pkg/logger"
	"StorkPull/pkg/metrics"
)

func newTestSupervisor(oracle *fakeOracle, auth *fakeAuth, store *fakeStore, opts ...SupervisorOption) *AccountSupervisor {
	assignment := models.ProxyAssignment{
		Account: models.Account{Username: testKey, Password: "pw"},
		Proxies: []string{"http://p0:1", "http://p1:1"},
	}
	tm := NewTokenManager(testKey, store, auth, metrics.Nop{}, applogger.Nop())
	d := NewValidationDispatcher(oracle, metrics.Nop{}, applogger.Nop(), 3)
	return NewAccountSupervisor(assignment, tm, oracle, d, metrics.Nop{}, applogger.Nop(), opts...)
}

func TestRunCycle(t *testing.T) {
	now := time.Now()
	oracle := &fakeOracle{prices: pricesFor(7, now), points: 1234, fail: map[string]bool{"0x06": true}}
	s := newTestSupervisor(oracle, &fakeAuth{}, newFakeStore())

	summary := s.RunCycle(context.Background())
	assert.Equal(t, summary.Err, "")
	assert.Equal(t, summary.Total, 7)
	assert.Equal(t, summary.Succeeded, 6)
	assert.Equal(t, summary.Points, int64(1234))
	assert.NotEqual(t, summary.ID, "")
	assert.Equal(t, oracle.tokens, []string{"auth-access"})

	st := s.Status()
	assert.Equal(t, st.Username, testKey)
	assert.Equal(t, st.State, string(StateValid))
	assert.Equal(t, st.Points, int64(1234))
	assert.Equal(t, st.Proxies, 2)
	assert.Equal(t, st.LastCycle.ID, summary.ID)
	assert.NotEqual(t, st.SessionExpiresAt, nil)
}

func TestRunCycleSwallowsFetchFailure(t *testing.T) {
	oracle := &fakeOracle{priceErr: errors.New("502 bad gateway")}
	s := newTestSupervisor(oracle, &fakeAuth{}, newFakeStore())

	summary := s.RunCycle(context.Background())
	assert.NotEqual(t, summary.Err, "")
	assert.Equal(t, summary.Total, 0)
	assert.Equal(t, oracle.reportCount(), 0)
}

func TestRunCycleStatsAreOptional(t *testing.T) {
	now := time.Now()
	oracle := &fakeOracle{prices: pricesFor(2, now), statsErr: errors.New("stats down")}
	s := newTestSupervisor(oracle, &fakeAuth{}, newFakeStore())

	summary := s.RunCycle(context.Background())
	assert.Equal(t, summary.Err, "")
	assert.Equal(t, summary.Succeeded, 2)
}

func TestRunCycleEmptyBatch(t *testing.T) {
	oracle := &fakeOracle{}
	s := newTestSupervisor(oracle, &fakeAuth{}, newFakeStore())

	summary := s.RunCycle(context.Background())
	assert.Equal(t, summary.Err, "")
	assert.Equal(t, summary.Total, 0)
}

func TestStartRefusesPasswordReset(t *testing.T) {
	auth := &fakeAuth{authErr: &models.AuthError{Username: testKey, Reset: true, Err: errors.New("reset")}}
	s := newTestSupervisor(&fakeOracle{}, auth, newFakeStore())

	err := s.Start(context.Background())
	assert.Equal(t, errors.Is(err, models.ErrPasswordResetRequired), true)
	assert.Equal(t, s.Status().Running, false)
	s.Stop()
}

func TestStartSurvivesAuthFailure(t *testing.T) {
	auth := &fakeAuth{authErr: &models.AuthError{Username: testKey, Err: errors.New("bad password")}}
	s := newTestSupervisor(&fakeOracle{}, auth, newFakeStore(), WithInterval(time.Hour))

	assert.Equal(t, s.Start(context.Background()), nil)
	assert.Equal(t, s.Status().Running, true)
	s.Stop()
	assert.Equal(t, s.Status().Running, false)
}

func TestSupervisorLoops(t *testing.T) {
	now := time.Now()
	oracle := &fakeOracle{prices: pricesFor(3, now)}
	auth := &fakeAuth{}
	s := newTestSupervisor(oracle, auth, newFakeStore(),
		WithInterval(10*time.Millisecond),
		WithRotationInterval(25*time.Millisecond),
	)

	assert.Equal(t, s.Start(context.Background()), nil)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		a, _ := auth.counts()
		oracle.mu.Lock()
		cycles := len(oracle.tokens)
		oracle.mu.Unlock()
		if a >= 2 && cycles >= 3 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	s.Stop()

	a, _ := auth.counts()
	assert.Equal(t, a >= 2, true)
	oracle.mu.Lock()
	cycles := len(oracle.tokens)
	oracle.mu.Unlock()
	assert.Equal(t, cycles >= 3, true)

	// nothing runs after Stop returns
	time.Sleep(30 * time.Millisecond)
	oracle.mu.Lock()
	assert.Equal(t, len(oracle.tokens), cycles)
	oracle.mu.Unlock()
}

func TestRotationNotDelayedBySlowCycle(t *testing.T) {
	now := time.Now()
	block := make(chan struct{})
	oracle := &fakeOracle{prices: pricesFor(2, now), block: block}
	auth := &fakeAuth{}
	s := newTestSupervisor(oracle, auth, newFakeStore(),
		WithInterval(time.Hour),
		WithRotationInterval(10*time.Millisecond),
	)

	assert.Equal(t, s.Start(context.Background()), nil)
	defer s.Stop()

	// the first cycle is stuck in SubmitValidation for the whole test
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if a, _ := auth.counts(); a >= 5 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	a, _ := auth.counts()
	assert.Equal(t, a >= 5, true)
	assert.Equal(t, oracle.reportCount(), 0)
	assert.Equal(t, s.Status().LastCycle == nil, true)

	close(block)
}

func TestSupervisorHaltsOnPasswordResetDuringCycle(t *testing.T) {
	auth := &fakeAuth{}
	s := newTestSupervisor(&fakeOracle{}, auth, newFakeStore(), WithInterval(5*time.Millisecond))
	assert.Equal(t, s.Start(context.Background()), nil)

	auth.mu.Lock()
	auth.authErr = &models.AuthError{Username: testKey, Reset: true, Err: errors.New("reset")}
	auth.mu.Unlock()
	assert.Equal(t, s.tokens.ForceRotate(context.Background()) != nil, true)

	deadline := time.Now().Add(2 * time.Second)
	for s.Status().Running && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, s.Status().Running, false)
	s.Stop()
}
