package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"StorkPull/internal/domain/models"
	drepo "StorkPull/internal/domain/repository"
	applogger "StorkPull/pkg/logger"
)

// DefaultRotationInterval is the forced re-authentication period.
const DefaultRotationInterval = time.Hour

// SupervisorOption configures AccountSupervisor.
type SupervisorOption func(*AccountSupervisor)

// WithInterval sets the validation-cycle period.
func WithInterval(d time.Duration) SupervisorOption {
	return func(s *AccountSupervisor) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithRotationInterval sets the forced rotation period.
func WithRotationInterval(d time.Duration) SupervisorOption {
	return func(s *AccountSupervisor) {
		if d > 0 {
			s.rotation = d
		}
	}
}

// AccountSupervisor drives one account: a validation loop every interval
// and an independent forced-rotation loop.
type AccountSupervisor struct {
	assignment models.ProxyAssignment
	tokens     *TokenManager
	oracle     drepo.OracleAPI
	dispatcher *ValidationDispatcher
	metrics    drepo.Metrics
	l          *applogger.Logger
	interval   time.Duration
	rotation   time.Duration

	mu      sync.RWMutex
	running bool
	cancel  context.CancelFunc
	last    *models.CycleSummary
	points  int64

	wg sync.WaitGroup
}

// NewAccountSupervisor wires one account's pipeline.
func NewAccountSupervisor(assignment models.ProxyAssignment, tokens *TokenManager, oracle drepo.OracleAPI, dispatcher *ValidationDispatcher, metrics drepo.Metrics, l *applogger.Logger, opts ...SupervisorOption) *AccountSupervisor {
	s := &AccountSupervisor{
		assignment: assignment,
		tokens:     tokens,
		oracle:     oracle,
		dispatcher: dispatcher,
		metrics:    metrics,
		l:          l,
		interval:   10 * time.Second,
		rotation:   DefaultRotationInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Username is the supervised account.
func (s *AccountSupervisor) Username() string {
	return s.assignment.Account.Username
}

// Start initializes the session and launches both loops. It returns an
// error, and starts nothing, only when the account needs a password reset.
// Other authentication failures are logged and retried by the loops.
func (s *AccountSupervisor) Start(ctx context.Context) error {
	if err := s.tokens.Init(ctx); err != nil {
		if errors.Is(err, models.ErrPasswordResetRequired) {
			s.l.Error("password reset required, account not started", applogger.Error(err))
			return err
		}
		s.l.Error("initial authentication failed, will retry next cycle", applogger.Error(err))
	} else {
		s.l.Info("initial token ready", applogger.Int("proxies", len(s.assignment.Proxies)))
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()

	s.wg.Add(2)
	go s.validationLoop(loopCtx)
	go s.rotationLoop(loopCtx)
	return nil
}

// Stop cancels both loops and waits for them to return.
func (s *AccountSupervisor) Stop() {
	s.halt()
	s.wg.Wait()
}

// halt cancels the loops without waiting; safe to call from inside them.
func (s *AccountSupervisor) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.running = false
}

func (s *AccountSupervisor) validationLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

func (s *AccountSupervisor) rotationLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.rotation)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rotate(ctx)
		}
	}
}

func (s *AccountSupervisor) rotate(ctx context.Context) {
	s.l.Warn("forcing token rotation")
	if err := s.tokens.ForceRotate(ctx); err != nil {
		s.handleAuthError(err)
		return
	}
	s.l.Info("token rotated")
}

func (s *AccountSupervisor) handleAuthError(err error) {
	if errors.Is(err, models.ErrPasswordResetRequired) {
		s.l.Error("password reset required, stopping account", applogger.Error(err))
		s.halt()
		return
	}
	s.l.Error("token renewal failed, will retry next cycle", applogger.Error(err))
}

// RunCycle performs one fetch, validate, report pass. Failures are logged
// and recorded in the returned summary, never propagated.
func (s *AccountSupervisor) RunCycle(ctx context.Context) *models.CycleSummary {
	start := time.Now()
	summary := &models.CycleSummary{ID: uuid.NewString()}
	l := s.l.With(applogger.String("cycle_id", summary.ID))
	account := s.Username()

	defer func() {
		summary.FinishedAt = time.Now()
		s.metrics.RecordCycle(account, time.Since(start).Seconds())
		s.mu.Lock()
		s.last = summary
		s.mu.Unlock()
	}()

	token, err := s.tokens.GetValidToken(ctx)
	if err != nil {
		summary.Err = err.Error()
		s.handleAuthError(err)
		return summary
	}

	if stats, err := s.oracle.UserStats(ctx, token); err != nil {
		l.Warn("fetch user stats", applogger.Error(err))
	} else {
		summary.Points = stats.ValidCount
		s.mu.Lock()
		s.points = stats.ValidCount
		s.mu.Unlock()
		s.metrics.RecordPoints(account, stats.ValidCount)
	}

	prices, err := s.oracle.SignedPrices(ctx, token)
	if err != nil {
		summary.Err = err.Error()
		s.metrics.RecordError(account, "fetch")
		l.Error("fetch signed prices", applogger.Error(err))
		return summary
	}
	if len(prices) == 0 {
		l.Info("no data to validate")
		return summary
	}

	l.Info("validating signed prices", applogger.Int("count", len(prices)))
	agg := s.dispatcher.Dispatch(ctx, token, prices, s.assignment)
	summary.Total = agg.Total
	summary.Succeeded = agg.Succeeded

	l.Info("finished validation",
		applogger.Int("succeeded", agg.Succeeded),
		applogger.Int("total", agg.Total),
		applogger.Int("batches", agg.Batches),
		applogger.Int64("points", summary.Points),
		applogger.Duration("took_ms", time.Since(start)),
	)
	return summary
}

// Status snapshots the account for the status endpoint.
func (s *AccountSupervisor) Status() models.AccountStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := models.AccountStatus{
		Username: s.Username(),
		State:    string(s.tokens.State()),
		Running:  s.running,
		Points:   s.points,
		Proxies:  len(s.assignment.Proxies),
	}
	if exp := s.tokens.ExpiresAt(); !exp.IsZero() {
		st.SessionExpiresAt = &exp
	}
	if s.last != nil {
		last := *s.last
		st.LastCycle = &last
	}
	return st
}
