package usecase

import (
	"context"
	"sync"

	"StorkPull/internal/domain/models"
	applogger "StorkPull/pkg/logger"
)

// Fleet owns every account supervisor of the process.
type Fleet struct {
	supervisors []*AccountSupervisor
	l           *applogger.Logger
}

// NewFleet groups supervisors.
func NewFleet(l *applogger.Logger, supervisors ...*AccountSupervisor) *Fleet {
	return &Fleet{supervisors: supervisors, l: l}
}

// Len is the number of supervised accounts.
func (f *Fleet) Len() int { return len(f.supervisors) }

// StartAll brings every account up concurrently and waits until each has
// either started or been refused. A slow or failing account never delays
// the others.
func (f *Fleet) StartAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, s := range f.supervisors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Start(ctx); err != nil {
				f.l.Error("account not started", applogger.String("account", s.Username()), applogger.Error(err))
			}
		}()
	}
	wg.Wait()
}

// StopAll stops every supervisor and waits for their loops.
func (f *Fleet) StopAll() {
	var wg sync.WaitGroup
	for _, s := range f.supervisors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Stop()
		}()
	}
	wg.Wait()
}

// Statuses snapshots all accounts in configuration order.
func (f *Fleet) Statuses() []models.AccountStatus {
	out := make([]models.AccountStatus, 0, len(f.supervisors))
	for _, s := range f.supervisors {
		out = append(out, s.Status())
	}
	return out
}
