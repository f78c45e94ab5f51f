package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"StorkPull/internal/domain/models"
	drepo "StorkPull/internal/domain/repository"
	applogger "StorkPull/pkg/logger"
)

// DispatcherOption configures ValidationDispatcher.
type DispatcherOption func(*ValidationDispatcher)

// WithDispatchClock replaces the clock used by local validation.
func WithDispatchClock(now func() time.Time) DispatcherOption {
	return func(d *ValidationDispatcher) {
		d.now = now
	}
}

// ValidationDispatcher validates a batch locally and reports every verdict
// on its own bounded worker, rotating through the account's proxies.
type ValidationDispatcher struct {
	reporter   drepo.Reporter
	metrics    drepo.Metrics
	l          *applogger.Logger
	maxWorkers int
	now        func() time.Time
}

// NewValidationDispatcher creates a dispatcher running at most maxWorkers
// reports at a time.
func NewValidationDispatcher(reporter drepo.Reporter, metrics drepo.Metrics, l *applogger.Logger, maxWorkers int, opts ...DispatcherOption) *ValidationDispatcher {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	d := &ValidationDispatcher{
		reporter:   reporter,
		metrics:    metrics,
		l:          l,
		maxWorkers: maxWorkers,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// BatchCount is the number of ceil(n/maxWorkers)-sized groups n items form.
func BatchCount(n, maxWorkers int) int {
	if n <= 0 {
		return 0
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	size := (n + maxWorkers - 1) / maxWorkers
	return (n + size - 1) / size
}

// Dispatch reports one verdict per point and waits for all of them. Item i
// goes out through assignment.ProxyFor(i). A failing item never stops its
// siblings; the returned aggregate always holds len(points) verdicts in
// input order.
func (d *ValidationDispatcher) Dispatch(ctx context.Context, accessToken string, points []models.SignedPrice, assignment models.ProxyAssignment) *models.VerdictAggregate {
	agg := &models.VerdictAggregate{
		Total:    len(points),
		Batches:  BatchCount(len(points), d.maxWorkers),
		Verdicts: make([]models.Verdict, len(points)),
	}
	if len(points) == 0 {
		return agg
	}

	account := assignment.Account.Username
	now := d.now()

	var g errgroup.Group
	g.SetLimit(d.maxWorkers)
	for i := range points {
		egress := assignment.ProxyFor(i)
		g.Go(func() error {
			agg.Verdicts[i] = d.dispatchOne(ctx, account, accessToken, i, points[i], egress, now)
			return nil
		})
	}
	_ = g.Wait()

	for _, v := range agg.Verdicts {
		if v.Outcome.Success {
			agg.Succeeded++
		}
	}
	return agg
}

func (d *ValidationDispatcher) dispatchOne(ctx context.Context, account, accessToken string, index int, p models.SignedPrice, egress string, now time.Time) (v models.Verdict) {
	v = models.Verdict{Index: index, MsgHash: p.MsgHash, Egress: egress}

	defer func() {
		if r := recover(); r != nil {
			err := &models.DispatchItemError{MsgHash: p.MsgHash, Egress: egress, Err: fmt.Errorf("panic: %v", r)}
			v.Outcome = models.Outcome{Success: false, Reason: err.Error()}
			d.metrics.RecordError(account, "dispatch_panic")
			d.l.Error("validation worker crashed", applogger.Error(err))
		}
	}()

	v.Valid = ValidatePrice(p, now)
	if err := d.reporter.SubmitValidation(ctx, accessToken, egress, p.MsgHash, v.Valid); err != nil {
		ierr := &models.DispatchItemError{MsgHash: p.MsgHash, Egress: egress, Err: err}
		v.Outcome = models.Outcome{Success: false, Reason: ierr.Error()}
		d.metrics.RecordValidation(account, false)
		d.l.Warn("validation report failed", applogger.Error(ierr))
		return v
	}

	v.Outcome = models.Outcome{Success: true}
	d.metrics.RecordValidation(account, true)
	d.l.Debug("validation reported",
		applogger.String("msg_hash", models.ShortHash(p.MsgHash)),
		applogger.Bool("valid", v.Valid),
		applogger.String("egress", models.EgressLabel(egress)),
	)
	return v
}
