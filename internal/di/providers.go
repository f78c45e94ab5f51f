package di

import (
	"fmt"

	"StorkPull/internal/domain/models"
	"StorkPull/internal/domain/repository"
	"StorkPull/internal/handler/api"
	internalrepo "StorkPull/internal/repository"
	"StorkPull/internal/service/cognito"
	"StorkPull/internal/service/stork"
	"StorkPull/internal/usecase"
	"StorkPull/pkg/cache"
	"StorkPull/pkg/config"
	xhttp "StorkPull/pkg/http"
	applogger "StorkPull/pkg/logger"
	"StorkPull/pkg/metrics"
	"StorkPull/pkg/server"
)

// ProxyPool is the flat list of egress URIs read at startup.
type ProxyPool []string

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideSessionStore picks the durable session backend.
func ProvideSessionStore(cfg *config.Config, l *applogger.Logger) (repository.SessionStore, func(), error) {
	switch cfg.Session.Backend {
	case "redis":
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Session.Redis.Host),
			cache.WithRedisPort(cfg.Session.Redis.Port),
			cache.WithRedisPassword(cfg.Session.Redis.Password),
			cache.WithRedisDB(cfg.Session.Redis.DB),
			cache.WithRedisPrefix(cfg.Session.Redis.Prefix),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("redis session store: %w", err)
		}
		cleanup := func() {
			if err := rc.Close(); err != nil {
				l.Warn("redis close error", applogger.Error(err))
			}
		}
		return internalrepo.NewCacheSessionStore(rc, l), cleanup, nil
	case "memory":
		mc := cache.NewMemoryCache()
		return internalrepo.NewCacheSessionStore(mc, l), func() { _ = mc.Close() }, nil
	default:
		store, err := internalrepo.NewFileSessionStore(cfg.Session.Dir, l)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

// ProvideOracle creates the Stork API client shared by all accounts.
func ProvideOracle(cfg *config.Config) repository.OracleAPI {
	return stork.New(cfg.Stork.BaseURL,
		stork.WithUserAgent(cfg.Stork.UserAgent),
		stork.WithOrigin(cfg.Stork.Origin),
		stork.WithTimeout(cfg.Stork.RequestTimeout),
	)
}

// ProvideProxyPool loads the proxy file.
func ProvideProxyPool(cfg *config.Config, l *applogger.Logger) (ProxyPool, error) {
	pool, err := internalrepo.LoadProxyPool(cfg.Proxies.File, l)
	if err != nil {
		return nil, err
	}
	l.Info("proxies loaded", applogger.Int("count", len(pool)), applogger.String("file", cfg.Proxies.File))
	return ProxyPool(pool), nil
}

// ProvideAssignments distributes the pool across configured accounts.
func ProvideAssignments(cfg *config.Config, pool ProxyPool) []models.ProxyAssignment {
	return usecase.AssignProxies(Accounts(cfg), pool)
}

// Accounts converts configured accounts into domain identities.
func Accounts(cfg *config.Config) []models.Account {
	out := make([]models.Account, 0, len(cfg.Accounts))
	for _, a := range cfg.Accounts {
		out = append(out, models.Account{
			Region:     a.Region,
			ClientID:   a.ClientID,
			UserPoolID: a.UserPoolID,
			Username:   a.Username,
			Password:   a.Password,
			MaxProxies: a.MaxProxies,
		})
	}
	return out
}

// ProvideFleet builds one supervisor per account with credentials.
// Accounts without username or password are reported and skipped.
func ProvideFleet(
	cfg *config.Config,
	assignments []models.ProxyAssignment,
	store repository.SessionStore,
	oracle repository.OracleAPI,
	m repository.Metrics,
	l *applogger.Logger,
) (*usecase.Fleet, error) {
	supervisors := make([]*usecase.AccountSupervisor, 0, len(assignments))
	for i, asg := range assignments {
		acct := asg.Account
		if !acct.HasCredentials() {
			l.Error("missing username/password for an account, skipping", applogger.Int("index", i))
			continue
		}

		al := l.With(applogger.String("account", acct.Username))
		auth, err := cognito.New(acct,
			cognito.WithFlow(cfg.Stork.AuthFlow),
			cognito.WithTimeout(cfg.Stork.RequestTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("authenticator %s: %w", acct.Username, err)
		}

		tokens := usecase.NewTokenManager(acct.Username, store, auth, m, al)
		dispatcher := usecase.NewValidationDispatcher(oracle, m, al, cfg.Threads.MaxWorkers)
		supervisors = append(supervisors, usecase.NewAccountSupervisor(asg, tokens, oracle, dispatcher, m, al,
			usecase.WithInterval(cfg.Interval()),
			usecase.WithRotationInterval(cfg.Stork.RotationInterval),
		))
	}
	return usecase.NewFleet(l, supervisors...), nil
}

// ProvideStatusHandler exposes the fleet over HTTP.
func ProvideStatusHandler(fleet *usecase.Fleet, l *applogger.Logger) xhttp.Handler {
	return api.NewStatusHandler(fleet, l)
}

// ProvideHTTPServer creates the status server, or nil when disabled.
func ProvideHTTPServer(cfg *config.Config, h xhttp.Handler, l *applogger.Logger) *xhttp.Server {
	if !cfg.Server.Enabled {
		return nil
	}
	return xhttp.NewServer(h, l,
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, fleet *usecase.Fleet, srv *xhttp.Server, l *applogger.Logger) *server.App {
	return server.New(cfg, fleet, srv, l)
}
