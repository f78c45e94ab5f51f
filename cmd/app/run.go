package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"StorkPull/internal/di"
	"StorkPull/internal/usecase"
	"StorkPull/pkg/config"
	xhttp "StorkPull/pkg/http"
	applogger "StorkPull/pkg/logger"
)

func loadConfig(path, proxyFile string) (*config.Config, error) {
	cfg, err := config.LoadWithEnv(path)
	if errors.Is(err, config.ErrCreatedDefault) {
		l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stderr"})
		l.Warn("config file not found, wrote a default one; fill in account credentials", applogger.String("path", path))
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if proxyFile != "" {
		cfg.Proxies.File = proxyFile
	}
	return cfg, nil
}

func runValidator(ctx context.Context, configPath, proxyFile string) error {
	cfg, err := loadConfig(configPath, proxyFile)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("app initialization failed: %w", err)
	}
	defer cleanup()

	return app.Run(ctx)
}

func printAssignments(w io.Writer, configPath, proxyFile string) error {
	cfg, err := loadConfig(configPath, proxyFile)
	if err != nil {
		return err
	}

	l, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}
	pool, err := di.ProvideProxyPool(cfg, l)
	if err != nil {
		return err
	}

	for _, a := range usecase.AssignProxies(di.Accounts(cfg), pool) {
		name := a.Account.Username
		if name == "" {
			name = "(no username)"
		}
		fmt.Fprintf(w, "%s\n", name)
		if len(a.Proxies) == 0 {
			fmt.Fprintln(w, "  direct")
			continue
		}
		for _, p := range a.Proxies {
			kind := "unsupported"
			if e, err := xhttp.ParseEgress(p); err == nil {
				kind = e.Kind.String()
			}
			fmt.Fprintf(w, "  %-6s %s\n", kind, p)
		}
	}
	return nil
}
