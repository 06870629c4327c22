package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/proactive-net/datto-check/internal/check"
	"github.com/proactive-net/datto-check/internal/config"
	"github.com/proactive-net/datto-check/internal/datto"
	"github.com/proactive-net/datto-check/internal/notify"
	"github.com/proactive-net/datto-check/internal/runner"
	"github.com/proactive-net/datto-check/internal/secrets"
)

// app wires the client, evaluator, runner and notifier for one invocation.
type app struct {
	cfg    *config.Config
	runner *runner.Runner
	logger *slog.Logger
}

func newApp(cfg *config.Config, username, password string, logger *slog.Logger) *app {
	client := datto.NewClient(datto.Config{
		BaseURL:   cfg.API.BaseURL,
		Username:  username,
		Password:  password,
		Timeout:   time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		RateLimit: cfg.API.RequestsPerMinute,
	}, logger)

	evaluator := check.NewEvaluator(cfg.Thresholds)

	return &app{
		cfg:    cfg,
		runner: runner.New(client, evaluator, logger),
		logger: logger,
	}
}

// run performs the pass, prints the report, and optionally emails it.
// The report reaches stdout before any email transport error can occur.
func (a *app) run(ctx context.Context, output string) error {
	rep, err := a.runner.Run(ctx)
	if err != nil {
		var apiErr *datto.APIError
		if errors.As(err, &apiErr) {
			fmt.Fprintf(os.Stderr, "[!]   Critical Error:  %q\n", apiErr.Message)
		}
		return err
	}

	switch output {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return fmt.Errorf("encode JSON report: %w", err)
		}
	default:
		if rep.HasFindings() {
			fmt.Println(rep.Render())
		}
	}

	if !a.cfg.Email.Enabled {
		return nil
	}
	if !rep.HasFindings() {
		a.logger.Info("no findings, skipping report email")
		return nil
	}

	emailCfg := a.cfg.Email
	if emailCfg.Username != "" {
		emailCfg.Password = a.resolveSMTPPassword(ctx)
		if emailCfg.Password == "" {
			emailCfg.Username = ""
		}
	}

	mailer := notify.NewMailer(emailCfg, a.logger)
	if err := mailer.Send(ctx, rep); err != nil {
		return err
	}
	a.logger.Info("report email sent", "to", emailCfg.To)
	return nil
}

// resolveSMTPPassword fetches the relay password from the secrets backend.
// A missing password downgrades to an unauthenticated session rather than
// losing the report.
func (a *app) resolveSMTPPassword(ctx context.Context) string {
	secretsCfg := secrets.ConfigFromEnv()
	if a.cfg.Secrets.Backend != "" {
		secretsCfg.Backend = a.cfg.Secrets.Backend
	}
	if a.cfg.Secrets.LocalPath != "" {
		secretsCfg.LocalPath = a.cfg.Secrets.LocalPath
	}

	store, err := secrets.NewStore(secretsCfg, a.logger)
	if err != nil {
		a.logger.Warn("secrets backend unavailable, sending without SMTP auth", "error", err)
		return ""
	}
	defer store.Close()

	password, err := store.Get(ctx, secrets.CredSMTPPassword)
	if err != nil {
		a.logger.Warn("SMTP password not found, sending without SMTP auth", "error", err)
		return ""
	}
	return password
}
