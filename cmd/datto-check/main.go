// Command datto-check runs one health-check pass over every BCDR appliance
// on the account and prints a report of everything that breached a
// threshold.
//
// # Usage
//
//	datto-check [flags] <api-username> <api-password>
//
// Credentials may instead come from the environment (DATTOCHECK_API_USER,
// DATTOCHECK_API_PASSWORD), a local credentials file, or 1Password Connect;
// positional arguments always win.
//
// # Examples
//
// Run with explicit credentials:
//
//	datto-check apiuser apisecret
//
// Run with a config file and email the report:
//
//	datto-check --config /etc/datto-check/config.yaml --send-email
//
// Emit the structured report instead of text:
//
//	datto-check --output json
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/proactive-net/datto-check/internal/config"
	"github.com/proactive-net/datto-check/internal/secrets"
)

// Version is set at build time.
var Version = "dev"

func main() {
	var (
		configFile = flag.String("config", "", "Path to config file")
		sendEmail  = flag.Bool("send-email", false, "Email the report (overrides email.enabled)")
		output     = flag.String("output", "text", "Report format on stdout: text or json")
		debug      = flag.Bool("debug", false, "Enable debug logging")
		version    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("datto-check %s\n", Version)
		os.Exit(0)
	}

	if *output != "text" && *output != "json" {
		fmt.Fprintf(os.Stderr, "unknown output format %q\n", *output)
		usage()
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	cfg := config.DefaultConfig()
	if *configFile != "" {
		fileCfg, err := config.LoadFromFile(*configFile)
		if err != nil {
			logger.Error("failed to load config file", "error", err)
			os.Exit(1)
		}
		cfg = fileCfg
	}
	cfg.ApplyEnvOverrides()
	if *sendEmail {
		cfg.Email.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Resolve credentials: positional arguments first, then the secrets
	// backend. No network activity happens until both are present.
	username, password, err := resolveCredentials(cfg, flag.Args(), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\n[!] ERROR - Please provide the API username & password!\n")
		usage()
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	a := newApp(cfg, username, password, logger)
	if err := a.run(ctx, *output); err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Error("check run failed", "error", err)
		}
		os.Exit(1)
	}
}

// resolveCredentials returns the API username and password from positional
// arguments or the configured secrets backend.
func resolveCredentials(cfg *config.Config, args []string, logger *slog.Logger) (string, string, error) {
	if len(args) >= 2 {
		return args[0], args[1], nil
	}

	secretsCfg := secrets.ConfigFromEnv()
	if cfg.Secrets.Backend != "" {
		secretsCfg.Backend = cfg.Secrets.Backend
	}
	if cfg.Secrets.LocalPath != "" {
		secretsCfg.LocalPath = cfg.Secrets.LocalPath
	}

	store, err := secrets.NewStore(secretsCfg, logger)
	if err != nil {
		return "", "", err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	username, err := store.Get(ctx, secrets.CredAPIUsername)
	if err != nil {
		return "", "", err
	}
	password, err := store.Get(ctx, secrets.CredAPIPassword)
	if err != nil {
		return "", "", err
	}
	return username, password, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <api-username> <api-password>\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}
