// Command orderintent runs the voice ordering intent server for the kiosk.
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

	"github.com/dawoncafe/orderintent/internal/config"
	"github.com/dawoncafe/orderintent/internal/match"
	"github.com/dawoncafe/orderintent/internal/menu"
	"github.com/dawoncafe/orderintent/internal/observe"
	"github.com/dawoncafe/orderintent/internal/server"
	"github.com/dawoncafe/orderintent/pkg/intent"
	"github.com/dawoncafe/orderintent/pkg/intent/gemini"
	"github.com/dawoncafe/orderintent/pkg/intent/openai"
	"github.com/dawoncafe/orderintent/pkg/intent/rule"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to the YAML configuration file (empty uses built-in defaults)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "orderintent: %v\n", err)
			return 1
		}
		cfg = loaded
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("metrics init failed", "error", err)
		return 1
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Warn("metrics shutdown error", "error", err)
		}
	}()

	catalog, err := loadCatalog(cfg)
	if err != nil {
		slog.Error("catalog load failed", "error", err)
		return 1
	}

	source, err := buildSource(cfg, catalog)
	if err != nil {
		slog.Error("classifier setup failed", "error", err)
		return 1
	}

	slog.Info("orderintent starting",
		"version", version,
		"listen_addr", cfg.Server.ListenAddr,
		"menu_items", len(catalog.Items()),
		"cloud_provider", string(cfg.Cloud.Provider),
	)

	srv := server.New(cfg, catalog, source, server.WithLogger(logger))
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("server error", "error", err)
		return 1
	}

	slog.Info("goodbye")
	return 0
}

// loadCatalog reads the configured menu file, or falls back to the
// compiled-in catalog.
func loadCatalog(cfg *config.Config) (*menu.Catalog, error) {
	if cfg.Menu.CatalogPath == "" {
		return menu.Default(), nil
	}
	return menu.Load(cfg.Menu.CatalogPath)
}

// buildSource assembles the intent classification chain: the configured
// cloud classifier first, the rule-based matcher as the always-available
// fallback.
func buildSource(cfg *config.Config, catalog *menu.Catalog) (intent.Source, error) {
	var resolverOpts []match.Option
	if cfg.Match.FuzzyTolerance > 0 {
		resolverOpts = append(resolverOpts, match.WithFuzzyTolerance(cfg.Match.FuzzyTolerance))
	}
	if cfg.Match.FuzzyLengthRatio > 0 {
		resolverOpts = append(resolverOpts, match.WithFuzzyLengthRatio(cfg.Match.FuzzyLengthRatio))
	}
	fallback := rule.New(match.NewResolver(catalog, resolverOpts...))

	minConfidence := cfg.Cloud.MinConfidence
	if minConfidence == 0 {
		minConfidence = config.DefaultMinConfidence
	}

	switch cfg.Cloud.Provider {
	case config.ProviderGemini:
		var opts []gemini.Option
		if cfg.Cloud.Model != "" {
			opts = append(opts, gemini.WithModel(cfg.Cloud.Model))
		}
		if cfg.Cloud.BaseURL != "" {
			opts = append(opts, gemini.WithBaseURL(cfg.Cloud.BaseURL))
		}
		if cfg.Cloud.Timeout > 0 {
			opts = append(opts, gemini.WithTimeout(cfg.Cloud.Timeout))
		}
		cloud := gemini.New(cfg.Cloud.APIKey, catalog, opts...)
		return intent.NewChain(minConfidence, cloud, fallback), nil

	case config.ProviderOpenAI:
		var opts []openai.Option
		if cfg.Cloud.Model != "" {
			opts = append(opts, openai.WithModel(cfg.Cloud.Model))
		}
		if cfg.Cloud.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.Cloud.BaseURL))
		}
		if cfg.Cloud.Timeout > 0 {
			opts = append(opts, openai.WithTimeout(cfg.Cloud.Timeout))
		}
		cloud, err := openai.New(cfg.Cloud.APIKey, catalog, opts...)
		if err != nil {
			return nil, err
		}
		return intent.NewChain(minConfidence, cloud, fallback), nil

	default:
		return fallback, nil
	}
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
