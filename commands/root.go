// Package commands implements the policyhub CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/spf13/cobra"

	"github.com/innovagov/policyhub/config"
	"github.com/innovagov/policyhub/duplicate"
	"github.com/innovagov/policyhub/embedding"
	"github.com/innovagov/policyhub/hub"
	"github.com/innovagov/policyhub/llm"
	"github.com/innovagov/policyhub/metrics"
	"github.com/innovagov/policyhub/session"
	"github.com/innovagov/policyhub/storage"
	"github.com/innovagov/policyhub/translate"
)

// Version information, set at build time.
const (
	Version = "0.1.0"
	appName = "policyhub"
)

// app carries the shared dependencies built once per invocation.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	// Lazily connected; nil until needed.
	nc *nats.Conn

	// Lazily created; shared by every AI client and service in the
	// invocation so counters aggregate in one registry.
	m *metrics.Metrics
}

// metricsSink returns the process-wide metrics instance.
func (a *app) metricsSink() *metrics.Metrics {
	if a.m == nil {
		a.m = metrics.New()
	}
	return a.m
}

// Execute builds the root command and runs it.
func Execute() error {
	a := &app{}

	var (
		configPath string
		logLevel   string
	)

	root := &cobra.Command{
		Use:   appName,
		Short: "Bilingual policy drafting and lifecycle management",
		Long: `Policyhub manages AI-assisted bilingual policy drafting: structured
drafting from free text, duplicate detection against the existing
corpus, blocking Arabic to English translation at create time, and an
asynchronous embedding pipeline over NATS.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(configPath, logLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.nc != nil {
				a.nc.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path (YAML)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(
		newDraftCmd(a),
		newDuplicatesCmd(a),
		newSubmitCmd(a),
		newListCmd(a),
		newShowCmd(a),
		newTransitionCmd(a),
		newDeleteCmd(a),
		newAttachCmd(a),
		newEmbedderCmd(a),
		newConfigCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)

	return root.Execute()
}

// setup loads config and installs the logger.
func (a *app) setup(configPath, logLevel string) error {
	level := slog.LevelWarn
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(a.logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
		if err == nil {
			err = cfg.Validate()
		}
	} else {
		cfg, err = config.NewLoader(a.logger).Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	return nil
}

// invoker builds the LLM client from config.
func (a *app) invoker() *llm.Client {
	return llm.NewClient(llm.Endpoint{
		Provider: a.cfg.Model.Provider,
		URL:      a.cfg.Model.Endpoint,
		Model:    a.cfg.Model.Name,
	}, llm.WithMetrics(a.metricsSink()), llm.WithLogger(a.logger))
}

// embedClient builds the embedding client from config.
func (a *app) embedClient() *embedding.Client {
	return embedding.NewClient(embedding.Config{
		URL:       a.cfg.Embedding.Endpoint,
		Model:     a.cfg.Embedding.Model,
		Dimension: a.cfg.Embedding.Dimension,
	}, embedding.WithLogger(a.logger))
}

// connect opens the NATS connection once per invocation.
func (a *app) connect() (*nats.Conn, error) {
	if a.nc != nil {
		return a.nc, nil
	}
	nc, err := nats.Connect(a.cfg.NATS.URL, nats.Name(appName))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS at %s: %w", a.cfg.NATS.URL, err)
	}
	a.nc = nc
	return nc, nil
}

// store builds the policy store over JetStream KV.
func (a *app) store(ctx context.Context) (storage.Store, error) {
	nc, err := a.connect()
	if err != nil {
		return nil, err
	}
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("open JetStream: %w", err)
	}
	return storage.NewNATSStore(ctx, js)
}

// service wires the full orchestration service.
func (a *app) service(ctx context.Context) (*hub.Service, error) {
	store, err := a.store(ctx)
	if err != nil {
		return nil, err
	}

	invoker := a.invoker()
	detector := duplicate.NewDetector(
		duplicate.NewEmbeddingStrategy(),
		duplicate.NewLLMStrategy(invoker, a.logger),
		a.logger,
	)

	return hub.NewService(store, translate.New(invoker, a.logger),
		hub.WithDetector(detector),
		hub.WithPublisher(a.nc),
		hub.WithMetrics(a.metricsSink()),
		hub.WithLogger(a.logger),
	), nil
}

// draftSession opens the auto-save session over the configured file.
func (a *app) draftSession() (*session.Session, error) {
	sink, err := session.NewFileSink(a.cfg.Session.Path)
	if err != nil {
		return nil, err
	}
	return session.New(sink,
		session.WithInterval(a.cfg.Session.AutosaveInterval),
		session.WithExpiry(a.cfg.Session.Expiry),
		session.WithLogger(a.logger),
	), nil
}

// detectOptions maps config to detection options.
func (a *app) detectOptions() duplicate.Options {
	return duplicate.Options{
		K:             a.cfg.Duplicate.K,
		MinEmbedScore: a.cfg.Duplicate.MinEmbedScore,
		MinLLMScore:   a.cfg.Duplicate.MinLLMScore,
		CandidateCap:  a.cfg.Duplicate.CandidateCap,
	}
}
