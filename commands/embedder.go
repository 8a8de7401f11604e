package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/innovagov/policyhub/config"
	"github.com/innovagov/policyhub/hub"
)

func newEmbedderCmd(a *app) *cobra.Command {
	var (
		metricsAddr string
		watchConfig string
	)

	cmd := &cobra.Command{
		Use:   "embedder",
		Short: "Run the async embedding worker",
		Long: `Embedder subscribes to policy creation events and writes embedding
vectors back to the store. Failed jobs are logged and skipped; the
affected policies simply stay on the LLM duplicate-detection path.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			nc, err := a.connect()
			if err != nil {
				return err
			}
			store, err := a.store(ctx)
			if err != nil {
				return err
			}

			m := a.metricsSink()
			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", m.Handler())
				srv := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
						a.logger.Error("Metrics server failed", "error", err)
					}
				}()
				defer srv.Close()
			}

			if watchConfig != "" {
				watcher, err := config.NewWatcher(watchConfig, a.logger)
				if err != nil {
					return fmt.Errorf("watch config: %w", err)
				}
				defer watcher.Close()
				if err := watcher.Start(ctx); err != nil {
					return fmt.Errorf("watch config: %w", err)
				}
				go func() {
					for cfg := range watcher.Updates() {
						a.cfg = cfg
						a.logger.Info("Embedder picked up config change")
					}
				}()
			}

			embedder := hub.NewEmbedder(store, a.embedClient(), m, a.logger)
			a.logger.Info("Embedder started", "subject", hub.SubjectPolicyCreated)

			err = embedder.Run(ctx, nc)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().StringVar(&watchConfig, "watch-config", "", "Reload this config file when it changes")
	return cmd
}
