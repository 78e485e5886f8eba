package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"vawter.tech/stopper"

	progresso "github.com/axondata/go-progresso"
	"github.com/axondata/go-progresso/internal/config"
	"github.com/axondata/go-progresso/internal/telemetry"
)

// stopGrace is how long a stop request waits before in-flight backend calls
// are cancelled.
const stopGrace = 5 * time.Second

var (
	runInput       string
	runBackend     string
	runOutputDir   string
	runMetricsAddr string
	runDryRun      bool
	runStrict      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the target document",
	Long: `Process every service of the target document in order.

A stop is requested by SIGINT/SIGTERM or by creating the stop file
(default: progresso.stop). The service being processed finishes its
current poll; services not yet started are left out of the progress file.

Examples:
  # Run with progresso.yaml (or defaults) in the current directory
  progresso run

  # Run a YAML target list against runit services
  progresso run --input targets.yaml --backend runit

  # Simulate without touching any service
  progresso run --dry-run`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "target document (overrides config)")
	runCmd.Flags().StringVar(&runBackend, "backend", "", "control backend: sc, systemd, runit, daemontools, memory")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "directory for the progress file")
	runCmd.Flags().StringVar(&runMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "use the in-memory backend")
	runCmd.Flags().BoolVar(&runStrict, "strict", false, "fail on a malformed target document")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	applyRunFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := telemetry.SetupLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	started := time.Now()

	doc, err := progresso.LoadTargets(cfg.Input, progresso.LoadOptions{Strict: cfg.StrictParse, Logger: logger})
	if err != nil {
		return err
	}

	backend, err := progresso.NewBackend(cfg.BackendType(), cfg.BackendConfig())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", progresso.ErrOutputCreate, err)
	}
	recorder := progresso.NewRecorder(cfg.OutputDir, cfg.OutputPrefix, progresso.FormatFromPath(cfg.Input), started)
	if err := recorder.Create(); err != nil {
		return err
	}

	var metrics *progresso.Metrics
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		if metrics, err = progresso.NewMetrics(reg); err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}
		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer shutdownMetrics(srv, logger)
	}

	orch := progresso.NewOrchestrator(backend, progresso.NewCPUSampler(), recorder,
		progresso.WithLogger(logger),
		progresso.WithMetrics(metrics),
	)
	logger.Info("run starting",
		"run_id", orch.RunID(),
		"input", cfg.Input,
		"backend", cfg.Backend,
		"services", doc.Len(),
		"output", recorder.Path())

	sigCtx, stopSignals := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	sctx := stopper.WithContext(context.Background())

	sctx.Go(func(sctx *stopper.Context) error {
		select {
		case <-sigCtx.Done():
			logger.Info("stop signal received")
			sctx.Stop(stopGrace)
		case <-sctx.Stopping():
		}
		return nil
	})

	if err := progresso.WatchStopFile(sctx, cfg.StopFile, logger, func() { sctx.Stop(stopGrace) }); err != nil {
		logger.Warn("stop file watch unavailable", "error", err)
	}

	var (
		progress *progresso.ProgressDocument
		runErr   error
	)
	sctx.Go(func(sctx *stopper.Context) error {
		progress, runErr = orch.Run(sctx, doc)
		sctx.Stop(stopGrace)
		return nil
	})
	_ = sctx.Wait()

	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Processed %d of %d service(s)\nProgress file: %s\n",
		progress.Len(), doc.Len(), recorder.Path())
	return nil
}

func applyRunFlags(cfg *config.Config) {
	if runInput != "" {
		cfg.Input = runInput
	}
	if runBackend != "" {
		cfg.Backend = runBackend
	}
	if runDryRun {
		cfg.Backend = progresso.BackendMemory.String()
	}
	if runOutputDir != "" {
		cfg.OutputDir = runOutputDir
	}
	if runMetricsAddr != "" {
		cfg.MetricsAddr = runMetricsAddr
	}
	if runStrict {
		cfg.StrictParse = true
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics enabled", "addr", addr)
	return srv
}

func shutdownMetrics(srv *http.Server, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("metrics server shutdown", "error", err)
	}
}
