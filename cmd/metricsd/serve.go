package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/songzhibin97/metricsd/internal/config"
	_ "github.com/songzhibin97/metricsd/internal/log/driver/stdout"
	"github.com/songzhibin97/metricsd/internal/tracing"
	"github.com/songzhibin97/metricsd/pkg/exporter"
	"github.com/songzhibin97/metricsd/pkg/log"
)

const shutdownTimeout = 30 * time.Second

var serveFlags struct {
	moleculer bool
	port      int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the metrics server",
	Long: `Start the metrics server with the specified configuration.

Every request to the listener, whatever its path or method, is answered
with the text exposition of the registry followed by the sidecar metrics.

Examples:
  # Start with the default config
  metricsd serve

  # Override the port and skip the sidecar
  metricsd serve --port 9100 --moleculer=false`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveFlags.moleculer, "moleculer", true, "append moleculer sidecar metrics to each scrape")
	serveCmd.Flags().IntVarP(&serveFlags.port, "port", "p", 0, "override the listen port")
}

func configFile() string {
	if cfgFile != "" {
		return cfgFile
	}
	if path := config.GetDefaultConfigFile(); fileExists(path) {
		return path
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func newLogger(cfg config.LoggingConfig) (log.Logger, error) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	return log.New("stdout", log.Options{
		Level:        level,
		Development:  cfg.Development,
		Format:       cfg.Format,
		EnableCaller: cfg.EnableCaller,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile())
	if err != nil {
		return err
	}
	if serveFlags.port != 0 {
		cfg.Metrics.Port = serveFlags.port
		cfg.Metrics.Address = ""
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	log.SetDefault(logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	tp, err := tracing.NewTracerProvider(&cfg.Tracing, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	service, err := exporter.New(cfg.Metrics, log.Component("metrics"),
		exporter.WithMoleculer(serveFlags.moleculer),
		exporter.WithTracer(tp.Tracer("metricsd")),
	)
	if err != nil {
		return fmt.Errorf("failed to create metrics service: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := service.OnInit(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutting down metricsd")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := service.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server forced to shutdown", log.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to flush traces", log.Error(err))
	}
	return nil
}
