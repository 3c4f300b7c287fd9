package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"socialgraph/backend/internal/constants"
	"socialgraph/backend/pkg/config"
	"socialgraph/backend/pkg/logger"
)

var fixturePath string

var rootCmd = &cobra.Command{
	Use:   "socialgraph",
	Short: "In-memory social graph served over REST and GraphQL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load a fixture and mirror it into Neo4j",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&fixturePath, "fixture", "", "Fixture file to load at startup (overrides SEED_FILE)")
	rootCmd.AddCommand(serveCmd, exportCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and initializes the logger
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if err := logger.Init(cfg.Env, cfg.LogLevel); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if fixturePath == "" {
		fixturePath = cfg.SeedFile
	}
	return cfg, logger.Get(), nil
}

func runServe(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	log.Info("Starting HTTP API server...")

	a, err := newApp(ctx, cfg, fixturePath, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := a.router(cfg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("Server started",
		zap.String("port", cfg.Port),
		zap.Bool("export_enabled", cfg.ExportEnabled()),
		zap.Bool("cascade_all_posts", cfg.CascadeAllPosts))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeoutSeconds*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

func runExport(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if !cfg.ExportEnabled() {
		return errors.New("export requires NEO4J_URI")
	}

	a, err := newApp(ctx, cfg, fixturePath, log)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	written, err := a.exporter.Export(ctx)
	if err != nil {
		return err
	}
	mirror, err := a.exporter.Stats(ctx)
	if err != nil {
		return err
	}

	out, _ := json.MarshalIndent(map[string]interface{}{
		"written": written,
		"mirror":  mirror,
	}, "", "  ")
	fmt.Println(string(out))
	return nil
}
