package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giygas/vetdose/config"
	"github.com/giygas/vetdose/data"
	"github.com/giygas/vetdose/formulary"
	"github.com/giygas/vetdose/handlers"
	"github.com/giygas/vetdose/health"
	"github.com/giygas/vetdose/logging"
	"github.com/giygas/vetdose/scheduler"
	"github.com/giygas/vetdose/server"
	"github.com/giygas/vetdose/session"
	"github.com/giygas/vetdose/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "vetdose",
		Short:        "Veterinary weight-based dosing calculator",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(doseCmd())
	rootCmd.AddCommand(catalogCmd())

	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dosing HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

// loadEnv reads .env from the working directory, falling back to the
// executable directory
func loadEnv() {
	if err := godotenv.Load(); err == nil {
		return
	}

	ex, err := os.Executable()
	if err != nil {
		return
	}
	if err := godotenv.Load(filepath.Join(filepath.Dir(ex), ".env")); err != nil {
		logging.Debug("No .env file found, using the process environment")
	}
}

func runServer() error {
	loadEnv()

	cfg, err := config.Load()
	if err != nil {
		logging.Error("Failed to load configuration", "error", err)
		return err
	}

	logging.InitLoggerWithOptions(logging.Options{
		Dir:            cfg.LogDir,
		Level:          logging.ParseLevel(cfg.LogLevel),
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	})
	defer logging.Close()

	dataContainer := data.NewDataContainer()
	dataContainer.SetServerStartTime(time.Now())
	sessions := session.NewStore()
	validator := validation.NewCatalogValidator()

	sched := scheduler.NewScheduler(
		dataContainer,
		formulary.Source{Path: cfg.CatalogPath},
		sessions,
		validator,
		scheduler.Options{
			SessionIdle:   cfg.SessionIdle(),
			SweepInterval: cfg.SessionSweepMinutes,
		},
	)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	healthChecker := health.NewHealthChecker(dataContainer, sessions)
	httpHandler := handlers.NewHTTPHandler(dataContainer, sessions, validator, healthChecker)
	srv := server.NewServer(cfg, httpHandler)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(quit)

	for {
		select {
		case err := <-errCh:
			if err != nil {
				logging.Error("Server failed to start", "error", err)
			}
			return err
		case sig := <-quit:
			if sig == syscall.SIGHUP {
				logging.Info("Reloading catalog on SIGHUP")
				if err := sched.ReloadCatalog(); err != nil {
					logging.Error("Catalog reload failed, keeping the current catalog", "error", err)
				}
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := srv.Shutdown(ctx)
			cancel()
			if err != nil {
				return fmt.Errorf("shutdown failed: %w", err)
			}
			return <-errCh
		}
	}
}
