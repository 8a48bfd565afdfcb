package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"email-datagen/internal/scheduler/bootstrap"
	"email-datagen/internal/scheduler/config"
	delivery "email-datagen/internal/scheduler/delivery/http"
	_ "email-datagen/internal/scheduler/docs"
	"email-datagen/pkg/logger"
	"email-datagen/pkg/utils"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	swagger "github.com/swaggo/echo-swagger"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the scheduling service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Scheduling Service",
		logger.Field("name", cfg.App.Name),
		logger.Field("time_zone", cfg.Scheduler.TimeZone),
		logger.Field("polling_interval", cfg.Scheduler.PollingInterval))

	components, err := bootstrap.Build(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
	}
	defer components.Close()

	engineDone := make(chan struct{})
	utils.GoSafe(func() {
		defer close(engineDone)
		if err := components.Engine.Start(ctx); err != nil {
			appLogger.Error("Scheduler engine stopped", logger.ErrorField(err))
		}
	})

	e := echo.New()
	e.HideBanner = true

	apiV1 := e.Group("/api/v1")
	scheduleHandler := delivery.NewScheduleHandler(components.Schedules, components.Histories, appLogger)
	scheduleHandler.RegisterRoutes(apiV1.Group("/schedules"))

	historyHandler := delivery.NewExecutionHistoryHandler(components.Histories, appLogger)
	historyHandler.RegisterRoutes(apiV1.Group("/executions"))

	e.GET("/swagger/*", swagger.WrapHandler)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	// In-flight firings finish before the store connection closes.
	select {
	case <-engineDone:
	case <-shutdownCtx.Done():
		appLogger.Warn("Scheduler engine did not stop before the shutdown deadline")
	}

	appLogger.Info("Server exiting")
}

// @title Email Data Generation Scheduler API
// @version 1.0
// @description Schedules recurring and one-off generation of test emails (phishing, EICAR, Cynic, GTUBE, custom).
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "scheduling-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-scheduler.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing scheduling-service CLI: %s\n", err)
		os.Exit(1)
	}
}
