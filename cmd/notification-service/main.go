package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"email-datagen/internal/notifier/config"
	"email-datagen/internal/notifier/delivery/consumer"
	"email-datagen/internal/notifier/repository"
	"email-datagen/internal/notifier/service"
	"email-datagen/pkg/logger"
	"email-datagen/pkg/redis"
	"email-datagen/pkg/telegram"
	"email-datagen/pkg/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the notification service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Notification Service", zap.String("name", cfg.App.Name))

	loc, err := utils.LoadLocation(cfg.Notifier.TimeZone)
	if err != nil {
		appLogger.Fatal("Invalid notifier.time_zone", logger.ErrorField(err))
	}

	redisClient, err := redis.NewClient(redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	telegramBot, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		appLogger.Fatal("Failed to initialize Telegram bot", logger.ErrorField(err))
	}

	stream := repository.NewRedisRunEventStream(redisClient.Client)
	notificationSvc := service.NewNotificationService(cfg.Notifier, stream, telegramBot, loc, appLogger)

	redisConsumer := consumer.NewRedisConsumer(cfg, notificationSvc, appLogger)
	if err := redisConsumer.Start(ctx); err != nil {
		appLogger.Fatal("Failed to start Redis consumer", logger.ErrorField(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	appLogger.Info("Shutting down notification service...")
	cancel()
	redisConsumer.Stop()
	appLogger.Info("Notification service stopped.")
}

func main() {
	rootCmd := &cobra.Command{Use: "notification-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-notifier.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing notification-service CLI: %s\n", err)
		os.Exit(1)
	}
}
