// Package bootstrap wires the scheduler's dependencies from configuration.
package bootstrap

import (
	"fmt"

	"email-datagen/internal/executor/repository"
	executorService "email-datagen/internal/executor/service"
	"email-datagen/internal/executor/strategy"
	"email-datagen/internal/scheduler/config"
	schedulerRepository "email-datagen/internal/scheduler/repository"
	"email-datagen/internal/scheduler/service"
	"email-datagen/pkg/httpclient"
	"email-datagen/pkg/lease"
	"email-datagen/pkg/logger"
	"email-datagen/pkg/postgres"
	"email-datagen/pkg/redis"
	"email-datagen/pkg/utils"
)

// Components holds the wired services of the scheduler.
type Components struct {
	ScheduleRepo schedulerRepository.ScheduleRepository
	RunRepo      schedulerRepository.ScheduleRunRepository
	Calculator   *service.NextRunCalculator
	Engine       service.SchedulerService
	Schedules    service.ScheduleService
	Histories    service.ExecutionHistoryService

	closers []func() error
}

// Close releases the database and Redis connections.
func (c *Components) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

// Build connects to the store and assembles the engine and caller services.
// Without a Redis host the engine uses in-process leases and logs run events instead of streaming them.
func Build(cfg *config.Config, log *logger.Logger) (*Components, error) {
	loc, err := utils.LoadLocation(cfg.Scheduler.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler.time_zone: %w", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c := &Components{}
	if sqlDB, err := db.DB.DB(); err == nil {
		c.closers = append(c.closers, sqlDB.Close)
	}

	var (
		locker    lease.Locker
		publisher schedulerRepository.RunEventPublisher
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redis.NewClient(redis.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		c.closers = append(c.closers, redisClient.Close)
		locker = lease.NewRedisLocker(redisClient.Client)
		publisher = schedulerRepository.NewRedisRunEventPublisher(redisClient.Client, cfg.Redis.StreamMaxLen)
	} else {
		log.Warn("Redis is not configured, using in-process leases and logging run events")
		locker = lease.NewMemoryLocker()
		publisher = schedulerRepository.NewLogRunEventPublisher(log)
	}

	client := httpclient.New(httpclient.Config{
		Timeout:    cfg.Sender.Timeout,
		Retries:    cfg.Sender.Retries,
		RetryDelay: cfg.Sender.RetryDelay,
	}, log)
	senderRepo := repository.NewSenderRepository(client, cfg.Sender.BaseURL)
	profileRepo := repository.NewProfileRepository(client, cfg.Sender.BaseURL)
	dispatcher := executorService.NewDispatcherService(
		profileRepo,
		log,
		cfg.Scheduler.DispatchRatePerMinute,
		strategy.DefaultStrategies(senderRepo, log),
	)

	clock := utils.SystemClock{}
	c.ScheduleRepo = schedulerRepository.NewScheduleRepository(db.DB)
	c.RunRepo = schedulerRepository.NewScheduleRunRepository(db.DB)
	c.Calculator = service.NewNextRunCalculator(loc)
	c.Engine = service.NewSchedulerService(c.ScheduleRepo, c.RunRepo, dispatcher, publisher, locker, c.Calculator, clock, log, cfg.Scheduler)
	c.Schedules = service.NewScheduleService(c.ScheduleRepo, c.Calculator, clock, log)
	c.Histories = service.NewExecutionHistoryService(c.RunRepo, c.ScheduleRepo, log)
	return c, nil
}
