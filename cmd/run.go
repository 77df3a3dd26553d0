package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MichiMauch/geomaster.world-sub001/api"
	"github.com/MichiMauch/geomaster.world-sub001/config"
	"github.com/MichiMauch/geomaster.world-sub001/database"
	"github.com/MichiMauch/geomaster.world-sub001/events"
	"github.com/MichiMauch/geomaster.world-sub001/infrastructure"
	"github.com/MichiMauch/geomaster.world-sub001/infrastructure/cache"
	"github.com/MichiMauch/geomaster.world-sub001/repository"
	"github.com/MichiMauch/geomaster.world-sub001/scheduler"
	"github.com/MichiMauch/geomaster.world-sub001/service"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const repairConcurrency = 4

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg.LogLevel, cfg.LogFormat)

	log.WithField("environment", cfg.Environment).Info("Starting leaderboard service...")

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established successfully")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	gameTypes := service.NewGameTypes(cfg.GameTypes)

	readiness := []api.ReadinessCheck{{Name: "postgres", Check: db.Ping}}

	// Overall leaderboard cache
	var overallCache service.OverallLeaderboardCache
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Info("Connecting to Redis...")
		redisClient, err = cache.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()

		c, err := cache.NewOverallLeaderboardCache(redisClient, cache.DefaultKeyPrefix, cfg.OverallCacheTTL)
		if err != nil {
			return fmt.Errorf("failed to create overall leaderboard cache: %w", err)
		}
		overallCache = c
		readiness = append(readiness, api.ReadinessCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
		log.WithField("ttl", cfg.OverallCacheTTL).Info("Overall leaderboard cache enabled")
	} else {
		log.Warn("REDIS_URL not set, overall leaderboard is recomputed on every read")
	}

	// Initialize services
	log.Info("Initializing services...")
	rankingService := service.NewRankingService(uowFactory, gameTypes)
	overallService := service.NewOverallLeaderboardService(uowFactory, overallCache)
	duelService := service.NewDuelService(uowFactory, gameTypes, service.NewScoreThenTimeJudge(), overallService)
	leaderboardService := service.NewLeaderboardService(uowFactory, gameTypes)
	repairService := service.NewRepairService(uowFactory, repairConcurrency)
	log.WithField("gameTypes", cfg.GameTypes).Info("Services initialized successfully")

	// Event publishing to NATS
	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers, "leaderboard")
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()

		mapper := infrastructure.NewEventSubjectMapper()
		if err := natsClient.EnsureStream(infrastructure.EventStreamName, mapper.GetAllSubjects()); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		infrastructure.NewNATSEventPublisher(natsClient, mapper).Subscribe(eventBus)
		readiness = append(readiness, api.ReadinessCheck{
			Name: "nats",
			Check: func(context.Context) error {
				if !natsClient.IsConnected() {
					return errors.New("not connected")
				}
				return nil
			},
		})
		log.Info("Event publishing to NATS enabled")
	}

	// Duel notifications
	if cfg.DiscordWebhookURL != "" {
		notifier, err := infrastructure.NewDiscordNotifier(cfg.DiscordWebhookURL)
		if err != nil {
			return fmt.Errorf("failed to create discord notifier: %w", err)
		}
		infrastructure.NewNotificationDispatcher(notifier).Subscribe(eventBus)
		log.Info("Discord duel notifications enabled")
	}

	// Periodic rank repair
	var repairScheduler *scheduler.RepairScheduler
	if cfg.RepairInterval > 0 {
		repairScheduler, err = scheduler.NewRepairScheduler(repairService, cfg.RepairInterval)
		if err != nil {
			return err
		}
		if err := repairScheduler.Start(); err != nil {
			return err
		}
	}

	server := api.NewServer(api.Config{
		Port:               cfg.Port,
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerSecond: cfg.RateLimitPerSecond,
		RateLimitBurst:     cfg.RateLimitBurst,
	}, api.Services{
		Rankings:     rankingService,
		Duels:        duelService,
		Leaderboards: leaderboardService,
		Overall:      overallService,
	}, readiness...)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	log.Info("Shutting down leaderboard service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}
	if repairScheduler != nil {
		if err := repairScheduler.Shutdown(); err != nil {
			log.WithError(err).Error("Error stopping repair scheduler")
		}
	}

	// Let post-commit handlers finish publishing before clients close
	if !eventBus.Wait(shutdownCtx) {
		log.Warn("Shutdown timeout exceeded while waiting for event handlers")
	}

	log.Info("Shutdown completed")
	return nil
}

// RunRepair recomputes the ranks of every partition once and exits
func RunRepair(ctx context.Context) error {
	cfg := config.Get()
	configureLogging(cfg.LogLevel, cfg.LogFormat)

	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	uowFactory := repository.NewUnitOfWorkFactory(db, events.NewBus())
	report, err := service.NewRepairService(uowFactory, repairConcurrency).RepairAll(ctx)
	if err != nil {
		return fmt.Errorf("rank repair failed: %w", err)
	}

	log.WithFields(log.Fields{
		"rankingPartitions": report.RankingPartitions,
		"duelPartitions":    report.DuelPartitions,
		"rowsUpdated":       report.RowsUpdated,
	}).Info("Rank repair completed")
	return nil
}
