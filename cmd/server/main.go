package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	mongodriver "go.mongodb.org/mongo-driver/mongo"

	"github.com/airsenselabs/airsense-core/internal/api"
	"github.com/airsenselabs/airsense-core/internal/config"
	"github.com/airsenselabs/airsense-core/internal/ingest"
	"github.com/airsenselabs/airsense-core/internal/services"
	"github.com/airsenselabs/airsense-core/internal/storage/memory"
	"github.com/airsenselabs/airsense-core/internal/storage/mongo"
	"github.com/airsenselabs/airsense-core/pkg/cache"
	"github.com/airsenselabs/airsense-core/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.LogLevel)
	log.Info("starting airsense-core",
		"environment", cfg.Environment, "port", cfg.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores: MongoDB when a URI is configured, in-memory otherwise.
	var (
		alertStore   services.AlertStore
		readingStore services.ReadingStore
		mongoClient  *mongodriver.Client
	)
	if cfg.Mongo.URI != "" {
		mongoClient, err = mongo.Connect(ctx, cfg.Mongo.URI)
		if err != nil {
			log.Fatal("mongodb connection failed", "error", err)
		}
		db := mongoClient.Database(cfg.Mongo.Database)
		alertStore = mongo.NewAlertStore(db)
		readingStore = mongo.NewReadingStore(db)
		log.Info("using mongodb stores", "database", cfg.Mongo.Database)
	} else {
		alertStore = memory.NewAlertStore()
		readingStore = memory.NewReadingStore()
		log.Warn("no mongodb uri configured, using in-memory stores")
	}

	// Cooldown tracker: Valkey-shared when configured, in-process otherwise.
	var cooldown services.CooldownTracker
	if cfg.Cache.Enabled {
		vk, err := cache.NewValkeyCooldownTracker(
			cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB,
			cfg.Notifications.Cooldown, log)
		if err != nil {
			log.Fatal("valkey connection failed", "error", err)
		}
		defer vk.Close()
		cooldown = vk
	} else {
		cooldown = services.NewMemoryCooldownTracker(cfg.Notifications.Cooldown)
	}

	hub := api.NewHub(log)

	dispatcher := services.NewNotificationDispatcher(
		buildChannels(cfg.Notifications, hub, log),
		cooldown,
		cfg.Notifications.QueueSize,
		cfg.Notifications.Workers,
		cfg.Notifications.SendTimeout,
		log,
	)
	defer dispatcher.Close()

	pipeline := services.NewAlertPipeline(
		services.NewThresholdService(log),
		alertStore,
		dispatcher,
		log,
	)

	if cfg.MQTT.Enabled {
		consumer := ingest.NewConsumer(cfg.MQTT, readingStore, pipeline, log)
		if err := consumer.Start(); err != nil {
			log.Fatal("mqtt consumer failed to start", "error", err)
		}
		defer consumer.Stop()
	}

	server := api.NewServer(cfg, alertStore, readingStore, pipeline, hub, log)
	if err := server.Start(ctx); err != nil {
		log.Error("http server error", "error", err)
		os.Exit(1)
	}

	if mongoClient != nil {
		_ = mongoClient.Disconnect(context.Background())
	}
	log.Info("shutdown complete")
}

func buildChannels(cfg config.NotificationsConfig, hub *api.Hub, log logger.Logger) []services.Channel {
	return []services.Channel{
		services.NewEmailChannel(cfg.Email, cfg.DashboardURL, log),
		services.NewSMSChannel(cfg.SMS, log),
		services.NewSlackChannel(cfg.Slack, cfg.DashboardURL, log),
		services.NewDiscordChannel(cfg.Discord, log),
		services.NewConsoleChannel(cfg.Console, log),
		services.NewStreamChannel(hub),
	}
}
