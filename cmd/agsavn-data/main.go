package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agsavn-data/common/database"
	"agsavn-data/common/logger"
	mqttcommon "agsavn-data/common/mqtt"
	commonredis "agsavn-data/common/redis"
	"agsavn-data/internal/config"
	"agsavn-data/internal/consumer"
	httpapi "agsavn-data/internal/http"
	"agsavn-data/internal/repository"
	"agsavn-data/internal/service"
	"agsavn-data/internal/store"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "agsavn-data")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	redisClient := commonredis.NewRedisClient(&cfg.Redis)
	defer commonredis.Close(redisClient)
	if err := commonredis.Ping(context.Background(), redisClient); err != nil {
		log.Warn("Redis not reachable, stats cache and alert stream will error until it is", zap.Error(err))
	}
	kv := store.NewRedisKV(redisClient)

	notifiers := service.MultiNotifier{
		service.NewStreamNotifier(redisClient, cfg.Alerts.Stream, cfg.Alerts.StreamMaxLen, log),
	}
	if cfg.Alerts.WebhookURL != "" {
		notifiers = append(notifiers, service.NewWebhookNotifier(cfg.Alerts.WebhookURL, log))
	}

	statsService := service.NewStatsService(repository.NewPostgresAlertsRepository(db), kv, cfg.Stats.CacheTTL, log)
	measurementService := service.NewMeasurementService(db, notifiers, statsService, log)
	alertService := service.NewAlertService(db, statsService, log)
	indicatorService := service.NewIndicatorService(db, log)
	activityService := service.NewActivityService(repository.NewPostgresActivityLogsRepository(db), log)
	referenceService := service.NewReferenceService(
		repository.NewPostgresRegionsRepository(db),
		repository.NewPostgresCategoriesRepository(db),
		log,
	)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := referenceService.SeedCategories(seedCtx); err != nil {
		log.Warn("Failed to seed default categories", zap.Error(err))
	}
	seedCancel()

	router := httpapi.NewRouter(log)
	router.RegisterAlertRoutes(httpapi.NewAlertHandler(alertService, log))
	router.RegisterMeasurementRoutes(httpapi.NewMeasurementHandler(measurementService, log))
	router.RegisterIndicatorRoutes(httpapi.NewIndicatorHandler(indicatorService, log))
	router.RegisterReferenceRoutes(httpapi.NewReferenceHandler(referenceService, log))
	router.RegisterStatsRoutes(httpapi.NewStatsHandler(statsService, activityService, log))
	router.RegisterOpsRoutes()

	srv := service.NewServer(cfg.HTTP.Addr, router.Handler(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- srv.Start()
	}()

	var mqttClient *mqttcommon.Client
	var ingest *consumer.MeasurementConsumer
	if cfg.MQTT.Enabled {
		mqttClient, err = mqttcommon.NewClient(&cfg.MQTT.MQTTConfig, log)
		if err != nil {
			log.Error("MQTT ingestion disabled, broker connection failed", zap.Error(err))
		} else {
			ingest = consumer.NewMeasurementConsumer(mqttClient, measurementService, cfg.MQTT.Topic, cfg.MQTT.QoS, cfg.MQTT.IngestUserID, log)
			go func() {
				if err := ingest.Start(ctx); err != nil {
					errCh <- err
				}
			}()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("Component stopped", zap.Error(err))
	}
	cancel()

	if ingest != nil {
		ingest.Stop()
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
