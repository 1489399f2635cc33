package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/JerraForge/hydroponic-backend/internal/config"
	httpapi "github.com/JerraForge/hydroponic-backend/internal/http"
	"github.com/JerraForge/hydroponic-backend/internal/metrics"
	sensormqtt "github.com/JerraForge/hydroponic-backend/internal/mqtt"
	"github.com/JerraForge/hydroponic-backend/internal/repository"
	"github.com/JerraForge/hydroponic-backend/internal/service"
	"github.com/JerraForge/hydroponic-backend/internal/store"

	"github.com/JerraForge/hydroponic-backend/common/database"
	logging "github.com/JerraForge/hydroponic-backend/common/logger"
	mqttcommon "github.com/JerraForge/hydroponic-backend/common/mqtt"
	rediscommon "github.com/JerraForge/hydroponic-backend/common/redis"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const serviceName = "hydroponic-data"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Fatal("Failed to register metrics", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage: PostgreSQL when reachable, otherwise the in-memory store (dev).
	var (
		db           *sql.DB
		systems      repository.SystemsRepository
		measurements repository.MeasurementsRepository
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for hydroponic-data", zap.String("host", cfg.Database.Host))
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		}
	}
	if db != nil {
		if err := repository.EnsureSchema(ctx, db); err != nil {
			logger.Fatal("Failed to apply schema", zap.Error(err))
		}
		systems = repository.NewPostgresSystemsRepo(db)
		measurements = repository.NewPostgresMeasurementsRepo(db)
	} else {
		mem := repository.NewMemoryStore()
		systems, measurements = mem, mem
	}

	// Optional measurement.created stream.
	var publisher service.MeasurementPublisher
	var redisClient *rediscommon.Client
	if cfg.Redis.Enabled {
		redisClient = rediscommon.NewRedisClient(&cfg.Redis.RedisConfig)
		if err := rediscommon.Ping(ctx, redisClient); err != nil {
			logger.Warn("Redis unreachable, measurement events disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = rediscommon.Close(redisClient)
			redisClient = nil
		} else {
			publisher = store.NewRedisMeasurementStream(redisClient, cfg.Redis.Stream, cfg.Redis.StreamMaxLen, logger)
			logger.Info("Publishing measurement events", zap.String("stream", cfg.Redis.Stream))
		}
	}

	guard := service.NewAccessGuard(systems)
	systemService := service.NewSystemService(systems, guard, logger)
	measurementService := service.NewMeasurementService(guard, measurements, service.MeasurementServiceConfig{
		PageSize:      cfg.Query.PageSize,
		Location:      cfg.Location(),
		ExportMaxRows: cfg.Query.ExportMaxRows,
	}, logger)
	ingestor := service.NewMeasurementIngestor(guard, measurements, publisher, logger)

	// Optional MQTT sensor ingestion.
	var subscriber *sensormqtt.SensorSubscriber
	var mqttClient *mqttcommon.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqttcommon.NewClient(&cfg.MQTT.MQTTConfig, logger)
		if err != nil {
			logger.Warn("MQTT unavailable, sensor ingestion disabled", zap.String("broker", cfg.MQTT.Broker), zap.Error(err))
		} else {
			subscriber = sensormqtt.NewSensorSubscriber(mqttClient, cfg.MQTT.Topic, byte(cfg.MQTT.QoS), ingestor, logger)
			go func() {
				if err := subscriber.Start(ctx); err != nil {
					logger.Error("MQTT sensor subscriber failed", zap.Error(err))
				}
			}()
		}
	}

	router := httpapi.NewRouter(logger)
	router.RegisterHealthRoutes()
	router.RegisterSystemRoutes(
		httpapi.NewSystemsHandler(systemService, logger),
		httpapi.NewMeasurementsHandler(measurementService, ingestor, logger),
	)

	srv := service.NewServer(service.ServerConfig{
		Name:         serviceName,
		Addr:         cfg.HTTP.Addr,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if subscriber != nil {
		_ = subscriber.Stop()
	}
	if mqttClient != nil {
		mqttClient.Disconnect()
	}
	if redisClient != nil {
		_ = rediscommon.Close(redisClient)
	}
	_ = database.Close(db)

	logger.Info("Service stopped")
}
