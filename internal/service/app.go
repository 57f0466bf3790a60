package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"aquawatch/common/database"
	mqttcommon "aquawatch/common/mqtt"
	rediscommon "aquawatch/common/redis"
	"aquawatch/internal/config"
	"aquawatch/internal/consumer"
	"aquawatch/internal/notify"
	"aquawatch/internal/predictor"
	"aquawatch/internal/repository"
	"aquawatch/internal/store"
	"aquawatch/internal/websocket"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Backend names reported by Status.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// App wires the ingestion service with its storage, cache, transports and
// notification sinks.
type App struct {
	config *config.Config
	logger *zap.Logger

	db          *sql.DB
	redisClient *redis.Client
	mqttClient  *mqttcommon.Client

	predictor  *predictor.Predictor
	hub        *websocket.Hub
	dispatcher *notify.Dispatcher
	service    *WaterQualityService
	consumer   *consumer.MQTTConsumer

	repoBackend  string
	cacheBackend string
}

// NewApp builds every component. Missing infrastructure falls back to
// in-memory implementations; a missing model only disables ingestion.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{config: cfg, logger: logger}

	// 1. readings repository
	var repo repository.ReadingsRepository
	if cfg.DBEnabled {
		db, err := database.NewPostgresDB(ctx, &cfg.Database)
		if err != nil {
			logger.Warn("DB enabled but connection failed, falling back to memory", zap.Error(err))
		} else {
			pg := repository.NewPostgresReadingsRepository(db, logger)
			if err := pg.EnsureSchema(ctx); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("failed to prepare schema: %w", err)
			}
			app.db = db
			repo = pg
			app.repoBackend = BackendPostgres
		}
	}
	if repo == nil {
		repo = repository.NewMemoryReadingsRepository()
		app.repoBackend = BackendMemory
	}

	// 2. cache
	var kv store.KV
	if cfg.RedisEnabled {
		client := rediscommon.NewRedisClient(&cfg.Redis)
		if err := rediscommon.Ping(ctx, client); err != nil {
			logger.Warn("Redis enabled but ping failed, falling back to memory", zap.Error(err))
			_ = client.Close()
		} else {
			app.redisClient = client
			kv = store.NewRedisKV(client)
			app.cacheBackend = BackendRedis
		}
	}
	if kv == nil {
		kv = store.NewMemoryKV()
		app.cacheBackend = BackendMemory
	}
	stats := store.NewStatisticsCache(kv, time.Duration(cfg.Stats.CacheTTLSec)*time.Second)
	devices := store.NewDeviceStateCache(kv, 0)

	// 3. model
	source, err := predictor.NewArtifactSource(cfg.Model.Path, cfg.Model.S3Region)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("invalid MODEL_PATH: %w", err)
	}
	app.predictor = predictor.NewPredictor(source, logger)
	if err := app.predictor.Load(ctx); err != nil {
		logger.Error("Model not loaded, ingestion disabled until it is available",
			zap.String("location", source.Location()),
			zap.Error(err),
		)
	} else if info := app.predictor.Info(); info.FeatureSet != cfg.Model.FeatureSet {
		logger.Warn("Model feature set differs from FEATURE_SET",
			zap.String("model", info.FeatureSet),
			zap.String("configured", cfg.Model.FeatureSet),
		)
	}

	// 4. notification sinks
	app.hub = websocket.NewHub(logger)
	sinks := []notify.Sink{notify.NewCacheSink(stats, devices), app.hub}
	if app.redisClient != nil {
		sinks = append(sinks, notify.NewStreamSink(app.redisClient, cfg.Notify.StreamName, cfg.Notify.StreamMax))
	}
	app.dispatcher = notify.NewDispatcher(cfg.Notify.QueueSize, logger, sinks...)

	// 5. service
	app.service = NewWaterQualityService(app.predictor, repo, Options{
		Stats:       stats,
		Devices:     devices,
		Events:      app.dispatcher,
		StatsWindow: cfg.Stats.Window,
	}, logger)

	// 6. MQTT
	if cfg.MQTTEnabled {
		client, err := mqttcommon.NewClient(&cfg.MQTT, logger)
		if err != nil {
			logger.Error("MQTT enabled but connection failed, consumer disabled", zap.Error(err))
		} else {
			app.mqttClient = client
			app.consumer = consumer.NewMQTTConsumer(client, app.service, consumer.Options{
				ReadingTopic: cfg.Topics.Reading,
				ResultSuffix: cfg.Topics.ResultSuffix,
				QoS:          cfg.MQTT.QoS,
			}, logger)
		}
	}

	return app, nil
}

// Service returns the ingestion service.
func (a *App) Service() *WaterQualityService { return a.service }

// Hub returns the websocket hub.
func (a *App) Hub() *websocket.Hub { return a.hub }

// Predictor returns the model facade.
func (a *App) Predictor() *predictor.Predictor { return a.predictor }

// Start runs the background components.
func (a *App) Start(ctx context.Context) error {
	a.logger.Info("Starting aquawatch",
		zap.String("repository", a.repoBackend),
		zap.String("cache", a.cacheBackend),
		zap.Bool("model_loaded", a.predictor.IsLoaded()),
	)

	go a.hub.Run(ctx)
	a.dispatcher.Start(ctx)

	if a.consumer != nil {
		go func() {
			if err := a.consumer.Start(ctx); err != nil {
				a.logger.Error("MQTT consumer failed", zap.Error(err))
			}
		}()
	}
	return nil
}

// Stop releases every component. Queued events are delivered first.
func (a *App) Stop() error {
	a.logger.Info("Stopping aquawatch")

	if a.consumer != nil {
		_ = a.consumer.Stop()
	}
	if a.mqttClient != nil {
		a.mqttClient.Disconnect()
	}
	a.dispatcher.Stop()
	a.closeStores()
	return nil
}

func (a *App) closeStores() {
	if err := database.Close(a.db); err != nil {
		a.logger.Error("Failed to close database", zap.Error(err))
	}
	if err := rediscommon.Close(a.redisClient); err != nil {
		a.logger.Error("Failed to close redis", zap.Error(err))
	}
}

// Status is the health summary served on /status.
type Status struct {
	Server           string              `json:"server"`
	Model            predictor.ModelInfo `json:"model"`
	Repository       string              `json:"repository"`
	Cache            string              `json:"cache"`
	MQTTConnected    bool                `json:"mqtt_connected"`
	WebsocketClients int                 `json:"websocket_clients"`
	EventsDropped    int64               `json:"events_dropped"`
	Timestamp        time.Time           `json:"timestamp"`
}

// Status reports component health.
func (a *App) Status(_ context.Context) Status {
	st := Status{
		Server:           "ONLINE",
		Model:            a.predictor.Info(),
		Repository:       a.repoBackend,
		Cache:            a.cacheBackend,
		WebsocketClients: a.hub.ClientCount(),
		EventsDropped:    a.dispatcher.Dropped(),
		Timestamp:        time.Now(),
	}
	if a.mqttClient != nil {
		st.MQTTConnected = a.mqttClient.IsConnected()
	}
	return st
}
