// Package marketplace собирает HTTP-приложение маркетплейса: хранилище,
// кеш, брокер сообщений, клиенты внешних сервисов и маршруты.
package marketplace

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/streadway/amqp"

	"github.com/avtoradar/marketplace-api/internal/cache"
	"github.com/avtoradar/marketplace-api/internal/config"
	"github.com/avtoradar/marketplace-api/internal/lib/jwt"
	"github.com/avtoradar/marketplace-api/internal/lib/rabbitmq"
	"github.com/avtoradar/marketplace-api/internal/lib/sl"
	"github.com/avtoradar/marketplace-api/internal/migrations"
	"github.com/avtoradar/marketplace-api/internal/predictionapi"
	adminservice "github.com/avtoradar/marketplace-api/internal/services/admin"
	authservice "github.com/avtoradar/marketplace-api/internal/services/auth"
	favoriteservice "github.com/avtoradar/marketplace-api/internal/services/favorite"
	notificationservice "github.com/avtoradar/marketplace-api/internal/services/notification"
	settingsservice "github.com/avtoradar/marketplace-api/internal/services/settings"
	subscriptionservice "github.com/avtoradar/marketplace-api/internal/services/subscription"
	vehicleservice "github.com/avtoradar/marketplace-api/internal/services/vehicle"
	"github.com/avtoradar/marketplace-api/internal/storage/repository"

	"github.com/go-chi/chi"
)

const (
	rabbitRetries = 5
	rabbitDelay   = 2 * time.Second
)

// App хранит зависимости запущенного приложения.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
}

// New собирает приложение: подключает зависимости, накатывает миграции
// и регистрирует маршруты. Недоступность брокера сообщений не является
// фатальной: приложение продолжает работу без публикации событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var rabbitConn *amqp.Connection
	var publisher notificationservice.EventPublisher
	if !cfg.RabbitConnection.RabbitDisabled {
		rabbitConn, err = rabbitmq.Connect(cfg.RabbitConnection.RabbitURL, rabbitRetries, rabbitDelay)
		if err != nil {
			logger.Warn("rabbitmq unavailable, events will not be published", sl.Err(err))
		} else {
			ch, err := rabbitmq.SetupChannel(rabbitConn, cfg.RabbitConnection.ExchangeName, rabbitmq.GetNotificationQueues())
			if err != nil {
				logger.Warn("failed to setup rabbitmq channel, events will not be published", sl.Err(err))
			} else {
				publisher = &notificationservice.AMQPPublisher{Ch: ch, Exchange: cfg.RabbitConnection.ExchangeName}
			}
		}
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	predictionClient := predictionapi.NewClient(cfg.MLAPI.MLBaseURL, cfg.MLAPI.MLTimeout)

	settingsService := settingsservice.NewSettingsService(db, logger)
	notificationService := notificationservice.NewNotificationService(db, publisher, logger)
	authService := authservice.NewAuthService(db, jwtMaker)
	vehicleService := vehicleservice.NewVehicleService(db, db, notificationService, logger)
	predictionService := vehicleservice.NewPredictionService(db, predictionClient)
	subscriptionService := subscriptionservice.NewSubscriptionService(db, db, cacheRedis, notificationService, logger)
	favoriteService := favoriteservice.NewFavoriteService(db, db)
	adminService := adminservice.NewAdminService(db, db, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, &Services{
		Auth:          authService,
		Vehicles:      vehicleService,
		Prediction:    predictionService,
		Subscriptions: subscriptionService,
		Favorites:     favoriteService,
		Notifications: notificationService,
		Settings:      settingsService,
		Admin:         adminService,
		TokenParser:   jwtMaker,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rabbitConn != nil {
			_ = a.rabbitConn.Close()
		}
		_ = a.db.DB.Close()
		return err
	}
}
