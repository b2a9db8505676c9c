package mediaload

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/mediaload/mediaload-bot/internal/bot"
	"github.com/mediaload/mediaload-bot/internal/cache"
	"github.com/mediaload/mediaload-bot/internal/config"
	"github.com/mediaload/mediaload-bot/internal/delivery"
	"github.com/mediaload/mediaload-bot/internal/extractor"
	"github.com/mediaload/mediaload-bot/internal/fetcher"
	"github.com/mediaload/mediaload-bot/internal/lib/jwt"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/migrations"
	"github.com/mediaload/mediaload-bot/internal/rabbitmq"
	broadcastservice "github.com/mediaload/mediaload-bot/internal/services/broadcast"
	"github.com/mediaload/mediaload-bot/internal/services/downloader"
	"github.com/mediaload/mediaload-bot/internal/services/entitlement"
	"github.com/mediaload/mediaload-bot/internal/storage/repository"
	"github.com/mediaload/mediaload-bot/internal/telegram"
)

// App объединяет все компоненты бота и управляет их жизненным циклом.
type App struct {
	logger *slog.Logger
	server *http.Server
	db     *repository.Storage
	cache  *cache.Cache

	bot        *bot.Bot
	broadcasts *broadcastservice.Service

	amqpConn  *amqp.Connection
	amqpCh    *amqp.Channel
	queueName string
}

// New собирает приложение: подключает хранилище, накатывает миграции,
// поднимает кэш, очередь и служебный HTTP-сервер.
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

	tg := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.APIBaseURL, cfg.Telegram.PollTimeout)

	extractorClient := extractor.NewClient(
		cfg.Extractor.RapidAPIKey,
		cfg.Extractor.GenericHost,
		cfg.Extractor.TikTokHost,
		cfg.Extractor.RequestTimeout,
	)
	extractorService := extractor.New(logger, extractorClient)

	mediaFetcher := fetcher.New(cfg.Extractor.DownloadTimeout)
	deliverer := delivery.New(logger, tg, mediaFetcher, cfg.Limits.MaxVideoBytes, cfg.Limits.MaxImageBytes)

	entitlements := entitlement.New(db, cacheRedis, logger, cfg.Limits.FreeDownloads)
	pipeline := downloader.New(logger, entitlements, extractorService, deliverer, cacheRedis, cfg.Extractor.CacheExpiration)

	amqpConn, err := rabbitmq.Connect(cfg.Rabbit.RabbitURL, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}
	amqpCh, err := rabbitmq.SetupChannel(amqpConn, rabbitmq.GetBroadcastQueues(cfg.Rabbit.BroadcastQueue))
	if err != nil {
		return nil, err
	}
	broadcasts := broadcastservice.New(logger, db, broadcastservice.NewAMQPPublisher(amqpCh), tg)

	maker := jwt.NewJWTMaker(cfg.AdminAuth.JWTSecretKey, cfg.AdminAuth.TokenTTL)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg.AdminAuth, maker, entitlements, db, broadcasts)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		logger:     logger,
		server:     srv,
		db:         db,
		cache:      cacheRedis,
		bot:        bot.New(logger, tg, pipeline, entitlements, cfg.Telegram.PollTimeout),
		broadcasts: broadcasts,
		amqpConn:   amqpConn,
		amqpCh:     amqpCh,
		queueName:  cfg.Rabbit.BroadcastQueue,
	}, nil
}

// Run запускает HTTP-сервер, long polling и консьюмера рассылок.
// Возвращает управление после отмены контекста или фатальной ошибки
// одного из компонентов.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("broadcast consumer starting", slog.String("queue", a.queueName))
	if err := a.broadcasts.Run(ctx, a.amqpCh, a.queueName); err != nil {
		a.shutdown()
		return err
	}

	errCh := make(chan error, 2)

	go func() {
		a.logger.Info("HTTP server starting", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
			return
		}
		errCh <- err
	}()

	go func() {
		a.logger.Info("telegram polling starting")
		errCh <- a.bot.Run(ctx)
	}()

	select {
	case err := <-errCh:
		a.shutdown()
		return err
	case <-ctx.Done():
		a.shutdown()
		return nil
	}
}

func (a *App) shutdown() {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	a.logger.Info("shutting down gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil {
		a.logger.Error("failed to shutdown HTTP server", sl.Err(err))
	}
	if err := a.amqpCh.Close(); err != nil {
		a.logger.Warn("failed to close amqp channel", sl.Err(err))
	}
	if err := a.amqpConn.Close(); err != nil {
		a.logger.Warn("failed to close amqp connection", sl.Err(err))
	}
	if err := a.cache.Db.Close(); err != nil {
		a.logger.Warn("failed to close redis client", sl.Err(err))
	}
	if err := a.db.DB.Close(); err != nil {
		a.logger.Warn("failed to close database", sl.Err(err))
	}
}
