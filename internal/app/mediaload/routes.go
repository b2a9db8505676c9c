// Package mediaload собирает приложение бота: хранилище, кэш, очередь,
// Telegram-клиент, конвейер загрузки и служебный HTTP API.
package mediaload

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/mediaload/mediaload-bot/internal/config"
	adminadd "github.com/mediaload/mediaload-bot/internal/http/handlers/admin/add"
	adminlist "github.com/mediaload/mediaload-bot/internal/http/handlers/admin/list"
	adminremove "github.com/mediaload/mediaload-bot/internal/http/handlers/admin/remove"
	"github.com/mediaload/mediaload-bot/internal/http/handlers/auth/login"
	"github.com/mediaload/mediaload-bot/internal/http/handlers/broadcast/send"
	channeladd "github.com/mediaload/mediaload-bot/internal/http/handlers/channel/add"
	channellist "github.com/mediaload/mediaload-bot/internal/http/handlers/channel/list"
	channelremove "github.com/mediaload/mediaload-bot/internal/http/handlers/channel/remove"
	"github.com/mediaload/mediaload-bot/internal/http/handlers/coupon/issue"
	"github.com/mediaload/mediaload-bot/internal/http/handlers/stats"
	"github.com/mediaload/mediaload-bot/internal/http/middlewarectx"
	"github.com/mediaload/mediaload-bot/internal/lib/jwt"
	broadcastservice "github.com/mediaload/mediaload-bot/internal/services/broadcast"
	"github.com/mediaload/mediaload-bot/internal/services/entitlement"
	"github.com/mediaload/mediaload-bot/internal/storage/repository"
)

// RegisterRoutes регистрирует маршруты служебного API.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	authCfg config.AdminAuth,
	maker jwt.Maker,
	entitlements *entitlement.Service,
	storage *repository.Storage,
	broadcasts *broadcastservice.Service,
) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(rate.Limit(5), 10)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/login", login.New(logger, authCfg, maker).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(maker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Post("/coupons", issue.New(logger, entitlements).ServeHTTP)
			r.Get("/stats", stats.New(logger, entitlements).ServeHTTP)

			r.Post("/admins", adminadd.New(logger, storage).ServeHTTP)
			r.Delete("/admins/{user_id}", adminremove.New(logger, storage).ServeHTTP)
			r.Get("/admins", adminlist.New(logger, storage).ServeHTTP)

			r.Post("/channels", channeladd.New(logger, storage).ServeHTTP)
			r.Delete("/channels/{channel_id}", channelremove.New(logger, storage).ServeHTTP)
			r.Get("/channels", channellist.New(logger, storage).ServeHTTP)

			r.Post("/broadcast", send.New(logger, broadcasts).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
}
