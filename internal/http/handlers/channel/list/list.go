// Package list реализует HTTP-обработчик получения списка обязательных каналов.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mediaload/mediaload-bot/internal/http/response"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
	"github.com/mediaload/mediaload-bot/internal/models"
)

// Item — обязательный канал в ответе служебного API.
type Item struct {
	ChannelID string    `json:"channel_id"`
	Name      string    `json:"name"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service описывает бизнес-логику управления обязательными каналами.
type Service interface {
	ListChannels(ctx context.Context) ([]*models.Channel, error)
}

// Handler обрабатывает HTTP-запросы списка каналов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.channel.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	channels, err := h.service.ListChannels(r.Context())
	if err != nil {
		log.Error("failed to list channels", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list channels"))
		return
	}

	items := make([]Item, 0, len(channels))
	for _, c := range channels {
		items = append(items, Item{
			ChannelID: c.ChannelID,
			Name:      c.Name,
			Username:  c.Username,
			CreatedAt: c.CreatedAt,
		})
	}

	log.Info("channels listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"channels": items,
	}))
}
