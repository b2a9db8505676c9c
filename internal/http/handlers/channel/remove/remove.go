// Package remove реализует HTTP-обработчик удаления обязательного канала.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mediaload/mediaload-bot/internal/http/response"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
)

// Service описывает бизнес-логику управления обязательными каналами.
type Service interface {
	RemoveChannel(ctx context.Context, channelID string) (int, error)
}

// Handler обрабатывает HTTP-запросы удаления канала.
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
	const op = "handlers.channel.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	channelID := chi.URLParam(r, "channel_id")
	if channelID == "" {
		log.Error("missing channel_id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid channel_id"))
		return
	}

	res, err := h.service.RemoveChannel(r.Context(), channelID)
	if err != nil {
		log.Error("failed to remove channel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove channel"))
		return
	}

	log.Info("channel removed", slog.String("channel_id", channelID), slog.Int("deleted", res))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": res,
	}))
}
