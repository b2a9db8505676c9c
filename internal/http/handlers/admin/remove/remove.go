// Package remove реализует HTTP-обработчик удаления администратора бота.
package remove

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mediaload/mediaload-bot/internal/http/response"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
)

// Service описывает бизнес-логику управления администраторами.
type Service interface {
	RemoveAdmin(ctx context.Context, userID int64) (int, error)
}

// Handler обрабатывает HTTP-запросы удаления администратора.
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
	const op = "handlers.admin.remove"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userIDStr := chi.URLParam(r, "user_id")
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil {
		log.Error("invalid user_id format", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid user_id"))
		return
	}

	res, err := h.service.RemoveAdmin(r.Context(), userID)
	if err != nil {
		log.Error("failed to remove admin", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to remove admin"))
		return
	}

	log.Info("admin removed", slog.Int64("user_id", userID), slog.Int("deleted", res))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"deleted_count": res,
	}))
}
