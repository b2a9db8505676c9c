// Package list реализует HTTP-обработчик получения списка администраторов бота.
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

// Item — администратор в ответе служебного API.
type Item struct {
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Service описывает бизнес-логику управления администраторами.
type Service interface {
	ListAdmins(ctx context.Context) ([]*models.Admin, error)
}

// Handler обрабатывает HTTP-запросы списка администраторов.
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
	const op = "handlers.admin.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	admins, err := h.service.ListAdmins(r.Context())
	if err != nil {
		log.Error("failed to list admins", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to list admins"))
		return
	}

	items := make([]Item, 0, len(admins))
	for _, a := range admins {
		items = append(items, Item{
			UserID:    a.UserID,
			Username:  a.Username,
			CreatedAt: a.CreatedAt,
		})
	}

	log.Info("admins listed", slog.Int("count", len(items)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"admins": items,
	}))
}
