// Package add реализует HTTP-обработчик добавления администратора бота.
package add

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/mediaload/mediaload-bot/internal/http/response"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
)

// Request — структура входных данных для добавления администратора.
type Request struct {
	UserID   int64  `json:"user_id" validate:"required"`
	Username string `json:"username"`
}

// Service описывает бизнес-логику управления администраторами.
type Service interface {
	AddAdmin(ctx context.Context, userID int64, username string) error
}

// Handler обрабатывает HTTP-запросы добавления администратора.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.add"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.service.AddAdmin(r.Context(), req.UserID, req.Username); err != nil {
		log.Error("failed to add admin", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to add admin"))
		return
	}

	log.Info("admin added", slog.Int64("user_id", req.UserID))
	render.JSON(w, r, response.OK())
}
