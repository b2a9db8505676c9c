// Package add реализует HTTP-обработчик добавления обязательного канала.
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

// Request — структура входных данных для добавления обязательного канала.
type Request struct {
	ChannelID string `json:"channel_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Username  string `json:"username"`
}

// Service описывает бизнес-логику управления обязательными каналами.
type Service interface {
	AddChannel(ctx context.Context, channelID, name, username string) error
}

// Handler обрабатывает HTTP-запросы добавления канала.
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
	const op = "handlers.channel.add"

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

	if err := h.service.AddChannel(r.Context(), req.ChannelID, req.Name, req.Username); err != nil {
		log.Error("failed to add channel", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to add channel"))
		return
	}

	log.Info("channel added", slog.String("channel_id", req.ChannelID))
	render.JSON(w, r, response.OK())
}
