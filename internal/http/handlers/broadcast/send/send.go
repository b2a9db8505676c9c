// Package send реализует HTTP-обработчик постановки рассылки в очередь.
//
// Обработчик не отправляет сообщения сам: он раскладывает рассылку
// на отдельные сообщения в RabbitMQ, доставкой занимается консьюмер.
package send

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

// Request — структура входных данных для запуска рассылки.
type Request struct {
	Segment string `json:"segment" validate:"required,oneof=all premium free"`
	Text    string `json:"text" validate:"required"`
}

// Service описывает бизнес-логику постановки рассылки в очередь.
type Service interface {
	Enqueue(ctx context.Context, segment, text string) (int, error)
}

// Handler обрабатывает HTTP-запросы запуска рассылки.
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
	const op = "handlers.broadcast.send"

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

	enqueued, err := h.service.Enqueue(r.Context(), req.Segment, req.Text)
	if err != nil {
		log.Error("failed to enqueue broadcast", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to enqueue broadcast"))
		return
	}

	log.Info("broadcast enqueued",
		slog.String("segment", req.Segment),
		slog.Int("recipients", enqueued))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"enqueued": enqueued,
		"segment":  req.Segment,
	}))
}
