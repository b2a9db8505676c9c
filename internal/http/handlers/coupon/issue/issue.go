// Package issue реализует HTTP-обработчик выпуска купонов активации подписки.
package issue

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
	"github.com/mediaload/mediaload-bot/internal/models"
)

// Request — структура входных данных для выпуска купона.
type Request struct {
	Duration string `json:"duration" validate:"required,oneof=1month 3months lifetime"`
}

// Service описывает бизнес-логику выпуска купонов.
type Service interface {
	IssueCoupon(ctx context.Context, duration models.CouponDuration) (string, error)
}

// Handler обрабатывает HTTP-запросы выпуска купонов.
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
	const op = "handlers.coupon.issue"

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

	code, err := h.service.IssueCoupon(r.Context(), models.CouponDuration(req.Duration))
	if err != nil {
		log.Error("failed to issue coupon", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to issue coupon"))
		return
	}

	log.Info("coupon issued", slog.String("duration", req.Duration))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"code":     code,
		"duration": req.Duration,
	}))
}
