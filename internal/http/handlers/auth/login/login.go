// Package login реализует HTTP-обработчик для аутентификации администратора.
//
// Администратор один, его логин и bcrypt-хэш пароля задаются в конфигурации.
// При успешной проверке выдаётся JWT, которым подписываются остальные
// запросы служебного API.
package login

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/mediaload/mediaload-bot/internal/config"
	"github.com/mediaload/mediaload-bot/internal/http/response"
	"github.com/mediaload/mediaload-bot/internal/lib/jwt"
	"github.com/mediaload/mediaload-bot/internal/lib/password"
	"github.com/mediaload/mediaload-bot/internal/lib/sl"
)

// Request — структура входных данных для авторизации администратора.
type Request struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Handler обрабатывает HTTP-запросы авторизации администратора.
type Handler struct {
	log      *slog.Logger
	cfg      config.AdminAuth
	maker    jwt.Maker
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, cfg config.AdminAuth, maker jwt.Maker) *Handler {
	return &Handler{
		log:      log,
		cfg:      cfg,
		maker:    maker,
		validate: validator.New(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	if req.Login != h.cfg.Login || password.CompareHash(h.cfg.PasswordHash, req.Password) != nil {
		log.Error("invalid credentials", slog.String("login", req.Login))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid credentials"))
		return
	}

	token, err := h.maker.GenerateToken(req.Login)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("login success", slog.String("login", req.Login))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
		"login": req.Login,
	}))
}
