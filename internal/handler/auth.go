package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/plajta/depo-service/internal/entities"
	"github.com/plajta/depo-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type SessionService interface {
	SessionReader
	Login(w http.ResponseWriter, r *http.Request, email, password string) (entities.User, error)
	Logout(w http.ResponseWriter, r *http.Request)
}

type AuthHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	auth     SessionService
}

func NewAuthHandler(logger *slog.Logger, auth SessionService) *AuthHandler {
	return &AuthHandler{
		logger:   logger.With(slog.String("handler", "auth")),
		validate: validator.New(),
		auth:     auth,
	}
}

func (h *AuthHandler) Init(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/me", h.Me)
	})
}

// Login аутентифицирует оператора консоли.
// @Summary      Вход оператора
// @Tags         auth
// @Accept       json
// @Param        credentials  body  Credentials  true  "Почта и пароль"
// @Success      200  {object}  User
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      401  {object}  utils.ErrorResponse "Неверные учётные данные"
// @Router       /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := utils.DecodeBody(r, &creds); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(creds); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	user, err := h.auth.Login(w, r, creds.Email, creds.Password)
	if errors.Is(err, entities.ErrInvalidCredentials) {
		utils.WriteError(w, "invalid email or password", http.StatusUnauthorized)
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "login failed", slog.Any("error", err))
		utils.WriteError(w, "record store unavailable, try again", http.StatusBadGateway)
		return
	}

	utils.WriteJSON(w, UserEntityToJSON(user), http.StatusOK)
}

// Logout завершает сессию. Всегда отвечает 204.
// @Summary      Выход оператора
// @Tags         auth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// Me возвращает текущего оператора.
// @Summary      Текущий оператор
// @Tags         auth
// @Success      200  {object}  User
// @Failure      401  {object}  utils.ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := h.auth.CurrentUser(r)
	if !ok {
		utils.WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, UserEntityToJSON(user), http.StatusOK)
}
