// Package profileupdate реализует HTTP-обработчик обновления профиля.
//
// Смена роли через этот обработчик доступна только администратору;
// обычный пользователь может менять имя и email.
package profileupdate

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-ticketing/internal/http/response"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/sl"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// Request описывает структуру JSON-запроса на обновление профиля.
// Пустые поля не изменяются.
type Request struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=50"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=user organizer admin"`
}

// Service описывает интерфейс бизнес-логики обновления профиля.
type Service interface {
	UpdateProfile(ctx context.Context, caller models.Identity, name, email, role string) (*models.User, error)
}

// Handler обрабатывает запросы на обновление профиля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить профиль
// @Description Обновляет имя и email текущего пользователя. Роль может менять только администратор.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Изменяемые поля"
// @Success 200 {object} response.Response "Обновленный пользователь"
// @Failure 403 {object} response.ErrorResponse "Смена роли запрещена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /auth/profile [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.profileupdate"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	caller, ok := middlewarectx.IdentityFromContext(r.Context())
	if !ok {
		log.Error("identity not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
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

	user, err := h.service.UpdateProfile(r.Context(), caller, req.Name, req.Email, req.Role)
	if err != nil {
		log.Error("failed to update profile", sl.Err(err))
		switch {
		case errors.Is(err, apperrors.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("only admin can change roles"))
		case errors.Is(err, apperrors.ErrValidation):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid profile data"))
		default:
			w.WriteHeader(apperrors.HTTPStatus(err))
			render.JSON(w, r, response.Error("could not update profile"))
		}
		return
	}

	log.Info("profile updated", slog.String("id", user.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}
