// Package switchrole реализует HTTP-обработчик переключения активного
// режима аккаунта между user и organizer.
package switchrole

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

// Request описывает структуру JSON-запроса на смену режима.
type Request struct {
	NewRole string `json:"newRole" validate:"required,oneof=user organizer"`
}

// Service описывает интерфейс бизнес-логики смены активного режима.
type Service interface {
	SwitchRole(ctx context.Context, caller models.Identity, activeRole string) (*models.User, error)
}

// Handler обрабатывает запросы на смену активного режима.
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
// @Summary Переключить режим работы аккаунта
// @Description Режим organizer доступен только при выданной роли organizer или admin.
// @Tags Users
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Целевой режим"
// @Success 200 {object} response.Response "Обновленный пользователь"
// @Failure 403 {object} response.ErrorResponse "Роль organizer не выдана"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /users/switch-role [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.switchrole"
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

	user, err := h.service.SwitchRole(r.Context(), caller, req.NewRole)
	if err != nil {
		log.Error("failed to switch role", sl.Err(err))
		if errors.Is(err, apperrors.ErrForbidden) {
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("organizer role is not granted"))
			return
		}
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not switch role"))
		return
	}

	log.Info("active role switched",
		slog.String("id", user.ID), slog.String("active_role", user.ActiveRole))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"user": user,
	}))
}
