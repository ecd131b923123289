// Package read реализует HTTP-обработчик чтения события по ID.
//
// Неопубликованные события видны только владельцу и администратору:
// анонимный запрос получает 401, чужой пользователь — 403.
package read

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-ticketing/internal/http/response"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/sl"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// Service описывает интерфейс бизнес-логики чтения события.
type Service interface {
	GetByID(ctx context.Context, caller *models.Identity, id string) (*models.Event, error)
}

// Handler обрабатывает запросы на чтение события по ID.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить событие
// @Tags Events
// @Produce  json
// @Param id path string true "ID события"
// @Success 200 {object} response.Response "Событие"
// @Failure 401 {object} response.ErrorResponse "Черновик недоступен анонимно"
// @Failure 403 {object} response.ErrorResponse "Черновик чужого организатора"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Router /events/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	var caller *models.Identity
	if identity, ok := middlewarectx.IdentityFromContext(r.Context()); ok {
		caller = &identity
	}

	event, err := h.service.GetByID(r.Context(), caller, id)
	if err != nil {
		log.Error("failed to read event", sl.Err(err))
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not read event"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"event": event,
	}))
}
