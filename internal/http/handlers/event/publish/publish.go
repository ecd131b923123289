// Package publish реализует HTTP-обработчик переключения публикации события.
package publish

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

// Service описывает интерфейс бизнес-логики публикации события.
type Service interface {
	TogglePublish(ctx context.Context, caller models.Identity, id string) (*models.Event, error)
}

// Handler обрабатывает запросы на публикацию и снятие с публикации.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Переключить публикацию события
// @Tags Events
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID события"
// @Success 200 {object} response.Response "Событие с обновленным флагом"
// @Failure 403 {object} response.ErrorResponse "Не владелец события"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Router /events/{id}/publish [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.publish"
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

	event, err := h.service.TogglePublish(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to toggle publication", sl.Err(err))
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not toggle publication"))
		return
	}

	log.Info("publication toggled",
		slog.String("id", event.ID), slog.Bool("published", event.Published))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"event": event,
	}))
}
