// Package stats реализует HTTP-обработчик статистики продаж события.
package stats

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

// Service описывает интерфейс бизнес-логики статистики продаж.
type Service interface {
	Stats(ctx context.Context, caller models.Identity, eventID string) (*models.TicketStats, error)
}

// Handler обрабатывает запросы статистики продаж события.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Статистика продаж события
// @Description Строки по парам (тариф, статус) и сводные показатели продаж.
// @Tags Tickets
// @Produce  json
// @Security BearerAuth
// @Param eventId path string true "ID события"
// @Success 200 {object} response.Response "Статистика продаж"
// @Failure 403 {object} response.ErrorResponse "Событие чужого организатора"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Router /tickets/stats/{eventId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ticket.stats"
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

	stats, err := h.service.Stats(r.Context(), caller, chi.URLParam(r, "eventId"))
	if err != nil {
		log.Error("failed to count ticket stats", sl.Err(err))
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not count ticket stats"))
		return
	}

	render.JSON(w, r, response.OKWithData(stats))
}
