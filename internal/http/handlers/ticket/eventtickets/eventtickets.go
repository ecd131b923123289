// Package eventtickets реализует HTTP-обработчик листинга билетов события
// для его владельца или администратора.
package eventtickets

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

// Service описывает интерфейс бизнес-логики листинга билетов события.
type Service interface {
	EventTickets(ctx context.Context, caller models.Identity, eventID string) ([]*models.Ticket, error)
}

// Handler обрабатывает запросы на листинг билетов события.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Билеты события
// @Tags Tickets
// @Produce  json
// @Security BearerAuth
// @Param eventId path string true "ID события"
// @Success 200 {object} response.Response "Билеты события"
// @Failure 403 {object} response.ErrorResponse "Событие чужого организатора"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Router /tickets/event/{eventId} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ticket.eventtickets"
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

	tickets, err := h.service.EventTickets(r.Context(), caller, chi.URLParam(r, "eventId"))
	if err != nil {
		log.Error("failed to list event tickets", sl.Err(err))
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not list event tickets"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tickets": tickets,
	}))
}
