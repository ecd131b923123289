// Package mytickets реализует HTTP-обработчик листинга билетов вызывающего.
package mytickets

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-ticketing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-ticketing/internal/http/response"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/sl"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// Service описывает интерфейс бизнес-логики листинга своих билетов.
type Service interface {
	MyTickets(ctx context.Context, caller models.Identity) ([]models.EnrichedTicket, error)
}

// Handler обрабатывает запросы на листинг собственных билетов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои билеты
// @Description Возвращает билеты вызывающего с краткими данными событий.
// @Tags Tickets
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Билеты вызывающего"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /tickets/my-tickets [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ticket.mytickets"
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

	tickets, err := h.service.MyTickets(r.Context(), caller)
	if err != nil {
		log.Error("failed to list tickets", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tickets"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"tickets": tickets,
	}))
}
