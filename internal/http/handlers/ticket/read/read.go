// Package read реализует HTTP-обработчик чтения билета по ID.
// Чужой билет доступен только администратору.
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

// Service описывает интерфейс бизнес-логики чтения билета.
type Service interface {
	GetByID(ctx context.Context, caller models.Identity, id string) (*models.EnrichedTicket, error)
}

// Handler обрабатывает запросы на чтение билета по ID.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Получить билет
// @Tags Tickets
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID билета"
// @Success 200 {object} response.Response "Билет с данными события"
// @Failure 403 {object} response.ErrorResponse "Чужой билет"
// @Failure 404 {object} response.ErrorResponse "Билет не найден"
// @Router /tickets/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ticket.read"
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

	ticket, err := h.service.GetByID(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to read ticket", sl.Err(err))
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not read ticket"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"ticket": ticket,
	}))
}
