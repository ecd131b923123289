// Package cancel реализует HTTP-обработчик отмены билета.
//
// Отмена доступна владельцу билета и администратору, только для
// активных билетов и только до начала события.
package cancel

import (
	"context"
	"errors"
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

// Service описывает интерфейс бизнес-логики отмены билета.
type Service interface {
	Cancel(ctx context.Context, caller models.Identity, id string) (*models.Ticket, error)
}

// Handler обрабатывает запросы на отмену билетов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Отменить билет
// @Description Переводит активный билет в статус Cancelled и возвращает места в тариф.
// @Tags Tickets
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID билета"
// @Success 200 {object} response.Response "Отмененный билет"
// @Failure 400 {object} response.ErrorResponse "Билет не активен или событие началось"
// @Failure 403 {object} response.ErrorResponse "Чужой билет"
// @Failure 404 {object} response.ErrorResponse "Билет не найден"
// @Router /tickets/{id}/cancel [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ticket.cancel"
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

	ticket, err := h.service.Cancel(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to cancel ticket", sl.Err(err))
		if errors.Is(err, apperrors.ErrInvalidState) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("ticket cannot be cancelled"))
			return
		}
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not cancel ticket"))
		return
	}

	log.Info("ticket cancelled", slog.String("ticket_id", ticket.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"ticket": ticket,
	}))
}
