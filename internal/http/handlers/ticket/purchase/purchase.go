// Package purchase реализует HTTP-обработчик покупки билетов.
//
// Handler принимает JSON-запрос с событием, тарифом и количеством,
// валидирует его и вызывает бизнес-логику покупки. Превышение
// вместимости тарифа и покупка у неопубликованного события отклоняются.
package purchase

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

// Request описывает структуру JSON-запроса на покупку.
type Request struct {
	EventID    string `json:"eventId" validate:"required"`
	TicketType string `json:"ticketType" validate:"required"`
	Quantity   int    `json:"quantity" validate:"required,gte=1"`
}

// Service описывает интерфейс бизнес-логики покупки билетов.
type Service interface {
	Purchase(ctx context.Context, caller models.Identity, eventID, ticketType string, quantity int) (*models.Ticket, error)
}

// Handler управляет HTTP-запросами на покупку билетов.
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
// @Summary Купить билеты
// @Description Покупает quantity билетов выбранного тарифа. Цена фиксируется на момент покупки.
// @Tags Tickets
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Параметры покупки"
// @Success 201 {object} response.Response "Купленный билет"
// @Failure 400 {object} response.ErrorResponse "Вместимость исчерпана или событие не опубликовано"
// @Failure 404 {object} response.ErrorResponse "Событие или тариф не найдены"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /tickets/purchase [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ticket.purchase"
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

	ticket, err := h.service.Purchase(r.Context(), caller, req.EventID, req.TicketType, req.Quantity)
	if err != nil {
		log.Error("failed to purchase tickets", sl.Err(err))
		switch {
		case errors.Is(err, apperrors.ErrCapacityExceeded):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("not enough tickets available"))
		case errors.Is(err, apperrors.ErrInvalidState):
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("event is not published"))
		case errors.Is(err, apperrors.ErrNotFound):
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("event or ticket tier not found"))
		default:
			w.WriteHeader(apperrors.HTTPStatus(err))
			render.JSON(w, r, response.Error("could not purchase tickets"))
		}
		return
	}

	log.Info("tickets purchased",
		slog.String("ticket_id", ticket.ID), slog.Int("quantity", ticket.Quantity))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"ticket": ticket,
	}))
}
