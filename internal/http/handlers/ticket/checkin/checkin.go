// Package checkin реализует HTTP-обработчик регистрации билета на входе
// по его коду. Повторное сканирование того же кода отклоняется.
package checkin

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

// Request описывает структуру JSON-запроса на регистрацию.
type Request struct {
	TicketCode string `json:"ticketCode" validate:"required"`
}

// Service описывает интерфейс бизнес-логики регистрации билета.
type Service interface {
	CheckIn(ctx context.Context, caller models.Identity, code string) (*models.Ticket, error)
}

// Handler обрабатывает запросы на регистрацию билетов.
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
// @Summary Зарегистрировать билет на входе
// @Description Переводит билет в статус Used по его коду. Доступно владельцу события и администратору.
// @Tags Tickets
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Код билета"
// @Success 200 {object} response.Response "Зарегистрированный билет"
// @Failure 400 {object} response.ErrorResponse "Билет уже зарегистрирован"
// @Failure 403 {object} response.ErrorResponse "Событие чужого организатора"
// @Failure 404 {object} response.ErrorResponse "Неизвестный код"
// @Router /tickets/check-in [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.ticket.checkin"
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

	ticket, err := h.service.CheckIn(r.Context(), caller, req.TicketCode)
	if err != nil {
		log.Error("failed to check in ticket", sl.Err(err))
		if errors.Is(err, apperrors.ErrInvalidState) {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("ticket already checked in"))
			return
		}
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not check in ticket"))
		return
	}

	log.Info("ticket checked in", slog.String("ticket_id", ticket.ID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"ticket": ticket,
	}))
}
