// Package myevents реализует HTTP-обработчик листинга событий вызывающего.
package myevents

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

// Service описывает интерфейс бизнес-логики листинга своих событий.
type Service interface {
	MyEvents(ctx context.Context, caller models.Identity) ([]*models.Event, error)
}

// Handler обрабатывает запросы на листинг собственных событий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Мои события
// @Tags Events
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "События вызывающего"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Router /events/user/myevents [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.myevents"
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

	events, err := h.service.MyEvents(r.Context(), caller)
	if err != nil {
		log.Error("failed to list own events", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list events"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"events": events,
	}))
}
