// Package details реализует HTTP-обработчик проксирования карточки
// события внешнего discovery API.
package details

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/http/response"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/sl"
)

// Service описывает интерфейс клиента внешнего каталога.
type Service interface {
	Details(ctx context.Context, id string) (json.RawMessage, error)
}

// Handler обрабатывает запросы проксирования карточки события.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и клиентом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Карточка события внешнего каталога
// @Tags Discovery
// @Produce  json
// @Param id path string true "ID события во внешнем каталоге"
// @Success 200 {object} map[string]any "Ответ внешнего API"
// @Failure 404 {object} response.ErrorResponse "Событие не найдено"
// @Failure 502 {object} response.ErrorResponse "Внешний API недоступен"
// @Router /events/api/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.discovery.details"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	raw, err := h.service.Details(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to fetch upstream event", sl.Err(err))
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not fetch upstream event"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(raw)
}
