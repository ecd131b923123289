// Package search реализует HTTP-обработчик проксирования поиска событий
// во внешнем discovery API. Параметры запроса передаются как есть,
// ответ внешнего API возвращается без перекодирования.
package search

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-ticketing/internal/apperrors"
	"github.com/magabrotheeeer/event-ticketing/internal/http/response"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/sl"
)

// Service описывает интерфейс клиента внешнего каталога.
type Service interface {
	Search(ctx context.Context, query url.Values) (json.RawMessage, error)
}

// Handler обрабатывает запросы проксирования поиска.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и клиентом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Поиск во внешнем каталоге событий
// @Tags Discovery
// @Produce  json
// @Param keyword query string false "Ключевое слово"
// @Success 200 {object} map[string]any "Ответ внешнего API"
// @Failure 502 {object} response.ErrorResponse "Внешний API недоступен"
// @Router /events/api [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.discovery.search"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	raw, err := h.service.Search(r.Context(), r.URL.Query())
	if err != nil {
		log.Error("failed to search upstream catalog", sl.Err(err))
		w.WriteHeader(apperrors.HTTPStatus(err))
		render.JSON(w, r, response.Error("could not reach discovery api"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(raw)
}
