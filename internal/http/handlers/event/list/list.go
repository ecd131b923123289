// Package list реализует HTTP-обработчик листинга каталога событий
// с фильтрами и пагинацией.
package list

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-ticketing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-ticketing/internal/http/response"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/sl"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
	"github.com/magabrotheeeer/event-ticketing/internal/services/event"
)

// Service описывает интерфейс бизнес-логики листинга каталога.
type Service interface {
	List(ctx context.Context, caller *models.Identity, filter models.EventFilter, status string, page, limit int) (*event.ListResult, error)
}

// Handler обрабатывает запросы на листинг событий.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Каталог событий
// @Description Возвращает страницу событий. Анонимные и обычные пользователи видят только опубликованные.
// @Tags Events
// @Produce  json
// @Param name query string false "Подстрока имени"
// @Param eventType query string false "Тип события"
// @Param city query string false "Подстрока города"
// @Param startDate query string false "Не раньше (RFC 3339)"
// @Param endDate query string false "Не позже (RFC 3339)"
// @Param status query string false "Upcoming | Ongoing | Completed"
// @Param published query bool false "Флаг публикации"
// @Param organizer query string false "ID организатора"
// @Param page query int false "Номер страницы (с 1)"
// @Param limit query int false "Размер страницы (по умолчанию 10)"
// @Success 200 {object} response.Response "Страница каталога"
// @Router /events [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.event.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	q := r.URL.Query()
	filter := models.EventFilter{
		Name:      q.Get("name"),
		EventType: q.Get("eventType"),
		City:      q.Get("city"),
		Organizer: q.Get("organizer"),
	}
	if v := q.Get("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid startDate, expected RFC 3339"))
			return
		}
		filter.StartDate = &t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid endDate, expected RFC 3339"))
			return
		}
		filter.EndDate = &t
	}
	if v := q.Get("published"); v != "" {
		published, err := strconv.ParseBool(v)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid published flag"))
			return
		}
		filter.Published = &published
	}

	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	var caller *models.Identity
	if identity, ok := middlewarectx.IdentityFromContext(r.Context()); ok {
		caller = &identity
	}

	result, err := h.service.List(r.Context(), caller, filter, q.Get("status"), page, limit)
	if err != nil {
		log.Error("failed to list events", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list events"))
		return
	}

	render.JSON(w, r, response.OKWithData(result))
}
