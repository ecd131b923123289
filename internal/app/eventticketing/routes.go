// Package eventticketing предоставляет маршруты приложения.
package eventticketing

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/event-ticketing/internal/discovery"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/auth/profile"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/auth/profileupdate"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/auth/register"
	discoverydetails "github.com/magabrotheeeer/event-ticketing/internal/http/handlers/discovery/details"
	discoverysearch "github.com/magabrotheeeer/event-ticketing/internal/http/handlers/discovery/search"
	eventcreate "github.com/magabrotheeeer/event-ticketing/internal/http/handlers/event/create"
	eventlist "github.com/magabrotheeeer/event-ticketing/internal/http/handlers/event/list"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/event/myevents"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/event/publish"
	eventread "github.com/magabrotheeeer/event-ticketing/internal/http/handlers/event/read"
	eventremove "github.com/magabrotheeeer/event-ticketing/internal/http/handlers/event/remove"
	eventupdate "github.com/magabrotheeeer/event-ticketing/internal/http/handlers/event/update"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/health"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/ticket/cancel"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/ticket/checkin"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/ticket/eventtickets"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/ticket/mytickets"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/ticket/purchase"
	ticketread "github.com/magabrotheeeer/event-ticketing/internal/http/handlers/ticket/read"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/ticket/stats"
	"github.com/magabrotheeeer/event-ticketing/internal/http/handlers/user/switchrole"
	"github.com/magabrotheeeer/event-ticketing/internal/http/middlewarectx"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/jwt"
	authservice "github.com/magabrotheeeer/event-ticketing/internal/services/auth"
	eventservice "github.com/magabrotheeeer/event-ticketing/internal/services/event"
	ticketservice "github.com/magabrotheeeer/event-ticketing/internal/services/ticket"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(
	r chi.Router,
	logger *slog.Logger,
	jwtMaker jwt.Maker,
	authSvc *authservice.Service,
	eventSvc *eventservice.Service,
	ticketSvc *ticketservice.Service,
	discoveryClient *discovery.Client,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authSvc).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authSvc).ServeHTTP)
		r.Get("/health", health.New(logger).ServeHTTP)

		// Публичный каталог: токен не обязателен, но учитывается
		// при определении видимости черновиков.
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(jwtMaker))
			r.Get("/events", eventlist.New(logger, eventSvc).ServeHTTP)
			r.Get("/events/api", discoverysearch.New(logger, discoveryClient).ServeHTTP)
			r.Get("/events/api/{id}", discoverydetails.New(logger, discoveryClient).ServeHTTP)
			r.Get("/events/{id}", eventread.New(logger, eventSvc).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/auth/profile", profile.New(logger, authSvc).ServeHTTP)
			r.Put("/auth/profile", profileupdate.New(logger, authSvc).ServeHTTP)
			r.Post("/users/switch-role", switchrole.New(logger, authSvc).ServeHTTP)

			r.Get("/events/user/myevents", myevents.New(logger, eventSvc).ServeHTTP)

			r.Post("/tickets/purchase", purchase.New(logger, ticketSvc).ServeHTTP)
			r.Get("/tickets/my-tickets", mytickets.New(logger, ticketSvc).ServeHTTP)
			r.Get("/tickets/{id}", ticketread.New(logger, ticketSvc).ServeHTTP)
			r.Patch("/tickets/{id}/cancel", cancel.New(logger, ticketSvc).ServeHTTP)

			// Операции организатора
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequireOrganizerMiddleware(logger))
				r.Post("/events", eventcreate.New(logger, eventSvc).ServeHTTP)
				r.Put("/events/{id}", eventupdate.New(logger, eventSvc).ServeHTTP)
				r.Delete("/events/{id}", eventremove.New(logger, eventSvc).ServeHTTP)
				r.Patch("/events/{id}/publish", publish.New(logger, eventSvc).ServeHTTP)

				r.Post("/tickets/check-in", checkin.New(logger, ticketSvc).ServeHTTP)
				r.Get("/tickets/event/{eventId}", eventtickets.New(logger, ticketSvc).ServeHTTP)
				r.Get("/tickets/stats/{eventId}", stats.New(logger, ticketSvc).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
