// Package eventticketing собирает приложение: хранилище, кеш, брокер
// уведомлений, сервисы и HTTP-сервер с маршрутами.
package eventticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/event-ticketing/internal/cache"
	"github.com/magabrotheeeer/event-ticketing/internal/config"
	"github.com/magabrotheeeer/event-ticketing/internal/discovery"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/jwt"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/sl"
	authservice "github.com/magabrotheeeer/event-ticketing/internal/services/auth"
	eventservice "github.com/magabrotheeeer/event-ticketing/internal/services/event"
	ticketservice "github.com/magabrotheeeer/event-ticketing/internal/services/ticket"
	"github.com/magabrotheeeer/event-ticketing/internal/storage/memory"
	"github.com/magabrotheeeer/event-ticketing/internal/storage/mongodb"
)

// Storage объединяет контракты хранилища, которые требуют сервисы.
// Его реализуют оба адаптера: документный и внутрипроцессный.
type Storage interface {
	authservice.UserRepository
	eventservice.EventRepository
	ticketservice.TicketRepository

	ReserveTier(ctx context.Context, eventID, tierName string, qty int) error
	ReleaseTier(ctx context.Context, eventID, tierName string, qty int) error
}

// App инкапсулирует HTTP-сервер и ресурсы приложения.
type App struct {
	server  *http.Server
	logger  *slog.Logger
	cache   *cache.Cache
	closeFn func(ctx context.Context) error
}

// New собирает приложение по конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.New"

	var (
		db      Storage
		closeFn func(ctx context.Context) error
	)
	switch cfg.Storage.Driver {
	case "memory":
		db = memory.New()
		closeFn = func(context.Context) error { return nil }
		logger.Warn("using in-memory storage, data will not survive restarts")
	case "mongo":
		store, err := mongodb.New(ctx, cfg.Storage.MongoURI, cfg.Storage.Database)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		db = store
		closeFn = store.Close
	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Storage.Driver)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var notifier ticketservice.Notifier
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ch, err := rabbitmq.SetupChannel(conn, []rabbitmq.QueueConfig{
			{QueueName: "ticket_purchased", RoutingKey: "ticket.purchased"},
			{QueueName: "ticket_cancelled", RoutingKey: "ticket.cancelled"},
			{QueueName: "ticket_checked_in", RoutingKey: "ticket.checked_in"},
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		notifier = rabbitmq.NewPublisher(ch)
	} else {
		logger.Info("rabbitmq url is empty, ticket notifications disabled")
	}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTToken.JWTSecretKey, cfg.JWTToken.TokenTTL)
	discoveryClient := discovery.NewClient(cfg.Discovery.BaseURL, cfg.Discovery.APIKey)

	authSvc := authservice.New(db, jwtMaker)
	eventSvc := eventservice.New(db, cacheRedis, logger)
	ticketSvc := ticketservice.New(db, db, notifier, cacheRedis, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jwtMaker, authSvc, eventSvc, ticketSvc, discoveryClient)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server:  srv,
		logger:  logger,
		cache:   cacheRedis,
		closeFn: closeFn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.closeFn(timeoutCtx); closeErr != nil {
			a.logger.Error("failed to close storage", sl.Err(closeErr))
		}
		if cacheErr := a.cache.Db.Close(); cacheErr != nil {
			a.logger.Error("failed to close cache", sl.Err(cacheErr))
		}
		return err
	}
}
