// Package middlewarectx содержит HTTP middleware для обработки и проверки JWT токенов.
//
// JWTMiddleware проверяет наличие и валидность JWT токена в заголовке Authorization
// и в случае успеха добавляет в контекст идентификатор, имя и роль пользователя.
// OptionalJWTMiddleware делает то же самое, но пропускает анонимные запросы дальше —
// он используется на публичных маршрутах каталога, где видимость зависит от роли.
//
// В случае ошибки проверки возвращается HTTP 401 Unauthorized с одинаковым
// сообщением независимо от причины, чтобы не раскрывать детали верификации.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-ticketing/internal/http/response"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/jwt"
	"github.com/magabrotheeeer/event-ticketing/internal/lib/sl"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID — ключ для идентификатора пользователя в контексте.
	UserID Key = "userId"
	// Name — ключ для отображаемого имени в контексте.
	Name Key = "name"
	// Role — ключ для выданной роли в контексте.
	Role Key = "role"
)

// IdentityFromContext извлекает данные вызывающего пользователя из контекста.
// Возвращает false, если запрос анонимный.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	userID, ok := ctx.Value(UserID).(string)
	if !ok || userID == "" {
		return models.Identity{}, false
	}
	name, _ := ctx.Value(Name).(string)
	role, _ := ctx.Value(Role).(string)
	return models.Identity{UserID: userID, Name: name, Role: role}, true
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
//
// Если токен валиден, добавляет идентификатор, имя и роль пользователя в контекст
// запроса, иначе возвращает ошибку с HTTP статусом 401 Unauthorized.
func JWTMiddleware(maker jwt.Maker, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"
			authHeader := r.Header.Get("Authorization")

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Error("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication invalid"))
				return
			}
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

			claims, err := maker.ParseToken(tokenStr)
			if err != nil {
				log.Error("invalid or expired token", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication invalid"))
				return
			}
			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, Name, claims.Name)
			ctx = context.WithValue(ctx, Role, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalJWTMiddleware добавляет данные пользователя в контекст, если токен
// предъявлен и валиден, и пропускает запрос анонимным в остальных случаях.
func OptionalJWTMiddleware(maker jwt.Maker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
				if claims, err := maker.ParseToken(tokenStr); err == nil {
					ctx := context.WithValue(r.Context(), UserID, claims.UserID)
					ctx = context.WithValue(ctx, Name, claims.Name)
					ctx = context.WithValue(ctx, Role, claims.Role)
					r = r.WithContext(ctx)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
