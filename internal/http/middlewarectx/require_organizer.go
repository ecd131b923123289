package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/event-ticketing/internal/http/response"
	"github.com/magabrotheeeer/event-ticketing/internal/models"
)

// RequireOrganizerMiddleware пропускает дальше только пользователей
// с выданной ролью organizer или admin. Ставится после JWTMiddleware.
func RequireOrganizerMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				log.Error("user identification missing")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.Error("authentication invalid"))
				return
			}

			if identity.Role != models.RoleOrganizer && identity.Role != models.RoleAdmin {
				log.Error("organizer role required", slog.String("role", identity.Role))
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("access denied: only organizers and admins can perform this action"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
