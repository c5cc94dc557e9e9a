package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// RequireAdmin пропускает только администраторов и суперадминистраторов.
func RequireAdmin(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, models.IsAdminRole)
}

// RequireSuperadmin пропускает только суперадминистраторов.
func RequireSuperadmin(log *slog.Logger) func(http.Handler) http.Handler {
	return requireRole(log, func(role string) bool {
		return role == models.RoleSuperadmin
	})
}

func requireRole(log *slog.Logger, allowed func(string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || !allowed(role) {
				log.Warn("access denied", slog.String("role", role))
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("insufficient privileges"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
