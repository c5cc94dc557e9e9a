package middlewarectx

import (
	"context"
	"net/http"

	"github.com/go-chi/render"

	"github.com/avtoradar/marketplace-api/internal/http/response"
	"github.com/avtoradar/marketplace-api/internal/models"
)

// FeatureReader отдаёт действующие флаги функциональности. Флаги читаются из
// хранилища на каждый запрос, поэтому включение режима обслуживания действует
// без перезапуска сервиса.
type FeatureReader interface {
	Features(ctx context.Context) models.FeatureSettings
}

// MaintenanceMiddleware блокирует изменяющие запросы не-администраторов,
// пока включён режим обслуживания. Чтение остаётся доступным.
func MaintenanceMiddleware(features FeatureReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			role, _ := r.Context().Value(Role).(string)
			if models.IsAdminRole(role) {
				next.ServeHTTP(w, r)
				return
			}

			settings := features.Features(r.Context())
			if settings.MaintenanceMode {
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.Error(settings.MaintenanceMessage))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
