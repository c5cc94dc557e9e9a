package marketplace

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	adminadmins "github.com/avtoradar/marketplace-api/internal/http/handlers/admin/admins"
	adminpermissions "github.com/avtoradar/marketplace-api/internal/http/handlers/admin/permissions"
	adminplans "github.com/avtoradar/marketplace-api/internal/http/handlers/admin/plans"
	adminsettings "github.com/avtoradar/marketplace-api/internal/http/handlers/admin/settings"
	adminsubscriptions "github.com/avtoradar/marketplace-api/internal/http/handlers/admin/subscriptions"
	adminusers "github.com/avtoradar/marketplace-api/internal/http/handlers/admin/users"
	adminvehicles "github.com/avtoradar/marketplace-api/internal/http/handlers/admin/vehicles"
	"github.com/avtoradar/marketplace-api/internal/http/handlers/auth/adminlogin"
	"github.com/avtoradar/marketplace-api/internal/http/handlers/auth/login"
	"github.com/avtoradar/marketplace-api/internal/http/handlers/auth/me"
	"github.com/avtoradar/marketplace-api/internal/http/handlers/auth/register"
	favoriteadd "github.com/avtoradar/marketplace-api/internal/http/handlers/favorite/add"
	favoritecheck "github.com/avtoradar/marketplace-api/internal/http/handlers/favorite/check"
	favoritelist "github.com/avtoradar/marketplace-api/internal/http/handlers/favorite/list"
	favoriteremove "github.com/avtoradar/marketplace-api/internal/http/handlers/favorite/remove"
	notificationlist "github.com/avtoradar/marketplace-api/internal/http/handlers/notification/list"
	"github.com/avtoradar/marketplace-api/internal/http/handlers/notification/markread"
	"github.com/avtoradar/marketplace-api/internal/http/handlers/settings/features"
	subscriptioncancel "github.com/avtoradar/marketplace-api/internal/http/handlers/subscription/cancel"
	subscriptioncreate "github.com/avtoradar/marketplace-api/internal/http/handlers/subscription/create"
	subscriptionplans "github.com/avtoradar/marketplace-api/internal/http/handlers/subscription/plans"
	subscriptionstatus "github.com/avtoradar/marketplace-api/internal/http/handlers/subscription/status"
	vehiclecreate "github.com/avtoradar/marketplace-api/internal/http/handlers/vehicle/create"
	vehiclelist "github.com/avtoradar/marketplace-api/internal/http/handlers/vehicle/list"
	"github.com/avtoradar/marketplace-api/internal/http/handlers/vehicle/predict"
	vehicleread "github.com/avtoradar/marketplace-api/internal/http/handlers/vehicle/read"
	vehicleremove "github.com/avtoradar/marketplace-api/internal/http/handlers/vehicle/remove"
	vehicleupdate "github.com/avtoradar/marketplace-api/internal/http/handlers/vehicle/update"
	"github.com/avtoradar/marketplace-api/internal/http/middlewarectx"
	adminservice "github.com/avtoradar/marketplace-api/internal/services/admin"
	authservice "github.com/avtoradar/marketplace-api/internal/services/auth"
	favoriteservice "github.com/avtoradar/marketplace-api/internal/services/favorite"
	notificationservice "github.com/avtoradar/marketplace-api/internal/services/notification"
	settingsservice "github.com/avtoradar/marketplace-api/internal/services/settings"
	subscriptionservice "github.com/avtoradar/marketplace-api/internal/services/subscription"
	vehicleservice "github.com/avtoradar/marketplace-api/internal/services/vehicle"
)

// Services объединяет зависимости, необходимые для регистрации маршрутов.
type Services struct {
	Auth          *authservice.AuthService
	Vehicles      *vehicleservice.VehicleService
	Prediction    *vehicleservice.PredictionService
	Subscriptions *subscriptionservice.SubscriptionService
	Favorites     *favoriteservice.FavoriteService
	Notifications *notificationservice.NotificationService
	Settings      *settingsservice.SettingsService
	Admin         *adminservice.AdminService
	TokenParser   middlewarectx.TokenParser
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc *Services) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, svc.Auth, svc.Settings).ServeHTTP)
		r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)
		r.Post("/auth/admin/login", adminlogin.New(logger, svc.Auth).ServeHTTP)
		r.Get("/subscriptions/plans", subscriptionplans.New(logger, svc.Subscriptions).ServeHTTP)
		r.Get("/settings/features", features.New(logger, svc.Settings).ServeHTTP)

		// Публичное чтение каталога: токен необязателен, но учитывается
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.OptionalJWTMiddleware(svc.TokenParser))
			r.Get("/vehicles", vehiclelist.New(logger, svc.Vehicles).ServeHTTP)
			r.Get("/vehicles/{id}", vehicleread.New(logger, svc.Vehicles).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.TokenParser, logger))
			r.Use(middlewarectx.MaintenanceMiddleware(svc.Settings))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/auth/me", me.New(logger, svc.Auth).ServeHTTP)

			r.Post("/vehicles", vehiclecreate.New(logger, svc.Vehicles).ServeHTTP)
			r.Put("/vehicles/{id}", vehicleupdate.New(logger, svc.Vehicles).ServeHTTP)
			r.Delete("/vehicles/{id}", vehicleremove.New(logger, svc.Vehicles).ServeHTTP)
			r.Post("/vehicles/{id}/predict-price", predict.New(logger, svc.Prediction, svc.Settings).ServeHTTP)

			r.Get("/subscriptions/status", subscriptionstatus.New(logger, svc.Subscriptions).ServeHTTP)
			r.Post("/subscriptions", subscriptioncreate.New(logger, svc.Subscriptions, svc.Settings).ServeHTTP)
			r.Delete("/subscriptions", subscriptioncancel.New(logger, svc.Subscriptions).ServeHTTP)

			r.Get("/favorites", favoritelist.New(logger, svc.Favorites).ServeHTTP)
			r.Post("/favorites/{id}", favoriteadd.New(logger, svc.Favorites).ServeHTTP)
			r.Get("/favorites/{id}", favoritecheck.New(logger, svc.Favorites).ServeHTTP)
			r.Delete("/favorites/{id}", favoriteremove.New(logger, svc.Favorites).ServeHTTP)

			r.Get("/notifications", notificationlist.New(logger, svc.Notifications).ServeHTTP)
			r.Post("/notifications/{id}/read", markread.New(logger, svc.Notifications).ServeHTTP)
		})

		// Административная панель
		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(svc.TokenParser, logger))
			r.Use(middlewarectx.RequireAdmin(logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			usersHandler := adminusers.New(logger, svc.Admin)
			r.Get("/users", usersHandler.List)
			r.Post("/users", usersHandler.Create)
			r.Get("/users/{id}", usersHandler.Get)
			r.Put("/users/{id}", usersHandler.Update)
			r.Post("/users/{id}/toggle-block", usersHandler.ToggleBlock)
			r.Delete("/users/{id}", usersHandler.Delete)

			adminsHandler := adminadmins.New(logger, svc.Admin)
			r.Get("/admins", adminsHandler.List)
			r.Post("/admins", adminsHandler.Create)
			r.Post("/admins/{id}/toggle-block", adminsHandler.ToggleBlock)
			r.Delete("/admins/{id}", adminsHandler.Delete)

			vehiclesHandler := adminvehicles.New(logger, svc.Vehicles)
			r.Get("/vehicles", vehiclesHandler.Table)
			r.Post("/vehicles", vehiclesHandler.Create)
			r.Put("/vehicles/{id}", vehiclesHandler.Update)
			r.Post("/vehicles/{id}/status", vehiclesHandler.SetStatus)
			r.Post("/vehicles/bulk-status", vehiclesHandler.BulkSetStatus)
			r.Post("/vehicles/bulk-delete", vehiclesHandler.BulkDelete)

			plansHandler := adminplans.New(logger, svc.Subscriptions)
			r.Post("/plans", plansHandler.Create)
			r.Patch("/plans/{id}", plansHandler.Update)
			r.Delete("/plans/{id}", plansHandler.Delete)

			r.Get("/subscriptions", adminsubscriptions.New(logger, svc.Subscriptions).List)

			settingsHandler := adminsettings.New(logger, svc.Settings)
			r.Get("/settings", settingsHandler.List)
			r.Put("/settings", settingsHandler.Put)

			permissionsHandler := adminpermissions.New(logger, svc.Admin)
			r.Get("/permissions", permissionsHandler.List)
			r.Get("/permissions/me", permissionsHandler.Mine)
			r.With(middlewarectx.RequireSuperadmin(logger)).Post("/permissions", permissionsHandler.Grant)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
