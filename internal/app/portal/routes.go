// Package portal собирает HTTP API клиентского портала.
package portal

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	carcreate "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/cars/create"
	carlist "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/cars/list"
	carread "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/cars/read"
	carremove "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/cars/remove"
	carstatus "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/cars/status"
	carupdate "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/cars/update"
	admindashboard "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/dashboard"
	galleryadd "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/gallery/add"
	gallerycover "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/gallery/cover"
	galleryremove "github.com/magabrotheeeer/rental-portal/internal/http/handlers/admin/gallery/remove"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/auth/change"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/auth/forgot"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/auth/password"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/documents/upload"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/documents/view"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/fleet/catalog"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/health"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/profile/license"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/profile/patch"
	profileread "github.com/magabrotheeeer/rental-portal/internal/http/handlers/profile/read"
	"github.com/magabrotheeeer/rental-portal/internal/http/handlers/profile/save"
	"github.com/magabrotheeeer/rental-portal/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/rental-portal/internal/services/auth"
	dashboardservice "github.com/magabrotheeeer/rental-portal/internal/services/dashboard"
	"github.com/magabrotheeeer/rental-portal/internal/services/documents"
	fleetservice "github.com/magabrotheeeer/rental-portal/internal/services/fleet"
	profileservice "github.com/magabrotheeeer/rental-portal/internal/services/profile"
	"github.com/magabrotheeeer/rental-portal/internal/services/viewer"
)

// Services сервисы, которые обслуживает HTTP API.
type Services struct {
	Auth      *authservice.Service
	Profiles  *profileservice.Synchronizer
	Uploader  *documents.Uploader
	Viewer    *viewer.Viewer
	Fleet     *fleetservice.Service
	Dashboard *dashboardservice.Service
}

// Options параметры маршрутов, не зависящие от сервисов.
type Options struct {
	Tokens        middlewarectx.TokenParser
	AuthLimiter   *rate.Limiter
	MaxUploadSize int64
	HealthChecks  map[string]health.Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, svc Services, opts Options) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Get("/health", health.New(logger, opts.HealthChecks).ServeHTTP)
		r.Get("/fleet", catalog.New(logger, svc.Fleet).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(logger, opts.AuthLimiter))
			r.Post("/auth/register", register.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/login", login.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/forgot-password", forgot.New(logger, svc.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(opts.Tokens, logger))

			r.Post("/auth/password", password.New(logger, svc.Auth).ServeHTTP)
			r.Post("/auth/change-password", change.New(logger, svc.Auth).ServeHTTP)

			r.Get("/profile", profileread.New(logger, svc.Profiles).ServeHTTP)
			r.Put("/profile", save.New(logger, svc.Profiles).ServeHTTP)
			r.Patch("/profile", patch.New(logger, svc.Profiles).ServeHTTP)
			r.Put("/profile/license", license.New(logger, svc.Profiles).ServeHTTP)
			r.Post("/profile/documents/{slot}", upload.New(logger, svc.Uploader, opts.MaxUploadSize).ServeHTTP)
			r.Get("/profile/documents/{slot}/url", view.New(logger, svc.Profiles, svc.Viewer).ServeHTTP)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.RequireAdmin(logger))
				r.Get("/dashboard", admindashboard.New(logger, svc.Dashboard).ServeHTTP)
				r.Get("/cars", carlist.New(logger, svc.Fleet).ServeHTTP)
				r.Post("/cars", carcreate.New(logger, svc.Fleet).ServeHTTP)
				r.Get("/cars/{id}", carread.New(logger, svc.Fleet).ServeHTTP)
				r.Put("/cars/{id}", carupdate.New(logger, svc.Fleet).ServeHTTP)
				r.Delete("/cars/{id}", carremove.New(logger, svc.Fleet).ServeHTTP)
				r.Patch("/cars/{id}/status", carstatus.New(logger, svc.Fleet).ServeHTTP)
				r.Post("/cars/{id}/images", galleryadd.New(logger, svc.Fleet, opts.MaxUploadSize).ServeHTTP)
				r.Put("/cars/{id}/images/{imageID}/cover", gallerycover.New(logger, svc.Fleet).ServeHTTP)
				r.Delete("/cars/{id}/images/{imageID}", galleryremove.New(logger, svc.Fleet).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
