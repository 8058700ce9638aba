package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	authsvc "github.com/mecdoors/siteledger/internal/auth"
	"github.com/mecdoors/siteledger/internal/http/auth"
	"github.com/mecdoors/siteledger/internal/http/client"
	"github.com/mecdoors/siteledger/internal/http/export"
	"github.com/mecdoors/siteledger/internal/http/operation"
	"github.com/mecdoors/siteledger/internal/http/report"
	"github.com/mecdoors/siteledger/internal/http/sale"
)

func New(
	authService *authsvc.Service,
	authV1 *auth.Handler,
	clientsV1 *client.Handler,
	operationsV1 *operation.Handler,
	salesV1 *sale.Handler,
	reportsV1 *report.Handler,
	exportV1 *export.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.PublicRoutes(r)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware(authService))
				authV1.Routes(r)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(authService))

			r.Route("/clients", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				clientsV1.Routes(r)
			})

			r.Route("/operations", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				operationsV1.Routes(r)
			})

			r.Route("/sales", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				salesV1.Routes(r)
			})

			r.Route("/reports", reportsV1.Routes)

			r.Route("/export", exportV1.Routes)
		})
	})

	return router
}
