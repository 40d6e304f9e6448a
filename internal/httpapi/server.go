// Package httpapi exposes users, reports and their children over JSON/HTTP.
// Handlers stay thin; authorization and validation live in the service layer.
package httpapi

import (
	"context"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/grantlemons/expenser/internal/service"
)

// Info is served by GET /api/info.
type Info struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Deps are the services behind the handlers.
type Deps struct {
	Auth    service.AuthService
	Users   *service.UserService
	Reports *service.ReportService
	// Ready backs GET /api/health; nil means always healthy.
	Ready func(ctx context.Context) error
}

// Options tune the middleware stack.
type Options struct {
	RequestTimeout     time.Duration
	CORSAllowedOrigins []string
	Info               Info
}

// Server wires handlers and middleware using chi.
type Server struct {
	auth    service.AuthService
	users   *service.UserService
	reports *service.ReportService
	ready   func(ctx context.Context) error
	info    Info
	log     *zap.Logger
	rt      *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(d Deps, opts Options, log *zap.Logger) *Server {
	s := &Server{
		auth:    d.Auth,
		users:   d.Users,
		reports: d.Reports,
		ready:   d.Ready,
		info:    opts.Info,
		log:     log,
		rt:      chi.NewRouter(),
	}
	s.rt.Use(requestID)
	s.rt.Use(requestLogger(log))
	s.rt.Use(metricsMiddleware)
	s.rt.Use(recoverer(log))
	if len(opts.CORSAllowedOrigins) > 0 {
		s.rt.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
			ExposedHeaders:   []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	s.routes(opts.RequestTimeout)
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

func (s *Server) routes(timeout time.Duration) {
	s.rt.Route("/api", func(r chi.Router) {
		r.Get("/health", s.health)
		r.Get("/info", s.getInfo)
		r.Handle("/metrics", promhttp.Handler())

		r.Group(func(r chi.Router) {
			if timeout > 0 {
				r.Use(chimw.Timeout(timeout))
			}
			r.Post("/auth/login", s.login)
			r.Post("/users", s.register)

			r.Group(func(r chi.Router) {
				r.Use(s.authenticate)

				r.Route("/users/{id}", func(r chi.Router) {
					r.Get("/", s.getUser)
					r.Put("/", s.updateUser)
					r.Delete("/", s.deleteUser)
					r.Get("/pfp", s.getProfilePicture)
					r.Put("/pfp", s.putProfilePicture)
					r.Put("/password", s.putPassword)
					r.Get("/reports", s.listOwnedReports)
					r.Get("/reports/access", s.listReadableReports)
					r.Get("/reports/writable", s.listWritableReports)
				})

				r.Get("/reports", s.listVisibleReports)
				r.Post("/reports", s.createReport)
				r.Route("/reports/{reportId}", func(r chi.Router) {
					r.Get("/", s.getReport)
					r.Put("/", s.replaceReport)
					r.Delete("/", s.deleteReport)
					r.Get("/total", s.reportTotal)

					r.Route("/items", func(r chi.Router) {
						r.Get("/", s.listItems)
						r.Post("/", s.createItem)
						r.Delete("/", s.clearItems)
						r.Get("/{id}", s.getItem)
						r.Put("/{id}", s.replaceItem)
						r.Delete("/{id}", s.deleteItem)
					})
					r.Route("/proof", func(r chi.Router) {
						r.Get("/", s.listProofs)
						r.Post("/", s.createProof)
						r.Delete("/", s.clearProofs)
						r.Get("/{id}", s.getProof)
						r.Put("/{id}", s.replaceProof)
						r.Delete("/{id}", s.deleteProof)
					})
					r.Route("/access", func(r chi.Router) {
						r.Get("/", s.listGrants)
						r.Post("/", s.createGrant)
						r.Delete("/", s.clearGrants)
						r.Get("/{id}", s.getGrant)
						r.Put("/{id}", s.replaceGrant)
						r.Delete("/{id}", s.deleteGrant)
					})
				})
			})
		})
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.log.Warn("health", zap.Error(err), zap.String("req_id", chimw.GetReqID(r.Context())))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}
