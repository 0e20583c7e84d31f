// Package devapi is a local stand-in for the remote user API: in-memory
// accounts, bcrypt password hashes and HS256 bearer tokens behind a chi router.
//
// Routes:
//
//	POST   /api/auth/login     → {token, user}
//	POST   /api/auth/register  → {id, username, email, token}
//	GET    /api/users/me       → User (auth)
//	GET    /api/users          → []User (auth)
//	PUT    /api/users/{id}     → User (auth, self or admin)
//	DELETE /api/users/{id}     → 204 (auth, self or admin)
//	GET    /metrics            → Prometheus exposition
//
// Errors are JSON objects of the form {"message": "..."}.
package devapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrijs2005/apexclient/internal/devapi/config"
	"github.com/dmitrijs2005/apexclient/internal/logging"
)

// Server wires the user store, token settings and router together.
type Server struct {
	cfg      *config.Config
	users    *UserStore
	log      logging.Logger
	registry *prometheus.Registry
	handler  http.Handler
}

// NewServer builds a server with an empty store. bcryptCost of zero selects
// the bcrypt default; tests pass bcrypt.MinCost.
func NewServer(cfg *config.Config, log logging.Logger, bcryptCost int) *Server {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	s := &Server{
		cfg:      cfg,
		users:    NewUserStore(bcryptCost),
		log:      log,
		registry: reg,
	}
	s.handler = s.router()
	return s
}

// Users exposes the backing store for seeding.
func (s *Server) Users() *UserStore {
	return s.users
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// SeedAdmin creates the configured admin account, if any.
func (s *Server) SeedAdmin(ctx context.Context) error {
	if s.cfg.AdminEmail == "" {
		return nil
	}
	u, err := s.users.Create(s.cfg.AdminUsername, s.cfg.AdminEmail, s.cfg.AdminPassword, RoleAdmin)
	if err != nil {
		return err
	}
	s.log.Info(ctx, "admin account created", "id", u.ID, "email", u.Email)
	return nil
}

func (s *Server) router() http.Handler {
	h := &handler{
		users:    s.users,
		secret:   []byte(s.cfg.SecretKey),
		tokenTTL: s.cfg.TokenTTL(),
		validate: validator.New(),
		log:      s.log,
	}

	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(withRequestLogging(s.log))
	r.Use(chiMiddleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.login)
		r.Post("/auth/register", h.register)

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			r.Get("/users/me", h.me)
			r.Get("/users", h.list)
			r.Put("/users/{id}", h.update)
			r.Delete("/users/{id}", h.remove)
		})
	})

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "Not found")
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "dev API listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info(ctx, "dev API stopped")
	return nil
}
