package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZertGraf/bugtracker/internal/api/handler"
	"github.com/ZertGraf/bugtracker/internal/api/middleware"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"net/http"
	"slices"
	"time"
)

const requestTimeout = 30 * time.Second

type ServerConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
}

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Users      *handler.UserHandler
	Bugs       *handler.BugHandler
	Health     *handler.HealthHandler
	Authorizer middleware.Authorizer
}

type HTTPServer struct {
	server *http.Server
	config *ServerConfig
	logger *logger.Logger
}

func NewHTTPServer(config *ServerConfig, handlers *Handlers, logger *logger.Logger) *HTTPServer {
	router := NewRouter(config.AllowedOrigins, handlers, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &HTTPServer{
		server: server,
		config: config,
		logger: logger.Component("http"),
	}
}

func (s *HTTPServer) Start(_ context.Context) error {
	go func() {
		s.logger.Info("http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	}()

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping http server")
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("http server shutdown failed", "error", err)
		return err
	}

	s.logger.Info("http server stopped")
	return nil
}

// NewRouter builds the route table. Paths keep the mixed casing the
// browser client calls them with.
func NewRouter(allowedOrigins []string, h *Handlers, logger *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(logger.Component("http")))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: !allowsAnyOrigin(allowedOrigins),
		MaxAge:           300,
	}))
	r.Use(middleware.Security())
	r.Use(middleware.Timeout(requestTimeout))

	apiLogger := logger.Component("http/auth")
	requireSession := middleware.Authenticate(h.Authorizer, apiLogger)

	r.Get("/health", h.Health.Live)
	r.Get("/ready", h.Health.Ready)

	r.Post("/register", h.Users.Register)
	r.With(middleware.OptionalAuthenticate(h.Authorizer, apiLogger)).
		Post("/homepage/login", h.Users.Login)
	r.With(requireSession).Post("/homepage/logout", h.Users.Logout)

	r.Route("/userSettings", func(r chi.Router) {
		r.Use(requireSession)
		r.Post("/changePassword", h.Users.ChangePassword)
		r.Post("/changeUserInfo", h.Users.ChangeUserInfo)
	})

	r.Post("/homePage/search", h.Bugs.Search)

	r.Route("/api", func(r chi.Router) {
		r.Get("/get_bugs", h.Bugs.List)
		r.Get("/users", h.Users.ListUsers)
		r.With(requireSession).Post("/add_bug", h.Bugs.Add)
	})

	return r
}

// allowsAnyOrigin reports whether origins contains the wildcard. Cookies are
// never shared with a wildcard origin list.
func allowsAnyOrigin(origins []string) bool {
	return slices.Contains(origins, "*")
}
