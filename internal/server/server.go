// Package server wires handlers, middleware and routes, and owns the
// HTTP server lifecycle. This is the composition root: every dependency
// is constructed and connected here, nowhere else.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/inkwell-cms/inkwell/internal/auth"
	"github.com/inkwell-cms/inkwell/internal/handler"
	"github.com/inkwell-cms/inkwell/internal/middleware"
	"github.com/inkwell-cms/inkwell/internal/model"
	sqliteRepo "github.com/inkwell-cms/inkwell/internal/repository/sqlite"
	"github.com/inkwell-cms/inkwell/internal/service"
)

// Config holds server configuration, loaded from the environment in
// cmd/server.
type Config struct {
	Port      int
	DBPath    string
	JWTSecret string
	// AdminEmail/AdminPassword seed the first admin account when the
	// users table is empty. Optional; without them a fresh database
	// has no way to reach the admin-gated endpoints.
	AdminEmail    string
	AdminPassword string
}

// Server owns the router and the database handle. The handle is an
// explicitly constructed, passed-down dependency — there is no global
// pool, which is what lets tests run against isolated stores.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency graph:
// sqlite stores → services → handlers → routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds the services, and declares
// every route with its guard.
//
// ROUTE MAP:
//
//	POST   /auth/login                    public
//	POST   /auth/logout                   public (clears cookie unconditionally)
//	GET    /auth/me                       authenticated, any role
//	GET    /healthz                       public liveness probe
//	/api/users...                         admin
//	/api/categories..., /api/tags...      editor and above
//	/api/settings...                      admin
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	passwords := auth.NewPasswordService()

	authService := service.NewAuthService(s.db.Users(), tokens, passwords, s.logger)
	userService := service.NewUserService(s.db.Users(), passwords, s.logger)
	categoryService := service.NewCategoryService(s.db.Categories(), s.logger)
	tagService := service.NewTagService(s.db.Tags(), s.logger)
	settingService := service.NewSettingService(s.db.Settings(), s.logger)

	if err := userService.Bootstrap(context.Background(), s.config.AdminEmail, s.config.AdminPassword); err != nil {
		return fmt.Errorf("bootstrapping admin account: %w", err)
	}

	authHandler := handler.NewAuthHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	categoryHandler := handler.NewCategoryHandler(categoryService, s.logger)
	tagHandler := handler.NewTagHandler(tagService, s.logger)
	settingHandler := handler.NewSettingHandler(settingService, s.logger)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/auth", func(r chi.Router) {
		r.Post("/login", authHandler.HandleLogin)
		r.Post("/logout", authHandler.HandleLogout)
		r.With(auth.RequireAuth(tokens, authService)).Get("/me", authHandler.HandleMe)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Use(auth.RequireRole(tokens, authService, model.RoleAdmin))
			r.Get("/", userHandler.HandleList)
			r.Post("/", userHandler.HandleCreate)
			r.Get("/{id}", userHandler.HandleGetByID)
			r.Put("/{id}", userHandler.HandleUpdate)
			r.Delete("/{id}", userHandler.HandleDeactivate)
			r.Delete("/{id}/permanent", userHandler.HandleDelete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(auth.RequireRole(tokens, authService, model.RoleEditor))
			r.Get("/", categoryHandler.HandleList)
			r.Get("/tree", categoryHandler.HandleTree)
			r.Get("/{slug}", categoryHandler.HandleGetBySlug)
			r.Post("/", categoryHandler.HandleCreate)
			r.Put("/{id}", categoryHandler.HandleUpdate)
			r.Delete("/{id}", categoryHandler.HandleDelete)
		})

		r.Route("/tags", func(r chi.Router) {
			r.Use(auth.RequireRole(tokens, authService, model.RoleEditor))
			r.Get("/", tagHandler.HandleList)
			r.Post("/", tagHandler.HandleCreate)
			r.Post("/bulk", tagHandler.HandleBulk)
			r.Delete("/unused", tagHandler.HandleDeleteUnused)
			r.Delete("/{id}", tagHandler.HandleDelete)
		})

		r.Route("/settings", func(r chi.Router) {
			r.Use(auth.RequireRole(tokens, authService, model.RoleAdmin))
			r.Get("/", settingHandler.HandleList)
			r.Get("/{key}", settingHandler.HandleGet)
			r.Put("/", settingHandler.HandleUpsert)
		})
	})

	return nil
}

// handleHealth reports liveness. A failed store ping is a 503 so ops
// tooling can tell a transient infrastructure problem from a bug.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.logger.Error("health check: store unreachable", slog.String("error", err.Error()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"degraded"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting, drain in-flight requests (30s), close the
// database (flushes the WAL and releases the file lock).
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
