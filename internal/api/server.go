// Package api provides the HTTP server and handlers for the Inkwell API.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/config"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/ratelimit"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	cfg                 *config.Config
	tokens              *auth.TokenService
	authService         *service.AuthService
	bookService         *service.BookService
	chapterService      *service.ChapterService
	socialService       *service.SocialService
	notificationService *service.NotificationService
	userService         *service.UserService
	limiter             *ratelimit.KeyedRateLimiter
	router              *chi.Mux
	logger              *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg *config.Config,
	tokens *auth.TokenService,
	authService *service.AuthService,
	bookService *service.BookService,
	chapterService *service.ChapterService,
	socialService *service.SocialService,
	notificationService *service.NotificationService,
	userService *service.UserService,
	limiter *ratelimit.KeyedRateLimiter,
	logger *slog.Logger,
) *Server {
	s := &Server{
		cfg:                 cfg,
		tokens:              tokens,
		authService:         authService,
		bookService:         bookService,
		chapterService:      chapterService,
		socialService:       socialService,
		notificationService: notificationService,
		userService:         userService,
		limiter:             limiter,
		router:              chi.NewRouter(),
		logger:              logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.rateLimit)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	// Uploaded covers and avatars.
	s.router.Handle("/media/*", http.StripPrefix("/media/",
		http.FileServer(http.Dir(s.cfg.Data.MediaPath()))))

	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public).
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", s.handleSignup)
			r.Post("/login", s.handleLogin)
		})

		// Books are readable without an account; writing requires one.
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.handleListBooks)
			r.Get("/{id}", s.handleGetBook)
			r.Get("/{id}/chapters", s.handleListChapters)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/", s.handleCreateBook)
				r.Patch("/{id}", s.handleUpdateBook)
				r.Delete("/{id}", s.handleDeleteBook)
				r.Post("/{id}/complete", s.handleCompleteBook)
				r.Post("/{id}/cover", s.handleSetBookCover)
				r.Post("/{id}/chapters", s.handleCreateChapter)
				r.Put("/{id}/favourite", s.handleFavouriteBook)
				r.Delete("/{id}/favourite", s.handleUnfavouriteBook)
				r.Post("/{id}/comments", s.handleCommentOnBook)
			})
		})

		r.Route("/chapters", func(r chi.Router) {
			r.Get("/{id}", s.handleGetChapter)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Patch("/{id}", s.handleUpdateChapter)
				r.Delete("/{id}", s.handleDeleteChapter)
				r.Put("/{id}/like", s.handleLikeChapter)
				r.Delete("/{id}/like", s.handleUnlikeChapter)
				r.Post("/{id}/comments", s.handleCommentOnChapter)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/{handle}", s.handleGetUser)
			r.Get("/{handle}/books", s.handleListUserBooks)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Get("/me", s.handleGetCurrentUser)
				r.Patch("/me", s.handleUpdateProfile)
				r.Post("/me/image", s.handleSetUserImage)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListNotifications)
			r.Post("/read", s.handleMarkNotificationsRead)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}
