// Package server wires the application together: it builds the dependency
// graph (store, auth, AI, extraction, services, handlers), defines the
// routes, and runs the HTTP server with graceful shutdown.
//
// All collaborators except the token service are optional. A missing
// DATABASE_URL leaves the store nil and every store-touching route answers
// 503; a missing GEMINI_API_KEY leaves the generator nil and the composer
// falls back to its offline template; a missing tesseract binary leaves the
// OCR engine nil and extraction degrades to placeholder text. None of the
// three stop the server from starting.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/inkwell/internal/ai"
	"github.com/sakif/inkwell/internal/auth"
	"github.com/sakif/inkwell/internal/extract"
	"github.com/sakif/inkwell/internal/handler"
	"github.com/sakif/inkwell/internal/middleware"
	sqliteRepo "github.com/sakif/inkwell/internal/repository/sqlite"
	"github.com/sakif/inkwell/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port         int
	DatabaseURL  string // sqlite DSN; empty runs without a store
	JWTSecret    string
	GeminiAPIKey string // empty runs with the offline composer
	GeminiModel  string
	CORSOrigins  []string
}

// Server owns the router and the resources that outlive a request.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB // nil when no DATABASE_URL was configured
}

// New assembles the full dependency chain and registers the routes.
//
// The token service is the only hard requirement; everything else degrades.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	var db *sqliteRepo.DB
	if cfg.DatabaseURL != "" {
		db, err = sqliteRepo.New(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, store-backed endpoints will return 503")
	}

	var gen ai.TextGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := ai.NewGemini(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("gemini client init failed, using offline fallbacks", slog.String("error", err.Error()))
		} else {
			gen = gemini
		}
	} else {
		logger.Warn("GEMINI_API_KEY not set, using offline fallbacks")
	}

	var ocr extract.OCREngine
	tess, err := extract.NewTesseract()
	if err != nil {
		logger.Warn("tesseract not found, OCR disabled", slog.String("error", err.Error()))
	} else {
		ocr = tess
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens, gen, ocr)
	return s, nil
}

func (s *Server) setupRoutes(tokens *auth.TokenService, gen ai.TextGenerator, ocr extract.OCREngine) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.CORS(s.config.CORSOrigins))

	extractor := extract.New(ocr, s.logger)
	composer := ai.NewComposer(gen, s.logger)

	// When the store is nil the services still get wired; requireStore
	// answers before any handler can dereference the missing repositories.
	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
	sampleService := service.NewSampleService(s.db, extractor, gen, s.logger)
	noteService := service.NewNoteService(s.db, s.db, extractor, composer, s.logger)

	authHandler := handler.NewAuthHandler(authService, s.logger)
	sampleHandler := handler.NewSampleHandler(sampleService, s.logger)
	noteHandler := handler.NewNoteHandler(noteService, s.logger)

	s.router.Get("/", s.handleBanner)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.requireStore)

		r.Post("/auth/register", authHandler.HandleRegister)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))

			r.Get("/auth/me", authHandler.HandleMe)

			r.Post("/samples/upload", sampleHandler.HandleUpload)
			r.Get("/samples", sampleHandler.HandleList)

			r.Post("/notes/generate", noteHandler.HandleGenerate)
			r.Post("/notes/create", noteHandler.HandleCreate)
			r.Get("/notes", noteHandler.HandleList)
			r.Get("/notes/stats/summary", noteHandler.HandleStats)
			r.Get("/notes/{id}", noteHandler.HandleGet)
			r.Patch("/notes/{id}", noteHandler.HandleUpdate)
			r.Delete("/notes/{id}", noteHandler.HandleDelete)
		})
	})
}

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Handwriting Intelligence Platform API",
		"version": "1.0.0",
	})
}

// requireStore rejects store-backed requests early when no database was
// configured, so handlers never see a nil repository.
func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.db == nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"error":   "service_unavailable",
				"message": "no database configured",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer func() {
		if s.db != nil {
			s.db.Close()
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // OCR and AI calls can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.Bool("store", s.db != nil),
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
