// Package server exposes organizex over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jeffanddom/organizex/internal/coordinator"
	"github.com/jeffanddom/organizex/internal/database"
	"github.com/jeffanddom/organizex/internal/logging"
	"github.com/jeffanddom/organizex/internal/quest"
	"github.com/jeffanddom/organizex/internal/rewards"
)

// Server handles HTTP requests
type Server struct {
	db          *database.Database
	coordinator *coordinator.Coordinator
	quests      *quest.Engine
	rewards     *rewards.Engine
	logger      logging.Logger
	router      *chi.Mux
	httpServer  *http.Server
	config      Config
}

// Config holds server configuration
type Config struct {
	ListenAddr     string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// New creates a new HTTP server
func New(
	db *database.Database,
	coord *coordinator.Coordinator,
	quests *quest.Engine,
	rw *rewards.Engine,
	config Config,
	logger logging.Logger,
) *Server {
	if config.ListenAddr == "" {
		config.ListenAddr = ":5000"
	}
	if config.RequestTimeout <= 0 {
		// scans of large folders are slow
		config.RequestTimeout = 5 * time.Minute
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = 1 << 20
	}
	if logger == nil {
		logger = logging.Nop()
	}

	s := &Server{
		db:          db,
		coordinator: coord,
		quests:      quests,
		rewards:     rw,
		logger:      logger,
		config:      config,
	}
	s.setupRoutes()
	s.httpServer = &http.Server{
		Addr:              config.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(s.config.RequestTimeout))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Use(s.requireJSON)

		r.Get("/user", s.handleGetUser)
		r.Get("/user/stats", s.handleGetStats)

		r.Route("/quests", func(r chi.Router) {
			r.Get("/", s.handleListQuests)
			r.Get("/today", s.handleTodaysQuests)
			r.Get("/suggestions", s.handleQuestSuggestions)
			r.Post("/{id}/complete", s.handleCompleteQuest)
		})

		r.Route("/files", func(r chi.Router) {
			r.Post("/scan", s.handleScan)
			r.Post("/classify", s.handleClassify)
			r.Post("/organize", s.handleOrganize)
			r.Post("/quick-sort/{folder}", s.handleQuickSort)
		})

		r.Route("/duplicates", func(r chi.Router) {
			r.Post("/scan", s.handleScanDuplicates)
			r.Delete("/delete", s.handleDeleteDuplicates)
		})

		r.Route("/rewards", func(r chi.Router) {
			r.Get("/badges", s.handleListBadges)
			r.Get("/achievements", s.handleListAchievements)
			r.Get("/summary", s.handleRewardsSummary)
			r.Post("/check", s.handleCheckRewards)
			r.Get("/daily-bonus", s.handleDailyBonus)
			r.Post("/daily-bonus", s.handleClaimDailyBonus)
		})

		r.Get("/activity/recent", s.handleRecentActivity)

		r.Get("/operations", s.handleListOperations)
		r.Delete("/operations", s.handleCancelOperation)
	})

	s.router = r
}

// Start listens until Shutdown is called. It returns nil at once when
// Shutdown already ran.
func (s *Server) Start() error {
	s.logger.Info("listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
