// Package server assembles the HTTP router.
package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mmynk/tracker/internal/auth"
	"github.com/mmynk/tracker/internal/middleware"
	"github.com/mmynk/tracker/internal/models"
	"github.com/mmynk/tracker/internal/service"
	"github.com/mmynk/tracker/internal/storage"
)

// Options tunes the router.
type Options struct {
	// CORSOrigins lists allowed origins. "*" allows any origin.
	CORSOrigins []string
}

// Server owns the gin engine and its dependencies.
type Server struct {
	router  *gin.Engine
	store   storage.Store
	metrics *middleware.Metrics
	logger  *slog.Logger
}

// New creates the router and registers every route.
func New(store storage.Store, authenticator auth.Authenticator, jwtManager *auth.JWTManager, logger *slog.Logger, opts Options) *Server {
	s := &Server{
		router:  gin.New(),
		store:   store,
		metrics: middleware.NewMetrics(),
		logger:  logger,
	}

	s.router.Use(gin.Recovery())
	s.router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	s.router.Use(middleware.Logging(logger))
	s.router.Use(s.metrics.Middleware())

	s.setupRoutes(authenticator, jwtManager)
	return s
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

func (s *Server) setupRoutes(authenticator auth.Authenticator, jwtManager *auth.JWTManager) {
	r := s.router

	r.GET("/health/", service.Health(s.store, s.logger))
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	authService := service.NewAuthService(authenticator, jwtManager, s.store, s.logger)
	r.POST("/api/auth/register/", authService.Register)
	r.POST("/api/auth/login/", authService.Login)
	r.POST("/api/auth/refresh/", authService.Refresh)

	api := r.Group("/api")
	api.Use(middleware.RequireAuth(jwtManager))

	api.GET("/auth/me/", authService.Me)

	summary := service.NewSummaryService(s.store.Transactions(), s.logger)
	api.GET("/transactions/summary/", summary.Summary)

	service.NewResource("event", s.store.Events(), newEvent,
		func() service.Payload[models.Event] { return &service.EventPayload{} }, s.logger).
		Register(api, "/events")
	service.NewResource("medical event", s.store.MedicalEvents(), newMedicalEvent,
		func() service.Payload[models.MedicalEvent] { return &service.MedicalEventPayload{} }, s.logger).
		Register(api, "/medical-events")
	service.NewResource("work event", s.store.WorkEvents(), newWorkEvent,
		func() service.Payload[models.WorkEvent] { return &service.WorkEventPayload{} }, s.logger).
		Register(api, "/work-events")
	service.NewResource("financial event", s.store.FinancialEvents(), newFinancialEvent,
		func() service.Payload[models.FinancialEvent] { return &service.FinancialEventPayload{} }, s.logger).
		Register(api, "/financial-events")
	service.NewResource("transaction", s.store.Transactions(), newTransaction,
		func() service.Payload[models.Transaction] { return &service.TransactionPayload{} }, s.logger).
		Register(api, "/transactions")
	service.NewResource("event series", s.store.Series(), newSeries,
		func() service.Payload[models.EventSeries] { return &service.SeriesPayload{} }, s.logger).
		Register(api, "/event-series")
}

// Record constructors carry the defaults applied before a create payload.

func newEvent() *models.Event { return &models.Event{} }

func newMedicalEvent() *models.MedicalEvent { return &models.MedicalEvent{} }

func newWorkEvent() *models.WorkEvent {
	return &models.WorkEvent{Occurrence: models.OccurrenceOnce}
}

func newFinancialEvent() *models.FinancialEvent {
	return &models.FinancialEvent{Occurrence: models.OccurrenceOnce}
}

func newTransaction() *models.Transaction { return &models.Transaction{} }

func newSeries() *models.EventSeries { return &models.EventSeries{Interval: 1} }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
