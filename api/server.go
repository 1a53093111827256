// Package api exposes the collection and basket operations over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"basket-prices/metrics"
	"basket-prices/models"
	"basket-prices/services"
	"basket-prices/storage"
	"basket-prices/utils"
)

// PageCollection is the feature key that allows triggering collections.
const PageCollection = "coleta"

const (
	shutdownTimeout = 10 * time.Second
	corsMaxAge      = 12 * time.Hour
)

// CollectionService starts collection runs, reports their progress and runs
// live searches that bypass storage.
type CollectionService interface {
	Start(ctx context.Context, req services.CollectRequest) (string, error)
	Progress() models.ProgressSnapshot
	SearchLive(ctx context.Context, term string, taxIDs []string) ([]models.PriceRecord, error)
}

// BasketService prices a basket across markets.
type BasketService interface {
	Evaluate(ctx context.Context, user models.UserContext, basketID int64, marketTaxIDs []string) (*models.BasketPriceReport, error)
}

// Options configures a Server.
type Options struct {
	JWTSecret       string
	DefaultLookback int
	// AllowedOrigins lists browser origins allowed by CORS; empty allows any.
	AllowedOrigins []string
}

// Server is the HTTP surface in front of the collector and basket optimizer.
type Server struct {
	engine     *gin.Engine
	collection CollectionService
	baskets    BasketService
	jobs       storage.JobStore
	logger     *utils.Logger
	lookback   int
}

func NewServer(
	opts Options,
	collection CollectionService,
	baskets BasketService,
	jobs storage.JobStore,
	m *metrics.Metrics,
	logger *utils.Logger,
) *Server {
	lookback := opts.DefaultLookback
	if !models.ValidLookback(lookback) {
		lookback = models.DefaultLookbackDays
	}

	s := &Server{
		engine:     gin.New(),
		collection: collection,
		baskets:    baskets,
		jobs:       jobs,
		logger:     logger,
		lookback:   lookback,
	}

	s.engine.Use(corsMiddleware(opts.AllowedOrigins), gin.Recovery(), requestLogger(logger))
	s.engine.GET("/health", s.health)
	s.engine.GET("/metrics", gin.WrapH(m.Handler()))

	authed := s.engine.Group("/api", AuthMiddleware(opts.JWTSecret))
	authed.POST("/collection/trigger", RequirePage(PageCollection), s.triggerCollection)
	authed.GET("/collection/status", s.collectionStatus)
	authed.GET("/collection/jobs/:id", s.getJob)
	authed.POST("/basket/calculate", s.calculateBasket)
	authed.POST("/search/realtime", s.searchRealtime)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("[api] Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api: shutdown: %w", err)
	}
	return nil
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        corsMaxAge,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type triggerRequest struct {
	SelectedMarkets []string `json:"selected_markets"`
	LookbackDays    *int     `json:"lookback_days"`
}

func (s *Server) triggerCollection(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(c, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}

	days := s.lookback
	if req.LookbackDays != nil {
		days = *req.LookbackDays
	}
	if !models.ValidLookback(days) {
		s.writeError(c, fmt.Errorf("%w: lookback_days must be between %d and %d",
			models.ErrValidation, models.MinLookbackDays, models.MaxLookbackDays))
		return
	}

	jobID, err := s.collection.Start(c.Request.Context(), services.CollectRequest{
		MarketTaxIDs: req.SelectedMarkets,
		LookbackDays: days,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id":        jobID,
		"status":        models.JobRunning,
		"lookback_days": days,
		"message":       fmt.Sprintf("Collection started with %d days of history", days),
	})
}

func (s *Server) collectionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.collection.Progress())
}

func (s *Server) getJob(c *gin.Context) {
	job, err := s.jobs.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

type basketRequest struct {
	BasketID int64    `json:"basket_id" binding:"required"`
	CNPJs    []string `json:"cnpjs"`
}

func (s *Server) calculateBasket(c *gin.Context) {
	var req basketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}

	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	report, err := s.baskets.Evaluate(c.Request.Context(), user, req.BasketID, req.CNPJs)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type realtimeSearchRequest struct {
	Product string   `json:"produto" binding:"required"`
	CNPJs   []string `json:"cnpjs"`
}

func (s *Server) searchRealtime(c *gin.Context) {
	var req realtimeSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %v", models.ErrValidation, err))
		return
	}

	records, err := s.collection.SearchLive(c.Request.Context(), req.Product, req.CNPJs)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if user, ok := CurrentUser(c); ok {
		s.logger.Info("[api] Live search %q by %s across %d markets: %d results",
			req.Product, user.UserID, len(req.CNPJs), len(records))
	}

	c.JSON(http.StatusOK, gin.H{
		"produto":       req.Product,
		"lookback_days": services.LiveSearchLookbackDays,
		"count":         len(records),
		"results":       records,
	})
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCollectionRunning):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
