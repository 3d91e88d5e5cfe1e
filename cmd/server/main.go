package main

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/autoaudit/estimator/internal/config"
	"github.com/autoaudit/estimator/internal/logger"
	"github.com/autoaudit/estimator/report"
	"github.com/autoaudit/estimator/rules"
	"github.com/autoaudit/estimator/store"
	"github.com/autoaudit/estimator/vehicle"
)

type Server struct {
	db          *sql.DB // nil when running on the in-memory store
	store       store.ReportStore
	engine      *rules.Engine
	estimator   *report.Estimator
	unlockToken string
	router      *chi.Mux
}

// NewServer wires the store, engine and router from configuration
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	engine, err := loadEngine(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	var (
		db          *sql.DB
		reportStore store.ReportStore
	)
	if cfg.DatabaseURL != "" {
		db, err = store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		reportStore = store.NewCachedReportStore(
			store.NewPostgresReportStore(db),
			store.NewLRUReportCache(store.CacheConfig{Size: cfg.Cache.Size, TTL: cfg.Cache.TTL}),
		)
	} else {
		logger.Warn("DATABASE_URL not set, reports are kept in memory only")
		reportStore = store.NewInMemoryReportStore()
	}

	s := NewServerWithStore(reportStore, engine, report.NewEstimator(engine, vehicle.SystemClock{}), cfg.UnlockToken)
	s.db = db
	return s, nil
}

// NewServerWithStore builds a server around existing dependencies
func NewServerWithStore(reportStore store.ReportStore, engine *rules.Engine, estimator *report.Estimator, unlockToken string) *Server {
	s := &Server{
		store:       reportStore,
		engine:      engine,
		estimator:   estimator,
		unlockToken: unlockToken,
	}
	s.setupRoutes()
	return s
}

func loadEngine(catalogPath string) (*rules.Engine, error) {
	if catalogPath == "" {
		logger.Debug("using built-in catalog")
		return rules.NewDefaultEngine()
	}
	c, err := rules.LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded", "path", catalogPath, "version", c.Version, "rules", len(c.Rules))
	return rules.NewEngine(c)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)

	r.Route("/api/v1/reports", func(r chi.Router) {
		r.Post("/", s.handleCreateReport)

		r.Route("/{reportId}", func(r chi.Router) {
			r.Get("/", s.handleGetFullReport)
			r.Get("/preview", s.handleGetPreview)
			r.Post("/unlock", s.handleUnlock)
		})
	})

	r.Get("/api/v1/checkouts/{checkoutRef}/report", s.handleGetCheckoutReport)

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	backend := "memory"
	if s.db != nil {
		backend = "postgres"
		if err := s.db.PingContext(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "database unavailable", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:   "healthy",
		Store:    backend,
		Rules:    len(s.engine.RuleIDs()),
		Time:     time.Now().UTC(),
		Counters: logger.Counters(),
	})
}

// Create report handler: validate, estimate, store
func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	facts, err := req.Facts()
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid vehicle details", err)
		return
	}
	if err := facts.Validate(s.estimator.Clock().Now()); err != nil {
		respondError(w, http.StatusBadRequest, "invalid vehicle details", err)
		return
	}

	preview, full, err := s.estimator.Generate(facts)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "estimation failed", err)
		return
	}
	logger.Trace("report estimated",
		"year", facts.Year,
		"mileage", facts.Mileage,
		"fuel", facts.Fuel,
		"brand_tier", full.Vehicle.BrandTier,
		"exposure_low", preview.Summary.ExposureLow,
		"exposure_high", preview.Summary.ExposureHigh,
	)

	previewJSON, err := json.Marshal(preview)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode preview", err)
		return
	}
	fullJSON, err := json.Marshal(full)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode report", err)
		return
	}

	rep := &store.Report{
		Facts:   facts,
		Preview: previewJSON,
		Full:    fullJSON,
	}
	if err := s.store.Create(r.Context(), rep); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to store report", err)
		return
	}

	logger.ReportsCreated.Add(1)
	logger.Info("report created",
		"report_id", rep.ID,
		"risk_level", preview.Summary.RiskLevel,
		"exposure_high", preview.Summary.ExposureHigh,
		"items", len(full.Items),
	)

	respondJSON(w, http.StatusCreated, CreateReportResponse{ReportID: rep.ID})
}

// Preview handler: always available
func (s *Server) handleGetPreview(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.lookup(w, r)
	if !ok {
		return
	}
	respondRawJSON(w, http.StatusOK, rep.Preview)
}

// Full report handler: only once paid
func (s *Server) handleGetFullReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := s.lookup(w, r)
	if !ok {
		return
	}

	if !rep.IsPaid {
		logger.WarnHttp4xx(http.StatusPaymentRequired)
		respondJSON(w, http.StatusPaymentRequired, PaymentRequiredResponse{
			Error:    "payment required",
			ReportID: rep.ID,
			Preview:  rep.Preview,
		})
		return
	}

	respondRawJSON(w, http.StatusOK, rep.Full)
}

// Unlock handler: called once payment has been confirmed
func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	if s.unlockToken == "" {
		respondError(w, http.StatusServiceUnavailable, "unlocking is not configured", nil)
		return
	}
	token := r.Header.Get("X-Unlock-Token")
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.unlockToken)) != 1 {
		respondError(w, http.StatusUnauthorized, "invalid unlock token", nil)
		return
	}

	var req UnlockRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	reportID := chi.URLParam(r, "reportId")
	if req.CheckoutRef != "" {
		err := s.store.SetCheckoutRef(r.Context(), reportID, req.CheckoutRef)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "report not found", err)
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "failed to record checkout", err)
			return
		}
	}

	rep, err := s.store.MarkPaid(r.Context(), reportID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "report not found", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to unlock report", err)
		return
	}

	logger.ReportsUnlocked.Add(1)
	logger.Info("report unlocked", "report_id", rep.ID)

	respondJSON(w, http.StatusOK, UnlockResponse{
		ReportID:    rep.ID,
		IsPaid:      rep.IsPaid,
		Unlocked:    true,
		CheckoutRef: rep.CheckoutRef,
	})
}

// Checkout lookup handler: lets the payment success page find its report
func (s *Server) handleGetCheckoutReport(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "checkoutRef")
	rep, err := s.store.GetByCheckoutRef(r.Context(), ref)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "no report for checkout", err)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load report", err)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutReportResponse{
		ReportID: rep.ID,
		IsPaid:   rep.IsPaid,
	})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*store.Report, bool) {
	reportID := chi.URLParam(r, "reportId")
	rep, err := s.store.Get(r.Context(), reportID)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, "report not found", err)
		return nil, false
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load report", err)
		return nil, false
	}
	return rep, true
}

// Helper functions
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func respondRawJSON(w http.ResponseWriter, status int, payload json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}

	switch {
	case status >= 500:
		logger.ErrorHttp5xx()
		logger.Error(message, "status", status, "error", err)
	case status >= 400:
		logger.WarnHttp4xx(status)
	}

	respondJSON(w, status, response)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.SetLevel(cfg.LogLevel)
	logger.SetSampleRate(cfg.ErrorSampleRate)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	server, err := NewServer(ctx, cfg)
	cancel()
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}
	if server.db != nil {
		defer server.db.Close()
	}

	httpServer := &http.Server{
		Addr:         cfg.Port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting",
			"addr", cfg.Port,
			"rules", len(server.engine.RuleIDs()),
			"log_level", logger.GetLevel().String(),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigChan {
		if sig == syscall.SIGHUP {
			if err := reloadCatalog(server.engine, cfg.CatalogPath); err != nil {
				logger.Error("catalog reload failed, keeping current rules", "error", err)
			}
			continue
		}
		break
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

// reloadCatalog re-reads the catalog file; the old rules stay active on failure
func reloadCatalog(engine *rules.Engine, path string) error {
	if path == "" {
		return fmt.Errorf("CATALOG_PATH is not set")
	}
	c, err := rules.LoadCatalog(path)
	if err != nil {
		return err
	}
	if err := engine.Load(c); err != nil {
		return err
	}
	logger.With("catalog").Info("catalog reloaded", "path", path, "version", c.Version, "rules", len(c.Rules))
	return nil
}
