// Package server exposes click evaluation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/delivery"
	"github.com/dryfly-scientist/Hydro-Map/internal/tnri"
	"github.com/dryfly-scientist/Hydro-Map/internal/waterquality"
	"github.com/dryfly-scientist/Hydro-Map/internal/watershed"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxRequestBodySize = 1 << 16

// Clicks is the part of the delivery service the server needs.
type Clicks interface {
	EvaluateClick(ctx context.Context, c tnri.Click) (*tnri.Summary, error)
	ListWatersheds() ([]watershed.Watershed, error)
	Ready() bool
}

type Server struct {
	httpServer *http.Server
	clicks     Clicks
	discharge  float64
	logger     *slog.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

type clickRequest struct {
	Lon          *float64 `json:"lon"`
	Lat          *float64 `json:"lat"`
	Discharge    *float64 `json:"discharge"`
	DischargeCFS bool     `json:"discharge_cfs"`
}

type watershedResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// NewServer wires POST /v1/clicks, GET /v1/watersheds, /healthz, /readyz and
// /metrics. discharge is used when a click does not carry one.
func NewServer(addr string, clicks Clicks, discharge float64, timeout time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{clicks: clicks, discharge: discharge, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if timeout > 0 {
		r.Use(middleware.Timeout(timeout))
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", s.handleReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/v1", func(r chi.Router) {
		r.Post("/clicks", s.handleClick)
		r.Get("/watersheds", s.handleWatersheds)
	})

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: timeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the router, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.clicks.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: delivery.ErrNotReady.Error()})
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req clickRequest
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if req.Lon == nil || req.Lat == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "lon and lat are required"})
		return
	}
	if req.DischargeCFS && req.Discharge == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "discharge_cfs requires discharge"})
		return
	}
	click := tnri.Click{Lon: *req.Lon, Lat: *req.Lat, Discharge: s.discharge}
	if req.Discharge != nil {
		click.Discharge = *req.Discharge
		click.DischargeCFS = req.DischargeCFS
	}

	summary, err := s.clicks.EvaluateClick(r.Context(), click)
	if err != nil {
		status := statusFor(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleWatersheds(w http.ResponseWriter, _ *http.Request) {
	list, err := s.clicks.ListWatersheds()
	if err != nil {
		s.logger.Error("failed to list watersheds", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	out := make([]watershedResponse, len(list))
	for i, ws := range list {
		out[i] = watershedResponse{ID: ws.ID, Name: ws.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, delivery.ErrInvalidClick):
		return http.StatusBadRequest
	case errors.Is(err, watershed.ErrUnresolvedGeometry):
		return http.StatusNotFound
	case errors.Is(err, waterquality.ErrInsufficientSampleData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, delivery.ErrNotReady):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
