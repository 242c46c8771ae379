package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Check is a named dependency check run by /health and /ready
type Check struct {
	Name string
	Run  func(ctx context.Context) error
}

// RedisCheck pings Redis
func RedisCheck(client *redis.Client) Check {
	return Check{
		Name: "redis",
		Run: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		},
	}
}

// WorkerCheck reports whether the worker's processing loop is running
func WorkerCheck(w *Worker) Check {
	return Check{
		Name: "worker",
		Run: func(context.Context) error {
			if !w.Running() {
				return fmt.Errorf("processing loop not running")
			}
			return nil
		},
	}
}

// HealthServer provides HTTP health check and metrics endpoints
type HealthServer struct {
	port     int
	checks   []Check
	gatherer prometheus.Gatherer
	logger   *zap.Logger
	server   *http.Server
}

// NewHealthServer creates a new health server. /metrics exposes gatherer.
func NewHealthServer(port int, gatherer prometheus.Gatherer, logger *zap.Logger, checks ...Check) *HealthServer {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &HealthServer{
		port:     port,
		checks:   checks,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Handler returns the mux serving /health, /ready and /metrics
func (hs *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)
	mux.Handle("/metrics", promhttp.HandlerFor(hs.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start starts the health check server
func (hs *HealthServer) Start() error {
	hs.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("starting health server", zap.Int("port", hs.port))

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hs.logger.Error("health server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the health check server
func (hs *HealthServer) Stop() error {
	if hs.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hs.logger.Info("stopping health server")
	return hs.server.Shutdown(ctx)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// runChecks runs every dependency check and reports whether all passed
func (hs *HealthServer) runChecks(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	results := make(map[string]string, len(hs.checks))
	ok := true
	for _, c := range hs.checks {
		if err := c.Run(ctx); err != nil {
			results[c.Name] = fmt.Sprintf("unhealthy: %v", err)
			ok = false
			continue
		}
		results[c.Name] = "healthy"
	}
	return results, ok
}

// handleHealth reports each check's status
func (hs *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks, ok := hs.runChecks(r.Context())
	if !ok {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "healthy",
		Checks: checks,
	})
}

// handleReady reports ready only when every check passes
func (hs *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, ok := hs.runChecks(r.Context()); !ok {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "not ready",
		})
		return
	}

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
	})
}

// respondJSON writes a JSON response
func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hs.logger.Error("failed to encode response", zap.Error(err))
	}
}
