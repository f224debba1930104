package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/df07/go-raytracer-bvh/pkg/metrics"
	"github.com/df07/go-raytracer-bvh/pkg/scene"
)

// consoleLimit is the number of log messages kept for /api/console
const consoleLimit = 200

// Server answers ray queries against a scene over HTTP
type Server struct {
	port    int
	scene   *scene.Scene
	metrics *metrics.Metrics
	console *Console
	logger  *zap.Logger // Tees into the console
	access  *zap.Logger // Request log, kept out of the console
}

// NewServer creates a new query server. A nil metrics creates a fresh
// registry; a nil logger discards logs.
func NewServer(port int, sc *scene.Scene, m *metrics.Metrics, logger *zap.Logger) *Server {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	console := NewConsole(consoleLimit)
	return &Server{
		port:    port,
		scene:   sc,
		metrics: m,
		console: console,
		logger: logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, console.Core(zapcore.InfoLevel))
		})),
		access: logger.Named("http"),
	}
}

// Router returns the HTTP handler with every route and middleware attached
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", s.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/api/scenes", s.handleScenes).Methods(http.MethodGet)
	r.HandleFunc("/api/nearest", s.handleNearest).Methods(http.MethodGet)
	r.HandleFunc("/api/occluded", s.handleOccluded).Methods(http.MethodGet)
	r.HandleFunc("/api/shapes", s.handleAddShape).Methods(http.MethodPost)
	r.HandleFunc("/api/rebuild", s.handleRebuild).Methods(http.MethodPost)
	r.HandleFunc("/api/trace", s.handleTrace).Methods(http.MethodGet)
	r.HandleFunc("/api/trace/stream", s.handleTraceStream).Methods(http.MethodGet)
	r.HandleFunc("/api/console", s.handleConsole).Methods(http.MethodGet)

	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	h := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.logger)),
		handlers.PrintRecoveryStack(true),
	)(r)
	return handlers.LoggingHandler(zap.NewStdLog(s.access).Writer(), h)
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info("query server started", zap.String("addr", srv.Addr), zap.String("scene", s.scene.Name()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("query server stopping")
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutting down")
	}
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the procedural scene kinds
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	kinds := scene.Kinds()
	list := make([]map[string]string, 0, len(kinds))
	for _, kind := range kinds {
		list = append(list, map[string]string{
			"kind":        kind,
			"description": scene.Describe(kind),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"current": s.scene.Name(),
		"scenes":  list,
	})
}

// handleConsole returns the most recent server log messages
func (s *Server) handleConsole(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.console.Messages())
}

// writeJSON encodes v with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError reports err as {"error": "..."}
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseBoolParam parses a boolean parameter from URL query
func parseBoolParam(values url.Values, key string, defaultValue bool) (bool, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return false, errors.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
