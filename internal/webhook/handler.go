package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"eatopia/internal/logger"
)

const maxBodyBytes = 1 << 20

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// SessionCounter reports the number of live session orders
type SessionCounter interface {
	Len() int
}

// Handler serves the fulfillment webhook over HTTP
type Handler struct {
	dispatcher *Dispatcher
	db         Pinger
	sessions   SessionCounter
	logger     *logger.Logger
}

// NewHandler creates a new webhook handler. db and sessions may be nil.
func NewHandler(dispatcher *Dispatcher, db Pinger, sessions SessionCounter, log *logger.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		db:         db,
		sessions:   sessions,
		logger:     log,
	}
}

// Fulfill handles POST / requests. The reply is always 200 with a
// fulfillmentText; failures only change the text.
func (h *Handler) Fulfill(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	var text string
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Error("body_read_failed", "Failed to read request body", requestID, err, map[string]interface{}{
			"content_length": r.ContentLength,
		})
		text = MsgError
	} else {
		text = h.dispatcher.Dispatch(r.Context(), body)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(WebhookResponse{FulfillmentText: text}); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	healthy := true
	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Error("health_check_failed", "Database ping failed", logger.RequestIDFrom(ctx), err, nil)
			healthy = false
		}
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "webhook",
		"healthy":   healthy,
	}
	if h.sessions != nil {
		response["sessions"] = h.sessions.Len()
	}

	w.Header().Set("Content-Type", "application/json")

	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		response["status"] = "unhealthy"
	}

	json.NewEncoder(w).Encode(response)
}

// SetupRoutes sets up the HTTP routes. register adds routes owned by other
// services to the same mux.
func (h *Handler) SetupRoutes(register ...func(*http.ServeMux)) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /{$}", h.Fulfill)
	mux.HandleFunc("GET /health", h.HealthCheck)
	for _, reg := range register {
		reg(mux)
	}

	return h.withLogging(mux)
}

// withLogging adds request logging middleware and a request id
func (h *Handler) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		r = r.WithContext(logger.WithRequestID(r.Context(), requestID))

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
				"user_agent":  r.Header.Get("User-Agent"),
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
