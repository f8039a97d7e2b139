package tracking

import (
	"encoding/json"
	"net/http"
	"time"

	"eatopia/internal/logger"
)

// OrderStatusResponse is the JSON body of GET /orders/{id}/status
type OrderStatusResponse struct {
	OrderID int    `json:"order_id"`
	Status  string `json:"status"`
}

// Handler handles HTTP requests for the tracking service
type Handler struct {
	service *Service
	acquire AcquireFunc
	logger  *logger.Logger
}

// NewHandler creates a new tracking handler
func NewHandler(service *Service, acquire AcquireFunc, log *logger.Logger) *Handler {
	return &Handler{
		service: service,
		acquire: acquire,
		logger:  log,
	}
}

// RegisterRoutes adds the tracking endpoints to mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /orders/{id}/status", h.GetOrderStatus)
}

// GetOrderStatus handles GET /orders/{id}/status requests
func (h *Handler) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	requestID := logger.RequestIDFrom(r.Context())

	orderID, err := ParseOrderID(r.PathValue("id"))
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid order id", requestID)
		return
	}

	h.logger.Debug("request_received", "Get order status request", requestID, map[string]interface{}{
		"order_id": orderID,
		"endpoint": "status",
	})

	gw, err := h.acquire(r.Context())
	if err != nil {
		h.logger.Error("db_acquire_failed", "Failed to acquire database connection", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusServiceUnavailable, "Database unavailable", requestID)
		return
	}
	defer gw.Close()

	status, found, err := h.service.GetOrderStatus(r.Context(), gw, orderID)
	if err != nil {
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}
	if !found {
		h.writeErrorResponse(w, http.StatusNotFound, "Order not found", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(OrderStatusResponse{OrderID: orderID, Status: status}); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode error response", requestID, err, nil)
	}
}
