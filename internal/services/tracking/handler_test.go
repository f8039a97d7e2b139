package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eatopia/internal/logger"
)

func newTestMux(acquire AcquireFunc) *http.ServeMux {
	mux := http.NewServeMux()
	NewHandler(NewService(logger.Discard()), acquire, logger.Discard()).RegisterRoutes(mux)
	return mux
}

func TestGetOrderStatusHandler(t *testing.T) {
	reader := &fakeStatusReader{statuses: map[int]string{40: "in progress"}}
	mux := newTestMux(func(context.Context) (StatusGateway, error) { return reader, nil })

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/40/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body OrderStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, OrderStatusResponse{OrderID: 40, Status: "in progress"}, body)
}

func TestGetOrderStatusHandlerErrors(t *testing.T) {
	reader := &fakeStatusReader{statuses: map[int]string{}}
	ok := func(context.Context) (StatusGateway, error) { return reader, nil }
	down := func(context.Context) (StatusGateway, error) { return nil, errors.New("pool closed") }
	broken := func(context.Context) (StatusGateway, error) {
		return &fakeStatusReader{err: errors.New("connection reset")}, nil
	}

	tests := []struct {
		name     string
		acquire  AcquireFunc
		path     string
		wantCode int
	}{
		{name: "not found", acquire: ok, path: "/orders/5/status", wantCode: http.StatusNotFound},
		{name: "bad id", acquire: ok, path: "/orders/abc/status", wantCode: http.StatusBadRequest},
		{name: "database down", acquire: down, path: "/orders/5/status", wantCode: http.StatusServiceUnavailable},
		{name: "query failure", acquire: broken, path: "/orders/5/status", wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newTestMux(tt.acquire).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	newTestMux(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/orders/5/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
