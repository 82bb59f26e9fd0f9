package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogging(t *testing.T) {
	t.Run("logs status and bytes and assigns a request ID", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		})

		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		rr := httptest.NewRecorder()
		Logging(logger, next).ServeHTTP(rr, req)

		require.Equal(t, http.StatusTeapot, rr.Code)
		requestID := rr.Header().Get("X-Request-Id")
		require.NotEmpty(t, requestID, "response must carry a request ID")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "request", entry["msg"])
		assert.Equal(t, requestID, entry["request_id"])
		assert.Equal(t, "GET", entry["method"])
		assert.Equal(t, "/events", entry["path"])
		assert.Equal(t, float64(http.StatusTeapot), entry["status"])
		assert.Equal(t, float64(len("short and stout")), entry["bytes"])
		assert.Contains(t, entry, "duration_ms")
	})

	t.Run("keeps a caller-supplied request ID", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("X-Request-Id", "req-upstream-1")
		rr := httptest.NewRecorder()
		Logging(logger, next).ServeHTTP(rr, req)

		assert.Equal(t, "req-upstream-1", rr.Header().Get("X-Request-Id"))
		assert.Contains(t, buf.String(), "req-upstream-1")
	})

	t.Run("defaults to 200 when the handler never writes a header", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		})

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		Logging(logger, next).ServeHTTP(rr, req)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, float64(http.StatusOK), entry["status"])
	})
}
