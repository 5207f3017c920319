package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/docket-api/internal/api/shared"
	"github.com/phrazzld/docket-api/internal/platform/logger"
)

// Swaps the default logger to observe output, so no t.Parallel here.
func TestTraceMiddleware(t *testing.T) {
	t.Run("context carries a trace-scoped logger", func(t *testing.T) {
		var buf bytes.Buffer
		prev := slog.Default()
		slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
		defer slog.SetDefault(prev)

		var gotTraceID string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotTraceID = shared.GetTraceID(r.Context())
			logger.FromContext(r.Context()).Info("inside handler")
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		recorder := httptest.NewRecorder()
		TraceMiddleware(next).ServeHTTP(recorder, req)

		require.Len(t, gotTraceID, 2*shared.TraceIDLength)

		logs := buf.String()
		assert.Contains(t, logs, "request started")
		assert.Contains(t, logs, "inside handler")
		assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("trace_id="+gotTraceID)),
			"both the middleware and the handler log with the trace ID")
	})

	t.Run("each request gets its own trace ID", func(t *testing.T) {
		var seen []string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = append(seen, shared.GetTraceID(r.Context()))
		})
		handler := TraceMiddleware(next)

		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/tasks", nil))

		require.Len(t, seen, 2)
		assert.NotEqual(t, seen[0], seen[1])
	})
}
