package http

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/example/center-roster/internal/logging"
)

func TestRequestLogger(t *testing.T) {
	t.Run("attaches a request logger to the context", func(t *testing.T) {
		var buf bytes.Buffer
		base := slog.New(slog.NewTextHandler(&buf, nil))

		sawLogger := false
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if logging.FromContext(r.Context()) != nil {
				sawLogger = true
			}
			w.WriteHeader(http.StatusOK)
		})

		handler := RequestLogger(base)(inner)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))

		if !sawLogger {
			t.Error("expected a logger in the request context")
		}

		output := buf.String()
		if !strings.Contains(output, "request started") {
			t.Errorf("log output missing start entry: %s", output)
		}
		if !strings.Contains(output, "request completed") {
			t.Errorf("log output missing completion entry: %s", output)
		}
		if !strings.Contains(output, "path=/sessions") {
			t.Errorf("log output missing path attribute: %s", output)
		}
	})

	t.Run("assigns increasing request ids", func(t *testing.T) {
		var buf bytes.Buffer
		base := slog.New(slog.NewTextHandler(&buf, nil))

		handler := RequestLogger(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		for range 2 {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/students", nil))
		}

		output := buf.String()
		if !strings.Contains(output, "request_id=1") || !strings.Contains(output, "request_id=2") {
			t.Errorf("expected request ids 1 and 2 in output: %s", output)
		}
	})
}
