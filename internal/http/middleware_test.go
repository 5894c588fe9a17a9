package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"notesync/internal/contextutil"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
	}{
		{name: "generates request ID"},
		{name: "keeps incoming request ID", requestID: "req-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedCtx context.Context
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				capturedCtx = r.Context()
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.requestID != "" {
				req.Header.Set(RequestIDHeader, tt.requestID)
			}
			w := httptest.NewRecorder()

			LoggerMiddleware(handler).ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("LoggerMiddleware() status = %v, want %v", w.Code, http.StatusOK)
			}
			if capturedCtx == nil {
				t.Fatal("LoggerMiddleware() should call the next handler")
			}
			if _, ok := capturedCtx.Value(contextutil.LoggerKey()).(*slog.Logger); !ok {
				t.Error("LoggerMiddleware() should add logger to context")
			}

			got := w.Header().Get(RequestIDHeader)
			if got == "" {
				t.Fatal("LoggerMiddleware() should set the request ID header")
			}
			if tt.requestID != "" && got != tt.requestID {
				t.Errorf("request ID = %q, want %q", got, tt.requestID)
			}
		})
	}
}

func TestRequestLogger(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		statusCode int
	}{
		{"regular request", http.MethodPost, "/api/v1/insights", http.StatusOK},
		{"health check", http.MethodGet, "/api/health", http.StatusOK},
		{"failed health check", http.MethodGet, "/api/health", http.StatusServiceUnavailable},
		{"rate limited", http.MethodPost, "/api/v1/insights", http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			RequestLogger(handler).ServeHTTP(w, req)

			if w.Code != tt.statusCode {
				t.Errorf("RequestLogger() status = %v, want %v", w.Code, tt.statusCode)
			}
		})
	}
}

func TestResponseWriter_WriteHeader(t *testing.T) {
	w := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	rw.WriteHeader(http.StatusNotFound)

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() statusCode = %v, want %v", rw.statusCode, http.StatusNotFound)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("responseWriter.WriteHeader() underlying status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestCORS(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := CORS(handler)

	tests := []struct {
		name           string
		method         string
		origin         string
		wantStatusCode int
		wantOrigin     string
	}{
		{"preflight OPTIONS", http.MethodOptions, "http://localhost:3000", http.StatusNoContent, "http://localhost:3000"},
		{"request with origin", http.MethodPost, "http://localhost:3000", http.StatusOK, "http://localhost:3000"},
		{"request without origin", http.MethodPost, "", http.StatusOK, "*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/test", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			middleware.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Errorf("CORS() status = %v, want %v", w.Code, tt.wantStatusCode)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantOrigin)
			}
			if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Retry-After, X-Request-ID" {
				t.Errorf("Access-Control-Expose-Headers = %q", got)
			}
		})
	}
}
