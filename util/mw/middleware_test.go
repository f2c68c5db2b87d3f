package mw_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/wkalt/msgdef/util/log"
	"github.com/wkalt/msgdef/util/mw"
)

func TestWithRequestID(t *testing.T) {
	ctx := context.Background()
	buf := &bytes.Buffer{}
	prev := slog.Default()
	require.NoError(t, log.Setup(buf, slog.LevelInfo, "text"))
	defer slog.SetDefault(prev)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Infof(r.Context(), "test")
	})
	t.Run("generated", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
		require.NoError(t, err)
		recorder := httptest.NewRecorder()
		mw.WithRequestID(handler).ServeHTTP(recorder, req)
		require.Contains(t, buf.String(), "request_id")
		require.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
	})
	t.Run("supplied", func(t *testing.T) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "/", nil)
		require.NoError(t, err)
		req.Header.Set("X-Request-ID", "abc")
		recorder := httptest.NewRecorder()
		mw.WithRequestID(handler).ServeHTTP(recorder, req)
		require.Contains(t, buf.String(), "request_id=abc")
		require.Equal(t, "abc", recorder.Header().Get("X-Request-ID"))
	})
}

func TestWithCORSAllowedOrigins(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	wrapped := mw.WithCORSAllowedOrigins([]string{"http://localhost:3000"})(handler)
	cases := []struct {
		assertion string
		method    string
		origin    string
		allowed   string
		code      int
	}{
		{"allowed origin", http.MethodGet, "http://localhost:3000", "http://localhost:3000", http.StatusTeapot},
		{"other origin", http.MethodGet, "http://evil.example", "", http.StatusTeapot},
		{"preflight", http.MethodOptions, "http://localhost:3000", "http://localhost:3000", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.assertion, func(t *testing.T) {
			req := httptest.NewRequest(c.method, "/", nil)
			req.Header.Set("Origin", c.origin)
			recorder := httptest.NewRecorder()
			wrapped.ServeHTTP(recorder, req)
			require.Equal(t, c.code, recorder.Code)
			require.Equal(t, c.allowed, recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestWithMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := mw.NewMetrics(reg)
	r := mux.NewRouter()
	r.Use(mw.WithMetrics(metrics))
	r.HandleFunc("/types/{name}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	for i := 0; i < 3; i++ {
		recorder := httptest.NewRecorder()
		r.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/types/foo", nil))
		require.Equal(t, http.StatusNotFound, recorder.Code)
	}
	count := testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues(http.MethodGet, "/types/{name}", "404"))
	require.InDelta(t, 3.0, count, 0)
}
