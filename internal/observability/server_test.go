// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authgate Contributors

package observability

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func startServer(t *testing.T, ready ReadinessChecker) *Server {
	t.Helper()
	srv := NewServer("127.0.0.1:0", ready)
	errCh, err := srv.Start()
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, srv.Stop(ctx))
		for range errCh {
		}
	})
	return srv
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // loopback test request
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServer_Liveness(t *testing.T) {
	srv := startServer(t, nil)

	status, body := get(t, fmt.Sprintf("http://%s/healthz/liveness", srv.Addr()))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok\n", body)
}

func TestServer_Readiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := startServer(t, func() bool { return true })

		status, body := get(t, fmt.Sprintf("http://%s/healthz/readiness", srv.Addr()))
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "ok\n", body)
	})

	t.Run("not ready", func(t *testing.T) {
		srv := startServer(t, func() bool { return false })

		status, body := get(t, fmt.Sprintf("http://%s/healthz/readiness", srv.Addr()))
		assert.Equal(t, http.StatusServiceUnavailable, status)
		assert.Equal(t, "not ready\n", body)
	})

	t.Run("nil checker means ready", func(t *testing.T) {
		srv := startServer(t, nil)

		status, _ := get(t, fmt.Sprintf("http://%s/healthz/readiness", srv.Addr()))
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestServer_MetricsEndpoint(t *testing.T) {
	srv := startServer(t, nil)

	srv.Metrics().LoginsTotal.WithLabelValues("success").Inc()

	status, body := get(t, fmt.Sprintf("http://%s/metrics", srv.Addr()))
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "authgate_logins_total")
	assert.Contains(t, body, "go_goroutines")
}

func TestServer_StartTwice(t *testing.T) {
	srv := startServer(t, nil)

	_, err := srv.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already running")
}

func TestServer_StopIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	srv := NewServer("127.0.0.1:0", nil)
	errCh, err := srv.Start()
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, srv.Stop(ctx))
	require.NoError(t, srv.Stop(ctx))
	for range errCh {
	}
}

func TestMetrics_RecordSweep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordSweep("session", 3)
	m.RecordSweep("session", 2)
	m.RecordSweep("reset", 1)

	assert.InDelta(t, 5, testutil.ToFloat64(m.SweptRowsTotal.WithLabelValues("session")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SweptRowsTotal.WithLabelValues("reset")), 0.001)
}

func TestMetrics_RecordEvent(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordEvent("login", "success")
	m.RecordEvent("login", "success")
	m.RecordEvent("login", "invalid")
	m.RecordEvent("reset_request", "error")
	m.RecordEvent("unknown_event", "success")

	assert.InDelta(t, 2, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("success")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.LoginsTotal.WithLabelValues("invalid")), 0.001)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ResetRequestsTotal.WithLabelValues("error")), 0.001)
}
