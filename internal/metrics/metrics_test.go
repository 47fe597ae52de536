package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInit(t *testing.T) {
	// Call Init multiple times to test idempotency.
	Init()
	Init()

	if weatherTasksTotal == nil || weatherActiveWorkers == nil ||
		httpRequestsTotal == nil || httpRequestDurationSeconds == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}

	before := testutil.ToFloat64(weatherTasksTotal.WithLabelValues(TaskPanicked))
	ObserveTask(TaskPanicked)
	if val := testutil.ToFloat64(weatherTasksTotal.WithLabelValues(TaskPanicked)); val != before+1 {
		t.Errorf("expected panicked tasks to grow by 1, got %f -> %f", before, val)
	}
}

func TestActiveWorkersGauge(t *testing.T) {
	Init()
	base := testutil.ToFloat64(weatherActiveWorkers)
	IncActiveWorkers()
	IncActiveWorkers()
	DecActiveWorkers()
	require.InDelta(t, base+1, testutil.ToFloat64(weatherActiveWorkers), 0.0001)
	DecActiveWorkers()

	SetPoolSize(6)
	require.InDelta(t, 6, testutil.ToFloat64(weatherPoolSize), 0.0001)
}

func TestRouterServesHealthAndMetrics(t *testing.T) {
	ts := httptest.NewServer(Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))

	resp, err = http.Get(ts.URL + "/missing")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	if val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "404")); val < 1 {
		t.Errorf("expected 404 requests to be counted, got %f", val)
	}

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, resp.Body.Close())
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "http_requests_total"))
}

func TestStartAndShutdown(t *testing.T) {
	srv, addr, err := Start("127.0.0.1:0", zap.NewNop())
	require.NoError(t, err)

	resp, err := http.Get("http://" + addr.String() + "/healthz")
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	require.NoError(t, (*Server)(nil).Shutdown(context.Background()))
}

func TestStartRejectsBadAddress(t *testing.T) {
	_, _, err := Start("not-an-address", nil)
	require.Error(t, err)
}
