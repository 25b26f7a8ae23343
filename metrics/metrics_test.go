package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vishwaguru-be/metrics"
)

func TestRecorderCounts(t *testing.T) {
	r := metrics.New()

	r.ObserveDetection("pothole", "ok")
	r.ObserveDetection("pothole", "ok")
	r.ObserveDetection("fire", "no_token")
	r.ObserveFallback("chat", "no_api_key")
	r.IssueCreated("telegram")
	r.ObserveRequest(http.MethodGet, "/health", http.StatusOK, 3*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Detections.WithLabelValues("pothole", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Detections.WithLabelValues("fire", "no_token")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Fallbacks.WithLabelValues("chat", "no_api_key")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.IssuesCreated.WithLabelValues("telegram")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.HTTPRequests.WithLabelValues("GET", "/health", "200")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := metrics.New()
	r.IssueCreated("web")

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `vishwaguru_issues_created_total{source="web"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.IssueCreated("web")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.IssuesCreated.WithLabelValues("web")))
}
