package inference_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"vishwaguru-be/inference"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recordingObserver) ObserveDetection(_, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func newGateway(t *testing.T, url, token string, obs inference.Observer) *inference.Gateway {
	t.Helper()
	return inference.NewGateway(inference.Config{
		Token:     token,
		URL:       url,
		Timeout:   2 * time.Second,
		Threshold: 0.4,
	}, zap.NewNop(), obs)
}

func mustDetector(t *testing.T, name string) inference.Detector {
	t.Helper()
	d, ok := inference.Lookup(name)
	require.True(t, ok, "detector %s", name)
	return d
}

func TestGateway_FiltersByThresholdAndPositiveLabels(t *testing.T) {
	image := []byte("fake image bytes")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var payload struct {
			Inputs     string `json:"inputs"`
			Parameters struct {
				CandidateLabels []string `json:"candidate_labels"`
			} `json:"parameters"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), payload.Inputs)
		assert.Contains(t, payload.Parameters.CandidateLabels, "dry road")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"label": "flooded street", "score": 0.71},
			{"label": "normal street", "score": 0.65},
			{"label": "waterlogging", "score": 0.41},
			{"label": "submerged car", "score": 0.40},
			{"label": "heavy rain", "score": 0.02}
		]`))
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	gw := newGateway(t, srv.URL, "test-token", obs)

	got := gw.Detect(context.Background(), mustDetector(t, "flooding"), image)

	require.Len(t, got, 2)
	assert.Equal(t, "flooded street", got[0].Label)
	assert.InDelta(t, 0.71, got[0].Confidence, 1e-9)
	assert.Equal(t, "waterlogging", got[1].Label)
	for _, d := range got {
		assert.Greater(t, d.Confidence, 0.4)
		assert.NotNil(t, d.Box)
		assert.Empty(t, d.Box)
	}
	assert.Equal(t, []string{inference.OutcomeOK}, obs.outcomes)
}

func TestGateway_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		outcome string
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error": "model loading"}`))
			},
			outcome: inference.OutcomeBadStatus,
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"unexpected": true}`))
			},
		},
		{
			name: "missing score",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"label": "pothole"}]`))
			},
			outcome: inference.OutcomeBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			obs := &recordingObserver{}
			gw := newGateway(t, srv.URL, "token", obs)

			got := gw.Detect(context.Background(), mustDetector(t, "pothole"), []byte("img"))
			assert.NotNil(t, got)
			assert.Empty(t, got)
			require.Len(t, obs.outcomes, 1)
			assert.NotEqual(t, inference.OutcomeOK, obs.outcomes[0])
			if tt.outcome != "" {
				assert.Equal(t, tt.outcome, obs.outcomes[0])
			}
		})
	}
}

func TestGateway_TransportErrorDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	gw := newGateway(t, url, "token", nil)

	got := gw.Detect(context.Background(), mustDetector(t, "garbage"), []byte("img"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestGateway_MissingTokenSkipsRequest(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	gw := newGateway(t, srv.URL, "", obs)

	got := gw.Detect(context.Background(), mustDetector(t, "fire"), []byte("img"))
	assert.Empty(t, got)
	assert.False(t, called)
	assert.False(t, gw.Enabled())
	assert.Equal(t, []string{inference.OutcomeNoToken}, obs.outcomes)
}

func TestDetectors_PositiveLabelsAreStrictSubset(t *testing.T) {
	names := []string{"pothole", "garbage", "vandalism", "flooding", "fire", "stray-animal", "infrastructure", "traffic"}
	require.Len(t, inference.Detectors(), len(names))

	for _, name := range names {
		d := mustDetector(t, name)
		assert.Less(t, len(d.Positive), len(d.Labels), name)
		for _, p := range d.Positive {
			assert.Contains(t, d.Labels, p, name)
		}
	}

	_, ok := inference.Lookup("noise")
	assert.False(t, ok)
}
