// Package inference wraps the hosted zero-shot image classifier.
package inference

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Detection is one label the classifier scored above the threshold.
// Box is always empty: the classifier scores whole images only.
type Detection struct {
	Label      string    `json:"label"`
	Confidence float64   `json:"confidence"`
	Box        []float64 `json:"box"`
}

// Config configures the classifier endpoint.
type Config struct {
	Token     string
	URL       string
	Timeout   time.Duration
	Threshold float64
}

// Observer is notified of the outcome of every detection call.
type Observer interface {
	ObserveDetection(detector, outcome string)
}

const (
	OutcomeOK          = "ok"
	OutcomeNoToken     = "no_token"
	OutcomeTransport   = "transport_error"
	OutcomeBadStatus   = "bad_status"
	OutcomeBadResponse = "bad_response"
)

// Gateway sends zero-shot classification requests. It never returns an
// error: every failure degrades to an empty detection list.
type Gateway struct {
	client    *resty.Client
	token     string
	url       string
	threshold float64
	log       *zap.Logger
	observer  Observer
}

type classifyRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters classifyParams `json:"parameters"`
}

type classifyParams struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type labelScore struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
}

// NewGateway builds a gateway. observer may be nil.
func NewGateway(cfg Config, log *zap.Logger, observer Observer) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	threshold := cfg.Threshold
	if threshold <= 0 {
		threshold = 0.4
	}
	return &Gateway{
		client:    resty.New().SetTimeout(timeout),
		token:     cfg.Token,
		url:       cfg.URL,
		threshold: threshold,
		log:       log.Named("inference"),
		observer:  observer,
	}
}

// Enabled reports whether a classifier credential is configured.
func (g *Gateway) Enabled() bool {
	return g.token != ""
}

// Detect classifies image with the detector's labels and returns the
// positive labels scoring strictly above the threshold, in model order.
func (g *Gateway) Detect(ctx context.Context, d Detector, image []byte) []Detection {
	detections := []Detection{}

	if g.token == "" {
		g.observe(d.Name, OutcomeNoToken)
		return detections
	}

	var scores []labelScore
	resp, err := g.client.R().
		SetContext(ctx).
		SetAuthToken(g.token).
		SetBody(classifyRequest{
			Inputs:     base64.StdEncoding.EncodeToString(image),
			Parameters: classifyParams{CandidateLabels: d.Labels},
		}).
		SetResult(&scores).
		ForceContentType("application/json").
		Post(g.url)
	if err != nil {
		g.log.Warn("classifier request failed", zap.String("detector", d.Name), zap.Error(err))
		g.observe(d.Name, OutcomeTransport)
		return detections
	}
	if resp.StatusCode() != http.StatusOK {
		g.log.Warn("classifier returned error status",
			zap.String("detector", d.Name),
			zap.Int("status", resp.StatusCode()),
			zap.String("body", truncate(resp.String(), 200)),
		)
		g.observe(d.Name, OutcomeBadStatus)
		return detections
	}
	if resp.IsError() || scores == nil {
		g.log.Warn("classifier response was not a score list", zap.String("detector", d.Name))
		g.observe(d.Name, OutcomeBadResponse)
		return detections
	}

	for _, s := range scores {
		if s.Score == nil {
			g.log.Warn("classifier score missing", zap.String("detector", d.Name), zap.String("label", s.Label))
			g.observe(d.Name, OutcomeBadResponse)
			return []Detection{}
		}
		if !d.isPositive(s.Label) || *s.Score <= g.threshold {
			continue
		}
		detections = append(detections, Detection{
			Label:      s.Label,
			Confidence: *s.Score,
			Box:        []float64{},
		})
	}

	g.observe(d.Name, OutcomeOK)
	return detections
}

func (g *Gateway) observe(detector, outcome string) {
	if g.observer != nil {
		g.observer.ObserveDetection(detector, outcome)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
