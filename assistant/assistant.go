// Package assistant wraps the hosted generation model used to draft
// complaint messages, answer civic questions, and analyze reported issues.
// No method returns an error: each one degrades to a fixed fallback.
package assistant

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ActionPlan is drafted outbound complaint content.
type ActionPlan struct {
	WhatsApp     string `json:"whatsapp"`
	EmailSubject string `json:"email_subject"`
	EmailBody    string `json:"email_body"`
}

// Analysis is the model's classification of a reported issue.
type Analysis struct {
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Authority  string `json:"authority"`
	ActionPlan string `json:"action_plan"`
}

// ChatTurn is one prior message in a chat conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Config configures the generation endpoint.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Observer is notified whenever an operation falls back.
type Observer interface {
	ObserveFallback(operation, reason string)
}

const (
	opActionPlan     = "action_plan"
	opChat           = "chat"
	opAnalyze        = "analyze_issue"
	opRepresentative = "representative_summary"
)

var (
	errNoAPIKey      = errors.New("generation api key not configured")
	errEmptyResponse = errors.New("generation returned no text")
)

// Client talks to the Gemini generateContent REST API.
type Client struct {
	http     *resty.Client
	apiKey   string
	model    string
	log      *zap.Logger
	observer Observer
}

// NewClient builds a client. observer may be nil.
func NewClient(cfg Config, log *zap.Logger, observer Observer) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
			SetTimeout(timeout),
		apiKey:   cfg.APIKey,
		model:    model,
		log:      log.Named("assistant"),
		observer: observer,
	}
}

// Enabled reports whether a generation credential is configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// DraftActionPlan asks the model for a WhatsApp message and an email
// draft. Any failure yields FallbackActionPlan.
func (c *Client) DraftActionPlan(ctx context.Context, description, category string) ActionPlan {
	var plan ActionPlan
	err := c.generateJSON(ctx, []part{{Text: actionPlanPrompt(description, category)}}, &plan)
	if err == nil && (plan.EmailSubject == "" || plan.EmailBody == "") {
		err = errors.New("action plan missing email fields")
	}
	if err != nil {
		c.fallback(opActionPlan, err)
		return FallbackActionPlan(description, category)
	}
	return plan
}

// Chat answers a civic question. Only the last five history turns are
// included in the prompt.
func (c *Client) Chat(ctx context.Context, query string, history []ChatTurn) string {
	if !c.Enabled() {
		c.fallback(opChat, errNoAPIKey)
		return OfflineReply
	}
	reply, err := c.generate(ctx, []part{{Text: chatPrompt(query, history)}})
	if err != nil {
		c.fallback(opChat, err)
		return ErrorReply
	}
	return reply
}

// AnalyzeIssue classifies an issue from its description and an optional
// image. Any failure yields DefaultAnalysis.
func (c *Client) AnalyzeIssue(ctx context.Context, description string, image []byte, mimeType string) Analysis {
	parts := []part{{Text: analysisPrompt(description, len(image) > 0)}}
	if len(image) > 0 {
		if mimeType == "" {
			mimeType = http.DetectContentType(image)
		}
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: mimeType,
			Data:     base64.StdEncoding.EncodeToString(image),
		}})
	}

	var analysis Analysis
	err := c.generateJSON(ctx, parts, &analysis)
	if err == nil && (analysis.Category == "" || analysis.Severity == "") {
		err = errors.New("analysis missing category or severity")
	}
	if err != nil {
		c.fallback(opAnalyze, err)
		return DefaultAnalysis()
	}
	return analysis
}

// SummarizeRepresentative describes a constituency and its MLA. It returns
// an empty string on failure.
func (c *Client) SummarizeRepresentative(ctx context.Context, district, constituency, name string) string {
	text, err := c.generate(ctx, []part{{Text: representativePrompt(district, constituency, name)}})
	if err != nil {
		c.fallback(opRepresentative, err)
		return ""
	}
	return text
}

func (c *Client) fallback(operation string, err error) {
	if errors.Is(err, errNoAPIKey) {
		c.log.Debug("generation unavailable, using fallback", zap.String("operation", operation))
	} else {
		c.log.Warn("generation failed, using fallback", zap.String("operation", operation), zap.Error(err))
	}
	if c.observer != nil {
		reason := "error"
		if errors.Is(err, errNoAPIKey) {
			reason = "no_api_key"
		}
		c.observer.ObserveFallback(operation, reason)
	}
}

func (c *Client) generateJSON(ctx context.Context, parts []part, target any) error {
	text, err := c.generate(ctx, parts)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(StripCodeFence(text)), target); err != nil {
		return fmt.Errorf("decode model json: %w", err)
	}
	return nil
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	if !c.Enabled() {
		return "", errNoAPIKey
	}

	var out generateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", c.apiKey).
		SetBody(generateRequest{Contents: []content{{Role: "user", Parts: parts}}}).
		SetResult(&out).
		ForceContentType("application/json").
		SetPathParam("model", c.model).
		Post("/v1beta/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("generate content: status %d", resp.StatusCode())
	}

	var b strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			b.WriteString(p.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
