// Package intake turns a citizen report into a stored issue: the photo is
// written to disk, the report is enriched by the assistant, and the issue
// is persisted.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"vishwaguru-be/assistant"
	"vishwaguru-be/models"
	"vishwaguru-be/store"
)

// PersistTimeout bounds the database write of a submitted report.
const PersistTimeout = 10 * time.Second

var (
	// ErrStorage wraps disk and database failures. Callers map it to a
	// server error.
	ErrStorage = errors.New("storage failure")
	// ErrInvalid marks a submission missing a required field.
	ErrInvalid = errors.New("invalid submission")
)

// Enricher produces the AI side of a report. Implementations never fail.
type Enricher interface {
	AnalyzeIssue(ctx context.Context, description string, image []byte, mimeType string) assistant.Analysis
	DraftActionPlan(ctx context.Context, description, category string) assistant.ActionPlan
}

// Recorder counts persisted issues per source.
type Recorder interface {
	IssueCreated(source string)
}

// Submission is a web report.
type Submission struct {
	Description string
	Category    string
	Source      string
	UserEmail   *string
	ImageName   string
	Image       []byte
	ImageType   string
}

// Result is what the submitter gets back.
type Result struct {
	IssueID    uint                 `json:"issue_id"`
	Analysis   assistant.Analysis   `json:"ai_analysis"`
	ActionPlan assistant.ActionPlan `json:"action_plan"`
}

// Pipeline is shared by the HTTP facade and the chat bot.
type Pipeline struct {
	uploads  *UploadStore
	store    store.Store
	enricher Enricher
	log      *zap.Logger
	recorder Recorder
}

// NewPipeline wires the pipeline. recorder may be nil.
func NewPipeline(uploads *UploadStore, st store.Store, enricher Enricher, log *zap.Logger, recorder Recorder) *Pipeline {
	return &Pipeline{
		uploads:  uploads,
		store:    st,
		enricher: enricher,
		log:      log.Named("intake"),
		recorder: recorder,
	}
}

// SaveFile stores an uploaded photo and returns its storage path.
func (p *Pipeline) SaveFile(name string, r io.Reader) (string, error) {
	path, err := p.uploads.Save(name, r)
	if err != nil {
		p.log.Error("failed to save upload", zap.String("name", name), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return path, nil
}

// Persist inserts issue and fills in its assigned ID.
func (p *Pipeline) Persist(ctx context.Context, issue *models.Issue) error {
	if err := p.store.Create(ctx, issue); err != nil {
		p.log.Error("failed to persist issue",
			zap.String("source", string(issue.Source)),
			zap.String("category", issue.Category),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if p.recorder != nil {
		p.recorder.IssueCreated(string(issue.Source))
	}
	p.log.Info("issue created",
		zap.Uint("issue_id", issue.ID),
		zap.String("source", string(issue.Source)),
		zap.String("category", issue.Category),
	)
	return nil
}

// Submit runs the full web intake. Enrichment never fails the request;
// only storage errors do.
func (p *Pipeline) Submit(ctx context.Context, sub Submission) (*Result, error) {
	sub.Description = strings.TrimSpace(sub.Description)
	sub.Category = strings.TrimSpace(sub.Category)
	if sub.Description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalid)
	}
	if sub.Category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrInvalid)
	}
	if sub.Source == "" {
		sub.Source = string(models.SourceWeb)
	}
	if !models.ValidSource(sub.Source) {
		return nil, fmt.Errorf("%w: unknown source %q", ErrInvalid, sub.Source)
	}

	var imagePath string
	if len(sub.Image) > 0 {
		path, err := p.SaveFile(sub.ImageName, bytes.NewReader(sub.Image))
		if err != nil {
			return nil, err
		}
		imagePath = path
	}

	var (
		analysis assistant.Analysis
		plan     assistant.ActionPlan
	)
	// Enrichment falls back instead of failing, so Wait always returns nil.
	var g errgroup.Group
	g.Go(func() error {
		analysis = p.enricher.AnalyzeIssue(ctx, sub.Description, sub.Image, sub.ImageType)
		return nil
	})
	g.Go(func() error {
		plan = p.enricher.DraftActionPlan(ctx, sub.Description, sub.Category)
		return nil
	})
	g.Wait()

	issue := &models.Issue{
		Description: sub.Description,
		Category:    sub.Category,
		ImagePath:   imagePath,
		Source:      models.IssueSource(sub.Source),
		UserEmail:   sub.UserEmail,
	}
	if raw, err := json.Marshal(plan); err == nil {
		encoded := string(raw)
		issue.ActionPlan = &encoded
	}

	// The report is written even if the submitter has gone away.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PersistTimeout)
	defer cancel()
	if err := p.Persist(persistCtx, issue); err != nil {
		if imagePath != "" {
			if rmErr := p.uploads.Remove(imagePath); rmErr != nil {
				p.log.Warn("failed to remove orphaned upload", zap.String("path", imagePath), zap.Error(rmErr))
			}
		}
		return nil, err
	}

	return &Result{
		IssueID:    issue.ID,
		Analysis:   analysis,
		ActionPlan: plan,
	}, nil
}
