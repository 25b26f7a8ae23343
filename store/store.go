// Package store persists civic issues. Two backends exist: GormStore for
// SQLite/PostgreSQL and MongoStore for MongoDB.
package store

import (
	"context"
	"errors"
	"time"

	"vishwaguru-be/models"
)

// ErrNotFound is returned when an issue id does not exist.
var ErrNotFound = errors.New("issue not found")

// Store is the issue persistence contract. Upvote is the only mutation
// allowed after Create.
type Store interface {
	// Create assigns ID, CreatedAt, and the default status and upvote count.
	Create(ctx context.Context, issue *models.Issue) error
	Get(ctx context.Context, id uint) (*models.Issue, error)
	List(ctx context.Context, offset, limit int) ([]models.Issue, error)
	// Recent returns up to n issues, newest first.
	Recent(ctx context.Context, n int) ([]models.Issue, error)
	// Upvote atomically increments the counter and returns the new value.
	Upvote(ctx context.Context, id uint) (int, error)
	Close(ctx context.Context) error
}

func prepare(issue *models.Issue) {
	issue.CreatedAt = time.Now().UTC()
	if issue.Status == "" {
		issue.Status = models.StatusOpen
	}
	if issue.Source == "" {
		issue.Source = models.SourceWeb
	}
	issue.Upvotes = 0
}
