package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"vishwaguru-be/models"
)

// GormStore keeps issues in a relational table through gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db and migrates the issues table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&models.Issue{}); err != nil {
		return nil, fmt.Errorf("migrate issues: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Create(ctx context.Context, issue *models.Issue) error {
	issue.ID = 0
	prepare(issue)
	if err := s.db.WithContext(ctx).Create(issue).Error; err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	err := s.db.WithContext(ctx).First(&issue, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, err)
	}
	return &issue, nil
}

func (s *GormStore) List(ctx context.Context, offset, limit int) ([]models.Issue, error) {
	issues := make([]models.Issue, 0, limit)
	err := s.db.WithContext(ctx).
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&issues).Error
	if err != nil {
		return nil, fmt.Errorf("list issues: %w", err)
	}
	return issues, nil
}

func (s *GormStore) Recent(ctx context.Context, n int) ([]models.Issue, error) {
	issues := make([]models.Issue, 0, n)
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(n).
		Find(&issues).Error
	if err != nil {
		return nil, fmt.Errorf("recent issues: %w", err)
	}
	return issues, nil
}

func (s *GormStore) Upvote(ctx context.Context, id uint) (int, error) {
	var upvotes int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Rows created before the counter existed may hold NULL.
		res := tx.Model(&models.Issue{}).
			Where("id = ?", id).
			UpdateColumn("upvotes", gorm.Expr("COALESCE(upvotes, 0) + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		var updated models.Issue
		if err := tx.Select("upvotes").First(&updated, id).Error; err != nil {
			return err
		}
		upvotes = updated.Upvotes
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("upvote issue %d: %w", id, err)
	}
	return upvotes, nil
}

func (s *GormStore) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
