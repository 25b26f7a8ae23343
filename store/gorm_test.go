package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vishwaguru-be/models"
	"vishwaguru-be/store"
)

func newTestStore(t *testing.T) *store.GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s, err := store.NewGormStore(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestGormStore_CreateAssignsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issue := &models.Issue{
		Description: "pothole on main street",
		Category:    "Road",
		ImagePath:   "data/uploads/a.jpg",
		Upvotes:     42,
	}
	require.NoError(t, s.Create(ctx, issue))

	assert.NotZero(t, issue.ID)
	assert.Equal(t, models.StatusOpen, issue.Status)
	assert.Equal(t, models.SourceWeb, issue.Source)
	assert.Equal(t, 0, issue.Upvotes)
	assert.WithinDuration(t, time.Now(), issue.CreatedAt, 5*time.Second)

	got, err := s.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, "pothole on main street", got.Description)
	assert.Equal(t, 0, got.Upvotes)
}

func TestGormStore_ListPaginates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, d := range []string{"one", "two", "three"} {
		require.NoError(t, s.Create(ctx, &models.Issue{Description: d, Category: "Road"}))
	}

	page, err := s.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "two", page[0].Description)

	all, err := s.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	empty, err := s.List(ctx, 10, 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGormStore_RecentNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, s.Create(ctx, &models.Issue{Description: "issue", Category: "Garbage"}))
	}

	recent, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	for i := 1; i < len(recent); i++ {
		prev, cur := recent[i-1], recent[i]
		assert.False(t, cur.CreatedAt.After(prev.CreatedAt))
		if cur.CreatedAt.Equal(prev.CreatedAt) {
			assert.Less(t, cur.ID, prev.ID)
		}
	}
	assert.Equal(t, uint(12), recent[0].ID)
}

func TestGormStore_UpvoteIncrementsByOne(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issue := &models.Issue{Description: "garbage", Category: "Garbage"}
	require.NoError(t, s.Create(ctx, issue))

	for want := 1; want <= 3; want++ {
		got, err := s.Upvote(ctx, issue.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestGormStore_UpvoteUnknownID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Upvote(ctx, 999)
	assert.ErrorIs(t, err, store.ErrNotFound)

	all, err := s.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGormStore_UpvoteTreatsNullAsZero(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s, err := store.NewGormStore(db)
	require.NoError(t, err)

	// row written before the counter column had a value
	require.NoError(t, db.Exec(
		`INSERT INTO issues (description, category, source, status, created_at, upvotes) VALUES ('old', 'Road', 'web', 'open', CURRENT_TIMESTAMP, NULL)`,
	).Error)

	got, err := s.Upvote(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestGormStore_ConcurrentUpvotesAreNotLost(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	issue := &models.Issue{Description: "streetlight", Category: "Streetlight"}
	require.NoError(t, s.Create(ctx, issue))

	const voters = 25
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Upvote(ctx, issue.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, issue.ID)
	require.NoError(t, err)
	assert.Equal(t, voters, got.Upvotes)
}

func TestGormStore_GetUnknownID(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), 7)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
