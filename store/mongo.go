package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vishwaguru-be/models"
)

const (
	issuesCollection   = "issues"
	countersCollection = "counters"
	issueSequence      = "issues"
)

// MongoStore keeps issues in a MongoDB collection with integer ids drawn
// from a sequence document in the counters collection.
type MongoStore struct {
	db       *mongo.Database
	issues   *mongo.Collection
	counters *mongo.Collection
}

// NewMongoStore wraps db and ensures the issue indexes exist.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		db:       db,
		issues:   db.Collection(issuesCollection),
		counters: db.Collection(countersCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	fields := []string{"category", "source", "status", "created_at", "user_email", "upvotes"}
	indexes := make([]mongo.IndexModel, 0, len(fields))
	for _, f := range fields {
		indexes = append(indexes, mongo.IndexModel{Keys: bson.D{{Key: f, Value: 1}}})
	}
	if _, err := s.issues.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create issue indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) nextID(ctx context.Context) (uint, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": issueSequence},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("next issue id: %w", err)
	}
	return uint(counter.Seq), nil
}

func (s *MongoStore) Create(ctx context.Context, issue *models.Issue) error {
	prepare(issue)
	id, err := s.nextID(ctx)
	if err != nil {
		return err
	}
	issue.ID = id
	if _, err := s.issues.InsertOne(ctx, issue); err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, id uint) (*models.Issue, error) {
	var issue models.Issue
	err := s.issues.FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get issue %d: %w", id, err)
	}
	return &issue, nil
}

func (s *MongoStore) List(ctx context.Context, offset, limit int) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	return s.find(ctx, findOptions)
}

func (s *MongoStore) Recent(ctx context.Context, n int) ([]models.Issue, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(n))
	return s.find(ctx, findOptions)
}

func (s *MongoStore) find(ctx context.Context, opts *options.FindOptions) ([]models.Issue, error) {
	cursor, err := s.issues.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find issues: %w", err)
	}
	defer cursor.Close(ctx)

	issues := []models.Issue{}
	if err := cursor.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}

func (s *MongoStore) Upvote(ctx context.Context, id uint) (int, error) {
	var issue models.Issue
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	// A missing or null counter starts from zero.
	update := mongo.Pipeline{{{Key: "$set", Value: bson.M{
		"upvotes": bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$upvotes", 0}}, 1}},
	}}}}
	err := s.issues.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&issue)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("upvote issue %d: %w", id, err)
	}
	return issue.Upvotes, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
