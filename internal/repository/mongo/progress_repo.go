package mongo

import (
	"context"
	"errors"
	"time"

	"alcyxob/confidence-coach/internal/domain"
	"alcyxob/confidence-coach/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressCollectionName = "progress"

type mongoProgressRepository struct {
	collection *mongo.Collection
}

// NewMongoProgressRepository creates a new Progress repository. Records are insert-only.
func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

func (r *mongoProgressRepository) Create(ctx context.Context, progress *domain.Progress) (primitive.ObjectID, error) {
	if progress.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress requires userId")
	}
	progress.ID = primitive.NewObjectID()
	if progress.Date.IsZero() {
		progress.Date = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, progress)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted progress ID")
	}
	return insertedID, nil
}

func (r *mongoProgressRepository) GetRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Progress, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.find(ctx, bson.M{"userId": userID}, opts)
}

func (r *mongoProgressRepository) GetSince(ctx context.Context, userID primitive.ObjectID, since time.Time) ([]domain.Progress, error) {
	filter := bson.M{"userId": userID, "date": bson.M{"$gte": since}}
	return r.find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
}

func (r *mongoProgressRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Progress, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []domain.Progress{}
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EnsureProgressIndexes creates necessary indexes for the progress collection.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
