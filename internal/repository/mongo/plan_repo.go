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

const planCollectionName = "plans"

// mongoPlanRepository implements repository.PlanRepository
type mongoPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanRepository creates a new Plan repository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Create inserts a new plan.
func (r *mongoPlanRepository) Create(ctx context.Context, plan *domain.Plan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan requires userId")
	}
	plan.ID = primitive.NewObjectID()
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now().UTC()
	}
	plan.UpdatedAt = plan.CreatedAt

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single plan by its ID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	return r.decodeOne(r.collection.FindOne(ctx, bson.M{"_id": id}))
}

// GetLatestActiveSince finds today's plan: newest createdAt wins among active plans.
func (r *mongoPlanRepository) GetLatestActiveSince(ctx context.Context, userID primitive.ObjectID, since time.Time) (*domain.Plan, error) {
	filter := bson.M{
		"userId": userID,
		"status": domain.PlanActive,
		"date":   bson.M{"$gte": since},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	return r.decodeOne(r.collection.FindOne(ctx, filter, opts))
}

// GetRecentByUser retrieves the latest plans of a user, newest date first.
func (r *mongoPlanRepository) GetRecentByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]domain.Plan, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		findOptions.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	plans := []domain.Plan{}
	if err = cursor.All(ctx, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

// SetTaskCompletion flips one embedded task through the positional operator.
func (r *mongoPlanRepository) SetTaskCompletion(ctx context.Context, planID primitive.ObjectID, taskID string, completed bool, at time.Time) (*domain.Plan, error) {
	filter := bson.M{
		"_id":      planID,
		"status":   domain.PlanActive,
		"tasks.id": taskID,
	}

	var update bson.M
	if completed {
		update = bson.M{"$set": bson.M{
			"tasks.$.completed":   true,
			"tasks.$.completedAt": at,
			"updatedAt":           at,
		}}
	} else {
		update = bson.M{
			"$set":   bson.M{"tasks.$.completed": false, "updatedAt": at},
			"$unset": bson.M{"tasks.$.completedAt": ""},
		}
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.decodeOne(r.collection.FindOneAndUpdate(ctx, filter, update, opts))
}

// UpdateStatus performs a conditional status transition.
func (r *mongoPlanRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.PlanStatus) (*domain.Plan, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return r.decodeOne(r.collection.FindOneAndUpdate(ctx, filter, update, opts))
}

// CancelActiveSince retires superseded plans of the same day.
func (r *mongoPlanRepository) CancelActiveSince(ctx context.Context, userID primitive.ObjectID, since time.Time, keep primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"userId": userID,
		"status": domain.PlanActive,
		"date":   bson.M{"$gte": since},
		"_id":    bson.M{"$ne": keep},
	}
	update := bson.M{"$set": bson.M{"status": domain.PlanCancelled, "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoPlanRepository) decodeOne(res *mongo.SingleResult) (*domain.Plan, error) {
	var plan domain.Plan
	if err := res.Decode(&plan); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// EnsurePlanIndexes creates necessary indexes for the plans collection.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// today's plan lookup
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "status", Value: 1}, {Key: "date", Value: -1}},
		},
		{
			// history
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
