package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoShiftRepository implements the ShiftRepository interface
type MongoShiftRepository struct {
	collection *mongo.Collection
}

// NewMongoShiftRepository creates a new MongoDB shift repository
func NewMongoShiftRepository(db *mongo.Database) repository.ShiftRepository {
	collection := db.Collection("shifts")

	ctx := context.Background()

	// Day-bounded range queries filter everything else in memory
	dateIndex := mongo.IndexModel{
		Keys: bson.M{"date": 1},
	}

	guideIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "guideId", Value: 1},
			{Key: "date", Value: 1},
		},
	}

	// Sweep of accepted shifts by date
	statusIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "date", Value: 1},
		},
	}

	collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		dateIndex,
		guideIndex,
		statusIndex,
	})

	return &MongoShiftRepository{
		collection: collection,
	}
}

// Create inserts a shift, assigning a new id when empty
func (r *MongoShiftRepository) Create(ctx context.Context, shift *entity.Shift) error {
	if shift.ID == "" {
		shift.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, shift); err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// FindByID finds a shift by id
func (r *MongoShiftRepository) FindByID(ctx context.Context, id string) (*entity.Shift, error) {
	var shift entity.Shift
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&shift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError{Resource: "shift", ID: id, Err: err}
		}
		return nil, err
	}
	return &shift, nil
}

// FindByDateRange finds shifts dated in [from, to)
func (r *MongoShiftRepository) FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Shift, error) {
	filter := bson.M{
		"date": bson.M{"$gte": from, "$lt": to},
	}
	return r.find(ctx, filter)
}

// FindByGuide finds a guide's shifts dated in [from, to)
func (r *MongoShiftRepository) FindByGuide(ctx context.Context, guideID string, from, to time.Time) ([]*entity.Shift, error) {
	filter := bson.M{
		"guideId": guideID,
		"date":    bson.M{"$gte": from, "$lt": to},
	}
	return r.find(ctx, filter)
}

func (r *MongoShiftRepository) find(ctx context.Context, filter bson.M) ([]*entity.Shift, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "date", Value: 1},
		{Key: "createdAt", Value: 1},
	})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	shifts := make([]*entity.Shift, 0)
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

// Update sets every field of the update in one write, guarded by the expected status
func (r *MongoShiftRepository) Update(ctx context.Context, id string, expected entity.ShiftStatus, update entity.ShiftUpdate) error {
	set := bson.M{
		"updatedAt": update.UpdatedAt,
	}
	if update.UpdatedAt.IsZero() {
		set["updatedAt"] = time.Now()
	}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.BusID != nil {
		set["busId"] = *update.BusID
	}
	if update.BusName != nil {
		set["busName"] = *update.BusName
	}
	if update.AdminNote != nil {
		set["adminNote"] = *update.AdminNote
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": id, "status": expected},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}

	if result.MatchedCount == 0 {
		return domain.StateConflictError{
			Resource: "shift",
			Msg:      fmt.Sprintf("shift %s is no longer %s", id, expected),
		}
	}
	return nil
}

// CompleteAcceptedBefore completes accepted shifts dated before cutoff
func (r *MongoShiftRepository) CompleteAcceptedBefore(ctx context.Context, cutoff time.Time, now time.Time) (int64, error) {
	filter := bson.M{
		"status": entity.ShiftStatusAccepted,
		"date":   bson.M{"$lt": cutoff},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    entity.ShiftStatusCompleted,
			"updatedAt": now,
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to complete past shifts: %w", err)
	}
	return result.ModifiedCount, nil
}
