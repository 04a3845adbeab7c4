package repository

import (
	"context"
	"fmt"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPickupStatusRepository implements the PickupStatusRepository interface
type MongoPickupStatusRepository struct {
	collection *mongo.Collection
}

// NewMongoPickupStatusRepository creates a new MongoDB pickup status repository
func NewMongoPickupStatusRepository(db *mongo.Database) repository.PickupStatusRepository {
	collection := db.Collection("pickup_status")

	// One overlay document per booking per date
	keyIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "bookingId", Value: 1},
			{Key: "date", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	}
	collection.Indexes().CreateOne(context.Background(), keyIndex)

	return &MongoPickupStatusRepository{
		collection: collection,
	}
}

// FindByDate returns the overlays for a date keyed by booking id
func (r *MongoPickupStatusRepository) FindByDate(ctx context.Context, date time.Time) (map[string]*entity.PickupStatus, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"date": date})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make(map[string]*entity.PickupStatus)
	for cursor.Next(ctx) {
		var status entity.PickupStatus
		if err := cursor.Decode(&status); err != nil {
			continue
		}
		result[status.BookingID] = &status
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkTerminal sets arrived or no-show only while neither flag is set
func (r *MongoPickupStatusRepository) MarkTerminal(ctx context.Context, date time.Time, bookingID string, arrived bool) error {
	field := "isNoShow"
	if arrived {
		field = "isArrived"
	}

	filter := bson.M{
		"bookingId": bookingID,
		"date":      date,
		"isArrived": bson.M{"$ne": true},
		"isNoShow":  bson.M{"$ne": true},
	}
	update := bson.M{
		"$set": bson.M{
			field:       true,
			"updatedAt": time.Now(),
		},
	}

	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		// The filter misses an existing terminal document, so the upsert collides with the unique key
		if mongo.IsDuplicateKeyError(err) {
			return domain.StateConflictError{
				Resource: "booking",
				Msg:      fmt.Sprintf("booking %s already marked arrived or no-show", bookingID),
			}
		}
		return fmt.Errorf("failed to mark pickup: %w", err)
	}
	return nil
}

// MarkPaid records payment collected on arrival
func (r *MongoPickupStatusRepository) MarkPaid(ctx context.Context, date time.Time, bookingID string) error {
	_, err := r.collection.UpdateOne(
		ctx,
		bson.M{"bookingId": bookingID, "date": date},
		bson.M{
			"$set": bson.M{
				"paidOnArrival": true,
				"updatedAt":     time.Now(),
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to mark paid: %w", err)
	}
	return nil
}

// AssignGuide writes the guide onto every listed booking for the date
func (r *MongoPickupStatusRepository) AssignGuide(ctx context.Context, date time.Time, bookingIDs []string, guideID, guideName string) error {
	if len(bookingIDs) == 0 {
		return nil
	}

	now := time.Now()
	models := make([]mongo.WriteModel, 0, len(bookingIDs))
	for _, id := range bookingIDs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"bookingId": id, "date": date}).
			SetUpdate(bson.M{"$set": bson.M{
				"assignedGuideId":   guideID,
				"assignedGuideName": guideName,
				"updatedAt":         now,
			}}).
			SetUpsert(true))
	}

	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("failed to assign guide: %w", err)
	}
	return nil
}
