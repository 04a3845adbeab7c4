package repository

import (
	"context"
	"errors"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoStaffRepository implements the StaffRepository interface
type MongoStaffRepository struct {
	collection *mongo.Collection
}

// NewMongoStaffRepository creates a new MongoDB staff repository
func NewMongoStaffRepository(db *mongo.Database) repository.StaffRepository {
	collection := db.Collection("users")

	roleIndex := mongo.IndexModel{
		Keys: bson.M{"role": 1},
	}
	collection.Indexes().CreateOne(context.Background(), roleIndex)

	return &MongoStaffRepository{
		collection: collection,
	}
}

// FindByID finds a staff member by id
func (r *MongoStaffRepository) FindByID(ctx context.Context, id string) (*entity.StaffMember, error) {
	var member entity.StaffMember
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&member)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.NotFoundError{Resource: "staff member", ID: id, Err: err}
		}
		return nil, err
	}
	return &member, nil
}

// FindByRole finds all staff with a role
func (r *MongoStaffRepository) FindByRole(ctx context.Context, role entity.StaffRole) ([]*entity.StaffMember, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"role": role})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	members := make([]*entity.StaffMember, 0)
	if err := cursor.All(ctx, &members); err != nil {
		return nil, err
	}
	return members, nil
}
