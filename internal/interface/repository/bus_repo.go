package repository

import (
	"context"
	"errors"
	"time"

	"tourstaff-service/internal/domain"
	"tourstaff-service/internal/domain/entity"
	"tourstaff-service/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBusRepository implements the BusRepository interface
type GormBusRepository struct {
	db *gorm.DB
}

// NewGormBusRepository creates a new GORM bus repository
func NewGormBusRepository(db *gorm.DB) repository.BusRepository {
	return &GormBusRepository{
		db: db,
	}
}

// Buses GORM model for database mapping
type Buses struct {
	ID           string `gorm:"column:id;primaryKey"`
	Name         string `gorm:"column:name;unique"`
	LicensePlate string `gorm:"column:license_plate"`
	Capacity     int    `gorm:"column:capacity"`
	Active       bool   `gorm:"column:active"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

// TableName overrides the default table name
func (Buses) TableName() string {
	return "m_buses"
}

// Create inserts a bus, generating its id when empty
func (r *GormBusRepository) Create(ctx context.Context, bus *entity.Bus) error {
	if bus.ID == "" {
		bus.ID = uuid.NewString()
	}
	if bus.Capacity <= 0 {
		bus.Capacity = entity.DefaultBusCapacity
	}

	model := Buses{
		ID:           bus.ID,
		Name:         bus.Name,
		LicensePlate: bus.LicensePlate,
		Capacity:     bus.Capacity,
		Active:       bus.Active,
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return err
	}

	bus.CreatedAt = model.CreatedAt
	bus.UpdatedAt = model.UpdatedAt
	return nil
}

// GetByID finds a bus by id
func (r *GormBusRepository) GetByID(ctx context.Context, id string) (*entity.Bus, error) {
	var bus Buses
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&bus)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.NotFoundError{Resource: "bus", ID: id, Err: result.Error}
		}
		return nil, result.Error
	}

	return toBusEntity(bus), nil
}

// ListActive returns active buses ordered by name
func (r *GormBusRepository) ListActive(ctx context.Context) ([]*entity.Bus, error) {
	var buses []Buses
	result := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&buses)

	if result.Error != nil {
		return nil, result.Error
	}

	entities := make([]*entity.Bus, 0, len(buses))
	for _, bus := range buses {
		entities = append(entities, toBusEntity(bus))
	}
	return entities, nil
}

func toBusEntity(bus Buses) *entity.Bus {
	return &entity.Bus{
		ID:           bus.ID,
		Name:         bus.Name,
		LicensePlate: bus.LicensePlate,
		Capacity:     bus.Capacity,
		Active:       bus.Active,
		CreatedAt:    bus.CreatedAt,
		UpdatedAt:    bus.UpdatedAt,
	}
}
