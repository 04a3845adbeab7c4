package repository

import (
	"context"

	"tourstaff-service/internal/domain/entity"
)

// BusRepository defines the interface for bus fleet operations
type BusRepository interface {
	Create(ctx context.Context, bus *entity.Bus) error
	GetByID(ctx context.Context, id string) (*entity.Bus, error)
	ListActive(ctx context.Context) ([]*entity.Bus, error)
}
