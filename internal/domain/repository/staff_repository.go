package repository

import (
	"context"

	"tourstaff-service/internal/domain/entity"
)

// StaffRepository reads guides and admins from the users collection
type StaffRepository interface {
	FindByID(ctx context.Context, id string) (*entity.StaffMember, error)
	FindByRole(ctx context.Context, role entity.StaffRole) ([]*entity.StaffMember, error)
}
