package repository

import (
	"context"

	"tourstaff-service/internal/domain/entity"
)

// PushRepository delivers a push notification and returns the provider message id
type PushRepository interface {
	Send(ctx context.Context, msg *entity.PushMessage) (string, error)
}
