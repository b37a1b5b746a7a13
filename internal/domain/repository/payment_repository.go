package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/coopvine/coopvine-backend/internal/domain/model"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	GetByTransactionReference(ctx context.Context, reference string) (*model.Payment, error)
	Update(ctx context.Context, payment *model.Payment) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Payment, error)
}
