package batch

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/synthetix-ai/drafter/internal/domain"
)

var ErrNotFound = errors.New("batch not found")
var ErrCannotCreate = errors.New("error create batch")

//go:generate go run go.uber.org/mock/mockgen -source=batch.go -destination=mocks/mock.go

// Repository persists generation history: one row per batch plus its drafts.
type Repository interface {
	Create(ctx context.Context, b domain.Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Batch, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Batch, error)
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
