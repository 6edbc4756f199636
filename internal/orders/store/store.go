package store

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"daviz/internal/orders/models"
)

// Store is the order log. UpdateStatus moves an order to `to` only when its
// current status is one of `from`; it returns sentinel.ErrNotFound for an
// unknown id and sentinel.ErrInvalidState when the current status is not in `from`.
type Store interface {
	Append(ctx context.Context, order *models.InterestOrder) error
	Get(ctx context.Context, id uuid.UUID) (*models.InterestOrder, error)
	List(ctx context.Context, filter models.Filter) ([]*models.InterestOrder, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from []models.Status, to models.Status) (*models.InterestOrder, error)
}

// sortNewestFirst orders by creation time descending, then by id.
func sortNewestFirst(orders []*models.InterestOrder) {
	slices.SortFunc(orders, func(a, b *models.InterestOrder) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
}
