package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"daviz/internal/orders/models"
	"daviz/pkg/platform/sentinel"
	"daviz/pkg/requestcontext"
)

// InMemory keeps orders in a map guarded by a mutex. Orders are copied on the
// way in and out so callers never share state with the store.
type InMemory struct {
	mu     sync.RWMutex
	orders map[uuid.UUID]*models.InterestOrder
}

func NewInMemory() *InMemory {
	return &InMemory{orders: make(map[uuid.UUID]*models.InterestOrder)}
}

func (s *InMemory) Append(_ context.Context, order *models.InterestOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[order.ID]; ok {
		return fmt.Errorf("order %s: %w", order.ID, sentinel.ErrAlreadyUsed)
	}
	s.orders[order.ID] = clone(order)
	return nil
}

func (s *InMemory) Get(_ context.Context, id uuid.UUID) (*models.InterestOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, sentinel.ErrNotFound)
	}
	return clone(o), nil
}

func (s *InMemory) List(_ context.Context, filter models.Filter) ([]*models.InterestOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.InterestOrder, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.Matches(o) {
			out = append(out, clone(o))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemory) UpdateStatus(ctx context.Context, id uuid.UUID, from []models.Status, to models.Status) (*models.InterestOrder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, sentinel.ErrNotFound)
	}
	if !slices.Contains(from, o.Status) {
		return nil, fmt.Errorf("order %s is %s: %w", id, o.Status, sentinel.ErrInvalidState)
	}
	o.Status = to
	o.UpdatedAt = requestcontext.Now(ctx)
	return clone(o), nil
}

func clone(o *models.InterestOrder) *models.InterestOrder {
	c := *o
	if o.Budget != nil {
		v := *o.Budget
		c.Budget = &v
	}
	if o.Timeline != nil {
		v := *o.Timeline
		c.Timeline = &v
	}
	return &c
}
