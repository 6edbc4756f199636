package store_test

import (
	"context"
	"crypto/rand"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"daviz/internal/orders/models"
	"daviz/internal/orders/store"
	"daviz/pkg/address"
	"daviz/pkg/platform/sentinel"
	"daviz/pkg/requestcontext"
)

// orderStoreSuite is the behaviour shared by every order store backend.
type orderStoreSuite struct {
	suite.Suite
	store store.Store
	ctx   context.Context
	now   time.Time
}

func (s *orderStoreSuite) addr() address.Address {
	var a address.Address
	_, err := rand.Read(a[:])
	s.Require().NoError(err)
	return a
}

func (s *orderStoreSuite) order(buyer, asset address.Address, at time.Time) *models.InterestOrder {
	budget := "10k"
	return models.NewInterestOrder(buyer, &models.CreateOrderRequest{
		AssetAddress: asset,
		Message:      "interested",
		ContactInfo:  "buyer@example.com",
		Budget:       &budget,
	}, at)
}

func (s *orderStoreSuite) TestAppendAndGet() {
	o := s.order(s.addr(), s.addr(), s.now)
	s.Require().NoError(s.store.Append(s.ctx, o))

	got, err := s.store.Get(s.ctx, o.ID)
	s.Require().NoError(err)
	s.Equal(o.ID, got.ID)
	s.Equal(o.BuyerAddress, got.BuyerAddress)
	s.Equal(o.AssetAddress, got.AssetAddress)
	s.Equal(models.StatusPending, got.Status)
	s.Require().NotNil(got.Budget)
	s.Equal("10k", *got.Budget)
	s.Nil(got.Timeline)
	s.True(o.CreatedAt.Equal(got.CreatedAt))

	s.ErrorIs(s.store.Append(s.ctx, o), sentinel.ErrAlreadyUsed)

	_, err = s.store.Get(s.ctx, uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *orderStoreSuite) TestListFiltersAndOrdersNewestFirst() {
	buyer := s.addr()
	assetA, assetB := s.addr(), s.addr()
	oldest := s.order(buyer, assetA, s.now.Add(-2*time.Hour))
	middle := s.order(s.addr(), assetB, s.now.Add(-time.Hour))
	newest := s.order(buyer, assetA, s.now)
	for _, o := range []*models.InterestOrder{middle, oldest, newest} {
		s.Require().NoError(s.store.Append(s.ctx, o))
	}

	all, err := s.store.List(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]uuid.UUID{newest.ID, middle.ID, oldest.ID}, ids(all))

	forA, err := s.store.List(s.ctx, models.Filter{Asset: &assetA})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{newest.ID, oldest.ID}, ids(forA))

	byBuyer, err := s.store.List(s.ctx, models.Filter{Buyer: &buyer, Asset: &assetB})
	s.Require().NoError(err)
	s.Empty(byBuyer)

	_, err = s.store.UpdateStatus(s.ctx, middle.ID, []models.Status{models.StatusPending}, models.StatusAccepted)
	s.Require().NoError(err)
	accepted, err := s.store.List(s.ctx, models.Filter{Statuses: []models.Status{models.StatusAccepted, models.StatusCompleted}})
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{middle.ID}, ids(accepted))
}

func (s *orderStoreSuite) TestUpdateStatus() {
	o := s.order(s.addr(), s.addr(), s.now)
	s.Require().NoError(s.store.Append(s.ctx, o))
	later := s.now.Add(time.Minute)
	ctx := requestcontext.WithTime(s.ctx, later)

	s.Run("moves from an allowed status", func() {
		got, err := s.store.UpdateStatus(ctx, o.ID, []models.Status{models.StatusPending}, models.StatusAccepted)
		s.Require().NoError(err)
		s.Equal(models.StatusAccepted, got.Status)
		s.True(later.Equal(got.UpdatedAt))
		s.True(o.CreatedAt.Equal(got.CreatedAt))
	})

	s.Run("refuses from a disallowed status", func() {
		_, err := s.store.UpdateStatus(ctx, o.ID, []models.Status{models.StatusPending}, models.StatusCancelled)
		s.ErrorIs(err, sentinel.ErrInvalidState)

		got, err := s.store.Get(s.ctx, o.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusAccepted, got.Status)
	})

	s.Run("unknown id", func() {
		_, err := s.store.UpdateStatus(ctx, uuid.New(), []models.Status{models.StatusPending}, models.StatusAccepted)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func ids(orders []*models.InterestOrder) []uuid.UUID {
	out := make([]uuid.UUID, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}
