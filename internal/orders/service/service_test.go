package service

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"daviz/internal/audit"
	"daviz/internal/orders/models"
	"daviz/internal/orders/store"
	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/requestcontext"
)

type OrderServiceSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	sink    *audit.MemorySink
	service *Service
}

func TestOrderServiceSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceSuite))
}

func (s *OrderServiceSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.sink = audit.NewMemorySink()
	s.service = New(store.NewInMemory(),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithAuditPublisher(audit.NewPublisher(s.sink)),
	)
}

func (s *OrderServiceSuite) signer() address.Address {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	s.Require().NoError(err)
	a, err := address.FromPublicKey(pub)
	s.Require().NoError(err)
	return a
}

func (s *OrderServiceSuite) requireCode(err error, code dErrors.Code) {
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, code), "expected %s, got %v", code, err)
}

func (s *OrderServiceSuite) place(asset address.Address) *models.InterestOrder {
	order, err := s.service.CreateOrder(s.ctx, s.signer(), &models.CreateOrderRequest{
		AssetAddress: asset,
		Message:      "  keen to talk  ",
		ContactInfo:  "me@example.com",
	})
	s.Require().NoError(err)
	return order
}

func (s *OrderServiceSuite) TestCreateOrder() {
	s.Run("creates a pending order stamped with request time", func() {
		buyer, asset := s.signer(), s.signer()
		timeline := "   "
		order, err := s.service.CreateOrder(s.ctx, buyer, &models.CreateOrderRequest{
			AssetAddress: asset,
			Message:      "  keen to talk  ",
			ContactInfo:  "me@example.com",
			Timeline:     &timeline,
		})
		s.Require().NoError(err)
		s.NotEqual(uuid.Nil, order.ID)
		s.Equal(buyer, order.BuyerAddress)
		s.Equal(asset, order.AssetAddress)
		s.Equal("keen to talk", order.Message)
		s.Nil(order.Timeline)
		s.Equal(models.StatusPending, order.Status)
		s.Equal(s.now, order.CreatedAt)
	})

	s.Run("requires a buyer", func() {
		_, err := s.service.CreateOrder(s.ctx, address.Address{}, &models.CreateOrderRequest{
			AssetAddress: s.signer(), Message: "m", ContactInfo: "c",
		})
		s.requireCode(err, dErrors.CodeUnauthenticated)
	})

	s.Run("validates input", func() {
		_, err := s.service.CreateOrder(s.ctx, s.signer(), &models.CreateOrderRequest{
			AssetAddress: s.signer(), Message: " ", ContactInfo: "c",
		})
		s.requireCode(err, dErrors.CodeValidation)
		s.Equal(dErrors.ReasonRequired, dErrors.ReasonOf(err))
	})
}

func (s *OrderServiceSuite) TestListing() {
	assetA, assetB := s.signer(), s.signer()
	first := s.place(assetA)
	s.place(assetB)
	s.ctx = requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	second := s.place(assetA)

	forA, err := s.service.ListForAsset(s.ctx, assetA)
	s.Require().NoError(err)
	s.Require().Len(forA, 2)
	s.Equal(second.ID, forA[0].ID)
	s.Equal(first.ID, forA[1].ID)

	all, err := s.service.ListAll(s.ctx, models.Filter{})
	s.Require().NoError(err)
	s.Len(all, 3)

	_, err = s.service.ListAll(s.ctx, models.Filter{Statuses: []models.Status{"shipped"}})
	s.requireCode(err, dErrors.CodeValidation)
}

func (s *OrderServiceSuite) TestUpdateStatus() {
	signer := s.signer()

	s.Run("follows the order lifecycle", func() {
		order := s.place(s.signer())
		got, err := s.service.UpdateStatus(s.ctx, signer, order.ID, models.StatusAccepted)
		s.Require().NoError(err)
		s.Equal(models.StatusAccepted, got.Status)

		got, err = s.service.UpdateStatus(s.ctx, signer, order.ID, models.StatusCompleted)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, got.Status)

		_, err = s.service.UpdateStatus(s.ctx, order.BuyerAddress, order.ID, models.StatusCancelled)
		s.requireCode(err, dErrors.CodeInvalidState)
	})

	s.Run("pending order can be cancelled but not completed", func() {
		order := s.place(s.signer())
		_, err := s.service.UpdateStatus(s.ctx, signer, order.ID, models.StatusCompleted)
		s.requireCode(err, dErrors.CodeInvalidState)

		got, err := s.service.UpdateStatus(s.ctx, order.BuyerAddress, order.ID, models.StatusCancelled)
		s.Require().NoError(err)
		s.Equal(models.StatusCancelled, got.Status)
	})

	s.Run("only the buyer may cancel", func() {
		order := s.place(s.signer())
		_, err := s.service.UpdateStatus(s.ctx, signer, order.ID, models.StatusCancelled)
		s.requireCode(err, dErrors.CodeUnauthorized)
		s.Equal(dErrors.ReasonUnauthorized, dErrors.ReasonOf(err))

		got, err := s.service.GetOrder(s.ctx, order.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusPending, got.Status)
		actions := s.sink.Actions()
		s.Equal(audit.ActionOrderCreated, actions[len(actions)-1])
	})

	s.Run("cancelling an unknown order is not found", func() {
		_, err := s.service.UpdateStatus(s.ctx, signer, uuid.New(), models.StatusCancelled)
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("nothing moves back to pending", func() {
		order := s.place(s.signer())
		_, err := s.service.UpdateStatus(s.ctx, signer, order.ID, models.StatusPending)
		s.requireCode(err, dErrors.CodeInvalidState)
	})

	s.Run("unknown id is not found", func() {
		_, err := s.service.UpdateStatus(s.ctx, signer, uuid.New(), models.StatusAccepted)
		s.requireCode(err, dErrors.CodeNotFound)
		s.Equal(dErrors.ReasonOrderNotFound, dErrors.ReasonOf(err))
	})

	s.Run("unknown status is a validation error", func() {
		order := s.place(s.signer())
		_, err := s.service.UpdateStatus(s.ctx, signer, order.ID, "shipped")
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("requires a signer", func() {
		order := s.place(s.signer())
		_, err := s.service.UpdateStatus(s.ctx, address.Address{}, order.ID, models.StatusAccepted)
		s.requireCode(err, dErrors.CodeUnauthenticated)
	})
}

func (s *OrderServiceSuite) TestAuditTrail() {
	order := s.place(s.signer())
	_, err := s.service.UpdateStatus(s.ctx, s.signer(), order.ID, models.StatusAccepted)
	s.Require().NoError(err)

	s.Equal([]audit.Action{audit.ActionOrderCreated, audit.ActionOrderStatusChanged}, s.sink.Actions())
	events := s.sink.Events()
	s.Equal(order.ID.String(), events[0].Subject)
	s.Equal(order.AssetAddress.String(), events[0].Asset)
	s.Equal(audit.CategoryOperations, events[1].Category)
	s.Equal([]string{"status"}, events[1].Fields)
}
