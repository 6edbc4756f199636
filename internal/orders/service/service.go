// Package service manages the off-ledger interest order log. Orders reference
// registry assets by address but never read or write registry state.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"daviz/internal/audit"
	"daviz/internal/orders/models"
	"daviz/internal/orders/store"
	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/platform/sentinel"
	"daviz/pkg/requestcontext"
)

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

type Service struct {
	orders         store.Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func New(orders store.Store, opts ...Option) *Service {
	s := &Service{orders: orders, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder records a pending order from buyer.
func (s *Service) CreateOrder(ctx context.Context, buyer address.Address, req *models.CreateOrderRequest) (*models.InterestOrder, error) {
	if buyer.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "buyer signature required")
	}
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := models.NewInterestOrder(buyer, req, requestcontext.Now(ctx))
	if err := s.orders.Append(ctx, order); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save order")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionOrderCreated,
		Signer:  buyer.String(),
		Subject: order.ID.String(),
		Asset:   order.AssetAddress.String(),
	})
	return order, nil
}

// ListForAsset returns the orders placed against asset, newest first.
func (s *Service) ListForAsset(ctx context.Context, asset address.Address, statuses ...models.Status) ([]*models.InterestOrder, error) {
	return s.ListAll(ctx, models.Filter{Asset: &asset, Statuses: statuses})
}

// ListAll returns every order matching filter, newest first.
func (s *Service) ListAll(ctx context.Context, filter models.Filter) ([]*models.InterestOrder, error) {
	for _, st := range filter.Statuses {
		if !st.IsValid() {
			return nil, dErrors.NewValidation("status", dErrors.ReasonInvalidVariant, "unknown order status "+string(st))
		}
	}
	orders, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list orders")
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*models.InterestOrder, error) {
	order, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return order, nil
}

// UpdateStatus moves an order along pending → accepted → completed, or
// pending → cancelled. Only the buyer may cancel. Terminal orders cannot change.
func (s *Service) UpdateStatus(ctx context.Context, signer address.Address, id uuid.UUID, next models.Status) (*models.InterestOrder, error) {
	if signer.IsZero() {
		return nil, dErrors.New(dErrors.CodeUnauthenticated, "signature required")
	}
	if !next.IsValid() {
		return nil, dErrors.NewValidation("status", dErrors.ReasonInvalidVariant, "unknown order status "+string(next))
	}
	from := models.PredecessorsOf(next)
	if len(from) == 0 {
		return nil, dErrors.WithReason(dErrors.CodeInvalidState, dErrors.ReasonInvalidTransition,
			"no order may move to "+string(next))
	}

	if next == models.StatusCancelled {
		current, err := s.orders.Get(ctx, id)
		if err != nil {
			return nil, translateStoreError(err)
		}
		if current.BuyerAddress != signer {
			return nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonUnauthorized,
				"only the buyer may cancel an order")
		}
	}

	order, err := s.orders.UpdateStatus(ctx, id, from, next)
	if err != nil {
		return nil, translateStoreError(err)
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionOrderStatusChanged,
		Signer:  signer.String(),
		Subject: order.ID.String(),
		Asset:   order.AssetAddress.String(),
		Fields:  []string{"status"},
		Reason:  "status changed to " + string(order.Status),
	})
	return order, nil
}

func translateStoreError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.WithReason(dErrors.CodeNotFound, dErrors.ReasonOrderNotFound, "order not found")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.WithReason(dErrors.CodeInvalidState, dErrors.ReasonInvalidTransition, "order cannot move to the requested status")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "order store failure")
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		s.logger.InfoContext(ctx, string(event.Action),
			"subject", event.Subject,
			"signer", event.Signer,
			"event", string(event.Action),
			"log_type", "audit",
		)
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", string(event.Action),
			"error", err,
		)
	}
}
