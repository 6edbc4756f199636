package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"daviz/internal/audit"
	"daviz/internal/registry/codec"
	"daviz/internal/registry/metrics"
	"daviz/internal/registry/store"
	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/platform/sentinel"
)

// AccountStore is the persistence the instruction handlers need.
type AccountStore interface {
	Create(ctx context.Context, addr address.Address, data []byte) error
	Get(ctx context.Context, addr address.Address) ([]byte, error)
	Execute(ctx context.Context, addr address.Address, fn store.MutateFunc) ([]byte, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service executes registry instructions. Each instruction derives its target
// address, validates input, authorizes the signer and performs exactly one
// atomic store write.
type Service struct {
	accounts       AccountStore
	deriver        address.Deriver
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
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

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// New constructs a Service.
func New(accounts AccountStore, deriver address.Deriver, opts ...Option) *Service {
	s := &Service{
		accounts: accounts,
		deriver:  deriver,
		logger:   slog.Default(),
		tracer:   otel.Tracer("daviz/registry"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) startSpan(ctx context.Context, instruction string, signer address.Address) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "registry."+instruction,
		trace.WithAttributes(attribute.String("daviz.signer", signer.String())))
}

// finish records the outcome of an instruction on the span, in metrics and,
// for rejections, in the audit trail. It returns err unchanged.
func (s *Service) finish(ctx context.Context, span trace.Span, instruction string, start time.Time, signer address.Address, subject address.Address, err error) error {
	outcome := "ok"
	if err != nil {
		outcome = string(dErrors.CodeInternal)
		if de, ok := dErrors.As(err); ok {
			outcome = string(de.Code)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if outcome == string(dErrors.CodeInternal) {
			s.logger.ErrorContext(ctx, "instruction failed",
				"instruction", instruction,
				"error", err,
			)
		} else {
			s.logAudit(ctx, audit.Event{
				Action:  audit.ActionInstructionRejected,
				Signer:  signer.String(),
				Subject: subject.String(),
				Reason:  rejectionReason(instruction, err),
			})
		}
	}
	if s.metrics != nil {
		s.metrics.ObserveInstruction(instruction, outcome, start)
	}
	return err
}

func rejectionReason(instruction string, err error) string {
	if r := dErrors.ReasonOf(err); r != "" {
		return instruction + ": " + string(r)
	}
	return instruction + ": " + err.Error()
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
			"error", err,
			"action", event.Action,
		)
	}
}

// createAccount writes a new account, mapping an occupied address to
// CodeAddressInUse.
func (s *Service) createAccount(ctx context.Context, addr address.Address, data []byte, msg string) error {
	if err := s.accounts.Create(ctx, addr, data); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.WithReason(dErrors.CodeAddressInUse, dErrors.ReasonAddressInUse, msg)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write account")
	}
	return nil
}

// loadAccount fetches raw bytes and checks their record type. An empty address
// and an address holding a different record type are both "not found".
func (s *Service) loadAccount(ctx context.Context, addr address.Address, disc codec.Discriminator, reason dErrors.Reason, msg string) ([]byte, error) {
	raw, err := s.accounts.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.WithReason(dErrors.CodeNotFound, reason, msg)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if !codec.HasDiscriminator(raw, disc) {
		return nil, dErrors.WithReason(dErrors.CodeNotFound, reason, msg)
	}
	return raw, nil
}

func requireSigner(signer address.Address) error {
	if signer.IsZero() {
		return dErrors.New(dErrors.CodeUnauthenticated, "instruction requires a signer")
	}
	return nil
}
