package service

import (
	"context"
	"errors"
	"time"

	"daviz/internal/audit"
	"daviz/internal/registry/codec"
	"daviz/internal/registry/models"
	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/platform/sentinel"
	"daviz/pkg/requestcontext"
)

// CreateFramework registers a framework owned by signer at
// derive("trust_framework", signer, req.FrameworkID).
func (s *Service) CreateFramework(ctx context.Context, signer address.Address, req *models.CreateFrameworkRequest) (addr address.Address, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "CreateFramework", signer)
	defer span.End()
	defer func() { err = s.finish(ctx, span, "CreateFramework", start, signer, addr, err) }()

	if err := requireSigner(signer); err != nil {
		return address.Zero, err
	}
	derived, err := s.deriver.Framework(signer, req.FrameworkID)
	if err != nil {
		return address.Zero, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive framework address")
	}
	addr = derived.Address
	if err := req.Validate(); err != nil {
		return addr, err
	}

	fw := models.NewFramework(signer, req.FrameworkID, req.Name, req.Description, req.Criteria, derived.Bump, requestcontext.Now(ctx))
	raw, err := codec.EncodeFramework(fw)
	if err != nil {
		return addr, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode framework")
	}
	if err := s.createAccount(ctx, addr, raw, "framework id already used by this authority"); err != nil {
		return addr, err
	}

	s.logAudit(ctx, audit.Event{
		Action:    audit.ActionFrameworkCreated,
		Timestamp: fw.CreatedTime(),
		Signer:    signer.String(),
		Subject:   addr.String(),
	})
	return addr, nil
}

// UpdateFramework overwrites each field present in patch. Only the stored
// authority may update; absent fields keep their values.
func (s *Service) UpdateFramework(ctx context.Context, signer address.Address, frameworkAddr address.Address, patch models.FrameworkPatch) (err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "UpdateFramework", signer)
	defer span.End()
	defer func() { err = s.finish(ctx, span, "UpdateFramework", start, signer, frameworkAddr, err) }()

	if err := requireSigner(signer); err != nil {
		return err
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	_, err = s.accounts.Execute(ctx, frameworkAddr, func(current []byte) ([]byte, error) {
		fw, err := codec.DecodeFramework(current)
		if err != nil {
			if errors.Is(err, codec.ErrDiscriminatorMismatch) {
				return nil, frameworkNotFound()
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode framework")
		}
		if !fw.IsAuthority(signer) {
			return nil, dErrors.WithReason(dErrors.CodeUnauthorized, dErrors.ReasonUnauthorized,
				"signer is not the framework authority")
		}
		fw.ApplyPatch(patch)
		return codec.EncodeFramework(fw)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return frameworkNotFound()
		}
		if _, ok := dErrors.As(err); ok {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update framework")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionFrameworkUpdated,
		Signer:  signer.String(),
		Subject: frameworkAddr.String(),
		Fields:  patch.Fields(),
	})
	return nil
}

func frameworkNotFound() error {
	return dErrors.WithReason(dErrors.CodeNotFound, dErrors.ReasonFrameworkNotFound, "framework not found")
}
