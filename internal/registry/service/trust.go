package service

import (
	"context"
	"time"

	"daviz/internal/audit"
	"daviz/internal/registry/codec"
	"daviz/internal/registry/models"
	"daviz/pkg/address"
	"daviz/pkg/cidutil"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/requestcontext"
)

// IssueTrust records signer's scored attestation of req.Asset against
// req.Framework at derive("trust_record", framework, signer, asset). Any signer
// may issue; re-issuing under the same triple fails.
func (s *Service) IssueTrust(ctx context.Context, signer address.Address, req *models.IssueTrustRequest) (addr address.Address, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "IssueTrust", signer)
	defer span.End()
	defer func() { err = s.finish(ctx, span, "IssueTrust", start, signer, addr, err) }()

	if err := requireSigner(signer); err != nil {
		return address.Zero, err
	}
	derived, err := s.deriver.TrustRecord(req.Framework, signer, req.Asset)
	if err != nil {
		return address.Zero, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive trust record address")
	}
	addr = derived.Address

	now := requestcontext.Now(ctx)
	if err := req.Validate(now); err != nil {
		return addr, err
	}

	rawFramework, err := s.loadAccount(ctx, req.Framework, codec.FrameworkDiscriminator,
		dErrors.ReasonFrameworkNotFound, "framework not found")
	if err != nil {
		return addr, err
	}
	fw, err := codec.DecodeFramework(rawFramework)
	if err != nil {
		return addr, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode framework")
	}
	if !fw.IsActive {
		return addr, dErrors.WithReason(dErrors.CodeInvalidState, dErrors.ReasonFrameworkInactive, "framework is not active")
	}

	rawAsset, err := s.loadAccount(ctx, req.Asset, codec.AssetProfileDiscriminator,
		dErrors.ReasonAssetNotFound, "asset not found")
	if err != nil {
		return addr, err
	}
	asset, err := codec.DecodeAssetProfile(rawAsset)
	if err != nil {
		return addr, dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode asset profile")
	}
	if !asset.IsActive {
		return addr, dErrors.WithReason(dErrors.CodeInvalidState, dErrors.ReasonAssetInactive, "asset is not active")
	}

	record := models.NewTrustRecord(req.Framework, signer, req.Asset, uint8(req.TrustScore), req.Evidence, req.ExpiresAt, derived.Bump, now)
	raw, err := codec.EncodeTrustRecord(record)
	if err != nil {
		return addr, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode trust record")
	}
	if err := s.createAccount(ctx, addr, raw, "trust already issued for this framework and asset"); err != nil {
		return addr, err
	}

	s.logAudit(ctx, audit.Event{
		Action:      audit.ActionTrustIssued,
		Timestamp:   record.IssuedTime(),
		Signer:      signer.String(),
		Subject:     addr.String(),
		EvidenceCID: cidutil.EvidenceCID(req.Evidence),
	})
	return addr, nil
}
