package service

import (
	"context"
	"time"

	"daviz/internal/audit"
	"daviz/internal/registry/codec"
	"daviz/internal/registry/models"
	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
	"daviz/pkg/requestcontext"
)

// CreateAssetProfile registers an asset owned by signer at
// derive("asset_profile", signer, req.AssetID). Profiles are immutable.
func (s *Service) CreateAssetProfile(ctx context.Context, signer address.Address, req *models.CreateAssetProfileRequest) (addr address.Address, err error) {
	start := time.Now()
	ctx, span := s.startSpan(ctx, "CreateAssetProfile", signer)
	defer span.End()
	defer func() { err = s.finish(ctx, span, "CreateAssetProfile", start, signer, addr, err) }()

	if err := requireSigner(signer); err != nil {
		return address.Zero, err
	}
	derived, err := s.deriver.AssetProfile(signer, req.AssetID)
	if err != nil {
		return address.Zero, dErrors.Wrap(err, dErrors.CodeInternal, "failed to derive asset profile address")
	}
	addr = derived.Address
	if err := req.Validate(); err != nil {
		return addr, err
	}

	profile := models.NewAssetProfile(signer, req.AssetID, req.Name, req.Description, *req.AssetType, req.MetadataURI, derived.Bump, requestcontext.Now(ctx))
	raw, err := codec.EncodeAssetProfile(profile)
	if err != nil {
		return addr, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode asset profile")
	}
	if err := s.createAccount(ctx, addr, raw, "asset id already used by this owner"); err != nil {
		return addr, err
	}

	s.logAudit(ctx, audit.Event{
		Action:    audit.ActionAssetProfileCreated,
		Timestamp: profile.CreatedTime(),
		Signer:    signer.String(),
		Subject:   addr.String(),
	})
	return addr, nil
}
