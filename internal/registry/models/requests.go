package models

import (
	"time"

	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
)

// CreateFrameworkRequest is the input of createFramework.
type CreateFrameworkRequest struct {
	FrameworkID uint64   `json:"frameworkId"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Criteria    []string `json:"criteria"`
}

func (r *CreateFrameworkRequest) Validate() error {
	if err := checkLen("name", r.Name, MaxFrameworkNameLen); err != nil {
		return err
	}
	if err := checkLen("description", r.Description, MaxFrameworkDescriptionLen); err != nil {
		return err
	}
	return validateCriteria(r.Criteria)
}

// CreateAssetProfileRequest is the input of createAssetProfile. AssetType is a
// pointer so an omitted type is rejected instead of decoding to business.
type CreateAssetProfileRequest struct {
	AssetID     uint64     `json:"assetId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	AssetType   *AssetType `json:"assetType"`
	MetadataURI *string    `json:"metadataUri,omitempty"`
}

func (r *CreateAssetProfileRequest) Validate() error {
	if err := checkLen("name", r.Name, MaxAssetNameLen); err != nil {
		return err
	}
	if err := checkLen("description", r.Description, MaxAssetDescriptionLen); err != nil {
		return err
	}
	if r.AssetType == nil {
		return dErrors.NewValidation("assetType", dErrors.ReasonRequired, "asset type is required")
	}
	if !r.AssetType.IsValid() {
		return invalidAssetType(uint8(*r.AssetType))
	}
	if r.MetadataURI != nil {
		if err := checkLen("metadataUri", *r.MetadataURI, MaxMetadataURILen); err != nil {
			return err
		}
	}
	return nil
}

// IssueTrustRequest is the input of issueTrust.
type IssueTrustRequest struct {
	Framework  address.Address `json:"framework"`
	Asset      address.Address `json:"asset"`
	TrustScore int             `json:"trustScore"`
	Evidence   string          `json:"evidence"`
	ExpiresAt  *int64          `json:"expiresAt,omitempty"`
}

// Validate checks score range, evidence length and that any expiry lies after now.
func (r *IssueTrustRequest) Validate(now time.Time) error {
	if err := ValidateTrustScore(r.TrustScore); err != nil {
		return err
	}
	if err := checkLen("evidence", r.Evidence, MaxEvidenceLen); err != nil {
		return err
	}
	if r.ExpiresAt != nil && *r.ExpiresAt <= now.Unix() {
		return dErrors.NewValidation("expiresAt", dErrors.ReasonExpiryInPast,
			"expiry date cannot be in the past")
	}
	return nil
}
