package models

import (
	"time"

	"daviz/pkg/address"
)

// AssetProfile is a registrable subject of trust.
//
// Invariants:
//   - Address = derive("asset_profile", Owner, AssetID)
//   - Owner and AssetID never change
//   - Name ≤ 50, Description ≤ 200, MetadataURI ≤ 200 when present
//   - No update instruction exists; profiles are immutable once created
type AssetProfile struct {
	Owner       address.Address `json:"owner"`
	AssetID     uint64          `json:"assetId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	AssetType   AssetType       `json:"assetType"`
	MetadataURI *string         `json:"metadataUri,omitempty"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   int64           `json:"createdAt"`
	Bump        uint8           `json:"-"`
}

func NewAssetProfile(owner address.Address, assetID uint64, name, description string, assetType AssetType, metadataURI *string, bump uint8, now time.Time) *AssetProfile {
	var uri *string
	if metadataURI != nil {
		v := *metadataURI
		uri = &v
	}
	return &AssetProfile{
		Owner:       owner,
		AssetID:     assetID,
		Name:        name,
		Description: description,
		AssetType:   assetType,
		MetadataURI: uri,
		IsActive:    true,
		CreatedAt:   now.Unix(),
		Bump:        bump,
	}
}

func (a *AssetProfile) CreatedTime() time.Time {
	return time.Unix(a.CreatedAt, 0).UTC()
}
