package models

import (
	"strings"
	"time"

	"daviz/pkg/address"
)

// Account pairs a decoded record with the address it is stored at.
type Account[T any] struct {
	Address address.Address `json:"publicKey"`
	Account T               `json:"account"`
}

type (
	FrameworkAccount    = Account[Framework]
	AssetProfileAccount = Account[AssetProfile]
	TrustRecordAccount  = Account[TrustRecord]
)

// TrustRecordFilter narrows a trust record scan. Nil fields do not filter.
type TrustRecordFilter struct {
	Framework *address.Address
	Issuer    *address.Address
	Asset     *address.Address
}

// EnrichedTrustRecord is a trust record with its framework and asset resolved.
// A nil Framework or Asset is a join gap: the reference could not be resolved
// at read time. It is not persisted.
type EnrichedTrustRecord struct {
	TrustRecordAccount
	Framework      *FrameworkAccount    `json:"framework,omitempty"`
	Asset          *AssetProfileAccount `json:"asset,omitempty"`
	EvidenceDigest string               `json:"evidenceDigest,omitempty"`
}

// Displayable is true when both join targets were resolved.
func (e *EnrichedTrustRecord) Displayable() bool {
	return e.Framework != nil && e.Asset != nil
}

// IsValidListing applies the marketplace filter: record, asset and framework all
// present and active, and the record not expired.
func (e *EnrichedTrustRecord) IsValidListing(now time.Time) bool {
	return e.Displayable() &&
		e.Account.IsEffective(now) &&
		e.Asset.Account.IsActive &&
		e.Framework.Account.IsActive
}

// ListingFilter narrows marketplace listings. Zero values do not filter.
type ListingFilter struct {
	MinScore   *uint8
	MaxScore   *uint8
	SearchTerm string
	AssetType  *AssetType
}

// Matches applies the filter to an already-valid listing.
func (f ListingFilter) Matches(e *EnrichedTrustRecord) bool {
	score := e.Account.TrustScore
	if f.MinScore != nil && score < *f.MinScore {
		return false
	}
	if f.MaxScore != nil && score > *f.MaxScore {
		return false
	}
	if f.AssetType != nil && (e.Asset == nil || e.Asset.Account.AssetType != *f.AssetType) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" {
		var haystack []string
		if e.Asset != nil {
			haystack = append(haystack, e.Asset.Account.Name, e.Asset.Account.Description)
		}
		if e.Framework != nil {
			haystack = append(haystack, e.Framework.Account.Name)
		}
		found := false
		for _, h := range haystack {
			if strings.Contains(strings.ToLower(h), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// AssetWithTrust pairs a trust record with the asset it attests.
type AssetWithTrust struct {
	TrustRecord TrustRecordAccount  `json:"trustRecord"`
	Asset       AssetProfileAccount `json:"asset"`
}
