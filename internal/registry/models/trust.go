package models

import (
	"time"

	"daviz/pkg/address"
)

// TrustRecord is one issuer's scored attestation of an asset against a framework.
//
// Invariants:
//   - Address = derive("trust_record", Framework, Issuer, TargetAsset), so at most
//     one record exists per (framework, issuer, asset)
//   - Framework, Issuer and TargetAsset are immutable references by address
//   - TrustScore ∈ [0,100], Evidence ≤ 500
//   - ExpiresAt nil means the record never expires
type TrustRecord struct {
	Framework   address.Address `json:"framework"`
	Issuer      address.Address `json:"issuer"`
	TargetAsset address.Address `json:"targetAsset"`
	TrustScore  uint8           `json:"trustScore"`
	Evidence    string          `json:"evidence"`
	IsActive    bool            `json:"isActive"`
	IssuedAt    int64           `json:"issuedAt"`
	ExpiresAt   *int64          `json:"expiresAt,omitempty"`
	Bump        uint8           `json:"-"`
}

func NewTrustRecord(framework, issuer, asset address.Address, score uint8, evidence string, expiresAt *int64, bump uint8, now time.Time) *TrustRecord {
	var exp *int64
	if expiresAt != nil {
		v := *expiresAt
		exp = &v
	}
	return &TrustRecord{
		Framework:   framework,
		Issuer:      issuer,
		TargetAsset: asset,
		TrustScore:  score,
		Evidence:    evidence,
		IsActive:    true,
		IssuedAt:    now.Unix(),
		ExpiresAt:   exp,
		Bump:        bump,
	}
}

func (r *TrustRecord) IssuedTime() time.Time {
	return time.Unix(r.IssuedAt, 0).UTC()
}

// IsExpired reports whether the record carries an expiry at or before now.
func (r *TrustRecord) IsExpired(now time.Time) bool {
	return r.ExpiresAt != nil && *r.ExpiresAt <= now.Unix()
}

// IsEffective is true for active, unexpired records.
func (r *TrustRecord) IsEffective(now time.Time) bool {
	return r.IsActive && !r.IsExpired(now)
}
