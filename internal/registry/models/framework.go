package models

import (
	"slices"
	"time"

	"daviz/pkg/address"
)

// Framework is a named, versionable set of verification criteria.
//
// Invariants:
//   - Address = derive("trust_framework", Authority, FrameworkID)
//   - Authority and FrameworkID are immutable after creation
//   - Name ≤ 50, Description ≤ 200, Criteria ≤ 10 entries of ≤ 100 bytes each
//   - Only Authority may change Name, Description, Criteria or IsActive
//   - Never deleted; deactivation is reversible by Authority
type Framework struct {
	Authority   address.Address `json:"authority"`
	FrameworkID uint64          `json:"frameworkId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Criteria    []string        `json:"criteria"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   int64           `json:"createdAt"`
	Bump        uint8           `json:"-"`
}

// NewFramework builds an active framework. Inputs must already be validated.
func NewFramework(authority address.Address, frameworkID uint64, name, description string, criteria []string, bump uint8, now time.Time) *Framework {
	return &Framework{
		Authority:   authority,
		FrameworkID: frameworkID,
		Name:        name,
		Description: description,
		Criteria:    slices.Clone(criteria),
		IsActive:    true,
		CreatedAt:   now.Unix(),
		Bump:        bump,
	}
}

func (f *Framework) CreatedTime() time.Time {
	return time.Unix(f.CreatedAt, 0).UTC()
}

// IsAuthority reports whether signer holds update rights.
func (f *Framework) IsAuthority(signer address.Address) bool {
	return f.Authority == signer
}

// ApplyPatch overwrites each present field. Must only be called after the patch
// has been validated and the signer authorized.
func (f *Framework) ApplyPatch(p FrameworkPatch) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.Criteria != nil {
		f.Criteria = slices.Clone(*p.Criteria)
	}
	if p.IsActive != nil {
		f.IsActive = *p.IsActive
	}
}

// FrameworkPatch carries the optional fields of updateFramework. A nil field is
// left untouched; a present empty value overwrites.
type FrameworkPatch struct {
	Name        *string   `json:"name,omitempty"`
	Description *string   `json:"description,omitempty"`
	Criteria    *[]string `json:"criteria,omitempty"`
	IsActive    *bool     `json:"isActive,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p FrameworkPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Criteria == nil && p.IsActive == nil
}

// Validate checks only the fields present in the patch.
func (p FrameworkPatch) Validate() error {
	if p.Name != nil {
		if err := checkLen("name", *p.Name, MaxFrameworkNameLen); err != nil {
			return err
		}
	}
	if p.Description != nil {
		if err := checkLen("description", *p.Description, MaxFrameworkDescriptionLen); err != nil {
			return err
		}
	}
	if p.Criteria != nil {
		if err := validateCriteria(*p.Criteria); err != nil {
			return err
		}
	}
	return nil
}

// Fields lists the names of present fields, for audit logging.
func (p FrameworkPatch) Fields() []string {
	var fields []string
	if p.Name != nil {
		fields = append(fields, "name")
	}
	if p.Description != nil {
		fields = append(fields, "description")
	}
	if p.Criteria != nil {
		fields = append(fields, "criteria")
	}
	if p.IsActive != nil {
		fields = append(fields, "isActive")
	}
	return fields
}
