// Package store persists registry accounts as opaque byte blobs keyed by address.
//
// Error Contract:
//   - Create returns sentinel.ErrAlreadyUsed when the address is occupied
//   - Get and Execute return sentinel.ErrNotFound for an empty address
//   - errors returned by an Execute callback are passed through unwrapped
//   - infrastructure failures are wrapped with context
//
// Accounts are never deleted. Scan results are ordered by address bytes.
package store

import (
	"bytes"
	"context"
	"slices"

	"daviz/internal/registry/codec"
	"daviz/pkg/address"
)

// RawAccount is an undecoded account.
type RawAccount struct {
	Address address.Address
	Data    []byte
}

// MutateFunc receives the current account bytes and returns the replacement.
// Returning an error aborts the write.
type MutateFunc func(current []byte) ([]byte, error)

// Store is implemented by every backend.
type Store interface {
	Create(ctx context.Context, addr address.Address, data []byte) error
	Get(ctx context.Context, addr address.Address) ([]byte, error)
	Execute(ctx context.Context, addr address.Address, fn MutateFunc) ([]byte, error)
	Scan(ctx context.Context, disc codec.Discriminator, filters ...codec.Memcmp) ([]RawAccount, error)
}

func matches(data []byte, disc codec.Discriminator, filters []codec.Memcmp) bool {
	if !codec.HasDiscriminator(data, disc) {
		return false
	}
	for _, f := range filters {
		if !f.Matches(data) {
			return false
		}
	}
	return true
}

func sortAccounts(accounts []RawAccount) {
	slices.SortFunc(accounts, func(a, b RawAccount) int {
		return bytes.Compare(a.Address[:], b.Address[:])
	})
}
