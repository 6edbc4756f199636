// Package address implements ledger addresses and the deterministic
// program-address derivation used to locate every registry record.
//
// An Address is 32 bytes. Signer identities are ed25519 public keys and are
// therefore addresses too; derived record addresses are guaranteed to lie off
// the ed25519 curve so no private key can ever sign for them.
package address

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

// Size is the byte length of an address.
const Size = 32

// Address identifies an account on the ledger. The text form is base58.
type Address [Size]byte

// Zero is the all-zero address.
var Zero Address

var ErrInvalidAddress = errors.New("invalid address")

// Parse decodes a base58 address.
func Parse(s string) (Address, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return FromBytes(raw)
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBytes copies a 32-byte slice into an Address.
func FromBytes(b []byte) (Address, error) {
	if len(b) != Size {
		return Zero, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidAddress, Size, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// FromPublicKey converts an ed25519 public key into its address.
func FromPublicKey(pub ed25519.PublicKey) (Address, error) {
	return FromBytes(pub)
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, a[:])
	return out
}

func (a Address) IsZero() bool {
	return a == Zero
}

func (a Address) Equal(other Address) bool {
	return bytes.Equal(a[:], other[:])
}

// PublicKey views the address as an ed25519 public key. Only meaningful for
// signer identities; derived addresses have no corresponding private key.
func (a Address) PublicKey() ed25519.PublicKey {
	return ed25519.PublicKey(a.Bytes())
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
