package address

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"filippo.io/edwards25519"
)

const (
	// MaxSeeds bounds the number of seeds in one derivation.
	MaxSeeds = 16
	// MaxSeedLen bounds the length of each seed.
	MaxSeedLen = 32

	derivationMarker = "ProgramDerivedAddress"
)

// Namespaces used by the registry. They are part of every record address and
// must never change.
const (
	NamespaceFramework    = "trust_framework"
	NamespaceAssetProfile = "asset_profile"
	NamespaceTrustRecord  = "trust_record"
)

// DefaultProgramID is the registry program that owns every derived address.
var DefaultProgramID = MustParse("B1EzQtkQo1o3dthdo1XHfc3R8qa4zLwxEwp8ATAW2sDS")

var (
	ErrMaxSeedsExceeded   = errors.New("address: too many seeds")
	ErrMaxSeedLenExceeded = errors.New("address: seed too long")
	ErrNoViableBump       = errors.New("address: unable to find a viable bump")
	ErrOnCurve            = errors.New("address: derived address lies on the ed25519 curve")
)

// CreateProgramAddress hashes seeds with the program id. It fails with
// ErrOnCurve when the result is a valid ed25519 point.
func CreateProgramAddress(seeds [][]byte, program Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Zero, ErrMaxSeedsExceeded
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Zero, ErrMaxSeedLenExceeded
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(derivationMarker))

	var out Address
	copy(out[:], h.Sum(nil))
	if IsOnCurve(out) {
		return Zero, ErrOnCurve
	}
	return out, nil
}

// FindProgramAddress searches bumps from 255 down to 0 and returns the first
// off-curve address together with the bump that produced it.
func FindProgramAddress(seeds [][]byte, program Address) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		// one slot is reserved for the bump
		return Zero, 0, ErrMaxSeedsExceeded
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := 255; bump >= 0; bump-- {
		withBump[len(seeds)] = []byte{byte(bump)}
		addr, err := CreateProgramAddress(withBump, program)
		if err == nil {
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Zero, 0, err
		}
	}
	return Zero, 0, ErrNoViableBump
}

// IsOnCurve reports whether the 32 bytes decode to a valid ed25519 point.
func IsOnCurve(a Address) bool {
	_, err := new(edwards25519.Point).SetBytes(a[:])
	return err == nil
}

// U64Seed encodes an identifier as 8 little-endian bytes.
func U64Seed(v uint64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return b
}

// Derived is the result of a derivation: the record address and its bump.
type Derived struct {
	Address Address
	Bump    uint8
}

// Deriver computes registry addresses for one program id. It holds no state
// besides the program id and is safe for concurrent use.
type Deriver struct {
	program Address
}

func NewDeriver(program Address) Deriver {
	return Deriver{program: program}
}

func (d Deriver) Program() Address {
	return d.program
}

// Derive maps (namespace, parts...) to an address.
func (d Deriver) Derive(namespace string, parts ...[]byte) (Derived, error) {
	seeds := make([][]byte, 0, len(parts)+1)
	seeds = append(seeds, []byte(namespace))
	seeds = append(seeds, parts...)
	addr, bump, err := FindProgramAddress(seeds, d.program)
	if err != nil {
		return Derived{}, err
	}
	return Derived{Address: addr, Bump: bump}, nil
}

// Framework derives ("trust_framework", authority, frameworkID).
func (d Deriver) Framework(authority Address, frameworkID uint64) (Derived, error) {
	return d.Derive(NamespaceFramework, authority[:], U64Seed(frameworkID))
}

// AssetProfile derives ("asset_profile", owner, assetID).
func (d Deriver) AssetProfile(owner Address, assetID uint64) (Derived, error) {
	return d.Derive(NamespaceAssetProfile, owner[:], U64Seed(assetID))
}

// TrustRecord derives ("trust_record", framework, issuer, asset).
func (d Deriver) TrustRecord(framework, issuer, asset Address) (Derived, error) {
	return d.Derive(NamespaceTrustRecord, framework[:], issuer[:], asset[:])
}
