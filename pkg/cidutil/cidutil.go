// Package cidutil computes content identifiers for evidence text so clients can
// pin or cross-reference the exact bytes a trust record was issued against.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// CIDv1RawSHA256 returns a CIDv1 string using the "raw" multicodec
// and a sha2-256 multihash.
func CIDv1RawSHA256(data []byte) string {
	c, err := CIDv1RawSHA256CID(data)
	if err != nil {
		// sha2-256 with default length cannot fail
		return ""
	}
	return c.String()
}

// CIDv1RawSHA256CID returns a CIDv1 (raw + sha2-256) derived from data.
func CIDv1RawSHA256CID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// EvidenceCID is the CID of evidence text, or "" for empty evidence.
func EvidenceCID(evidence string) string {
	if evidence == "" {
		return ""
	}
	return CIDv1RawSHA256([]byte(evidence))
}

// Verify reports whether s is the CID of data.
func Verify(s string, data []byte) bool {
	parsed, err := cid.Decode(s)
	if err != nil {
		return false
	}
	want, err := CIDv1RawSHA256CID(data)
	if err != nil {
		return false
	}
	return parsed.Equals(want)
}
