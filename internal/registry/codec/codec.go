// Package codec defines the persisted account layout of registry records.
//
// Every account begins with an 8-byte type discriminator followed by the record
// fields in declaration order: little-endian integers, u32-length-prefixed
// strings and vectors, a one-byte tag for optional values, one byte for bools
// and enum indices. Filtered reads compare bytes at fixed offsets, so the
// fixed-width fields preceding a filtered field must not be reordered.
package codec

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"daviz/internal/registry/models"
	"daviz/pkg/address"
)

// DiscriminatorSize is the length of the type tag at the start of every account.
const DiscriminatorSize = 8

// Discriminator tags an account with its record type.
type Discriminator [DiscriminatorSize]byte

func discriminatorFor(name string) Discriminator {
	sum := sha256.Sum256([]byte("account:" + name))
	var d Discriminator
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

var (
	FrameworkDiscriminator    = discriminatorFor("TrustFramework")
	AssetProfileDiscriminator = discriminatorFor("AssetProfile")
	TrustRecordDiscriminator  = discriminatorFor("TrustRecord")
)

// Filter offsets. Each is the discriminator plus the fixed-width fields that
// precede the filtered field.
const (
	FrameworkAuthorityOffset   = DiscriminatorSize
	AssetProfileOwnerOffset    = DiscriminatorSize
	TrustRecordFrameworkOffset = DiscriminatorSize
	TrustRecordIssuerOffset    = TrustRecordFrameworkOffset + address.Size
	TrustRecordAssetOffset     = TrustRecordIssuerOffset + address.Size
)

var (
	ErrDiscriminatorMismatch = errors.New("codec: discriminator mismatch")
	ErrShortBuffer           = errors.New("codec: unexpected end of data")
	ErrInvalidEncoding       = errors.New("codec: invalid encoding")
)

// Memcmp matches accounts whose bytes at Offset equal Bytes.
type Memcmp struct {
	Offset int
	Bytes  []byte
}

func (m Memcmp) Matches(data []byte) bool {
	end := m.Offset + len(m.Bytes)
	if m.Offset < 0 || end > len(data) {
		return false
	}
	return bytes.Equal(data[m.Offset:end], m.Bytes)
}

// AddressFilter builds a memcmp filter comparing an address at offset.
func AddressFilter(offset int, a address.Address) Memcmp {
	return Memcmp{Offset: offset, Bytes: a.Bytes()}
}

// HasDiscriminator reports whether data is tagged with d.
func HasDiscriminator(data []byte, d Discriminator) bool {
	return len(data) >= DiscriminatorSize && bytes.Equal(data[:DiscriminatorSize], d[:])
}

// -----------------------------------------------------------------------------
// Framework
// -----------------------------------------------------------------------------

func EncodeFramework(f *models.Framework) ([]byte, error) {
	w := newWriter(FrameworkDiscriminator)
	w.address(f.Authority)
	w.u64(f.FrameworkID)
	w.str(f.Name)
	w.str(f.Description)
	if err := w.strVec(f.Criteria); err != nil {
		return nil, err
	}
	w.boolean(f.IsActive)
	w.i64(f.CreatedAt)
	w.u8(f.Bump)
	return w.bytes(), w.err
}

func DecodeFramework(data []byte) (*models.Framework, error) {
	r, err := newReader(data, FrameworkDiscriminator)
	if err != nil {
		return nil, err
	}
	f := &models.Framework{}
	f.Authority = r.address()
	f.FrameworkID = r.u64()
	f.Name = r.str()
	f.Description = r.str()
	f.Criteria = r.strVec()
	f.IsActive = r.boolean()
	f.CreatedAt = r.i64()
	f.Bump = r.u8()
	if r.err != nil {
		return nil, fmt.Errorf("decode framework: %w", r.err)
	}
	return f, nil
}

// -----------------------------------------------------------------------------
// AssetProfile
// -----------------------------------------------------------------------------

func EncodeAssetProfile(a *models.AssetProfile) ([]byte, error) {
	if !a.AssetType.IsValid() {
		return nil, fmt.Errorf("%w: asset type %d", ErrInvalidEncoding, a.AssetType)
	}
	w := newWriter(AssetProfileDiscriminator)
	w.address(a.Owner)
	w.u64(a.AssetID)
	w.str(a.Name)
	w.str(a.Description)
	w.u8(uint8(a.AssetType))
	w.optStr(a.MetadataURI)
	w.boolean(a.IsActive)
	w.i64(a.CreatedAt)
	w.u8(a.Bump)
	return w.bytes(), w.err
}

func DecodeAssetProfile(data []byte) (*models.AssetProfile, error) {
	r, err := newReader(data, AssetProfileDiscriminator)
	if err != nil {
		return nil, err
	}
	a := &models.AssetProfile{}
	a.Owner = r.address()
	a.AssetID = r.u64()
	a.Name = r.str()
	a.Description = r.str()
	a.AssetType = models.AssetType(r.u8())
	a.MetadataURI = r.optStr()
	a.IsActive = r.boolean()
	a.CreatedAt = r.i64()
	a.Bump = r.u8()
	if r.err != nil {
		return nil, fmt.Errorf("decode asset profile: %w", r.err)
	}
	if !a.AssetType.IsValid() {
		return nil, fmt.Errorf("decode asset profile: %w: asset type %d", ErrInvalidEncoding, a.AssetType)
	}
	return a, nil
}

// -----------------------------------------------------------------------------
// TrustRecord
// -----------------------------------------------------------------------------

func EncodeTrustRecord(t *models.TrustRecord) ([]byte, error) {
	w := newWriter(TrustRecordDiscriminator)
	w.address(t.Framework)
	w.address(t.Issuer)
	w.address(t.TargetAsset)
	w.u8(t.TrustScore)
	w.str(t.Evidence)
	w.boolean(t.IsActive)
	w.i64(t.IssuedAt)
	w.optI64(t.ExpiresAt)
	w.u8(t.Bump)
	return w.bytes(), w.err
}

func DecodeTrustRecord(data []byte) (*models.TrustRecord, error) {
	r, err := newReader(data, TrustRecordDiscriminator)
	if err != nil {
		return nil, err
	}
	t := &models.TrustRecord{}
	t.Framework = r.address()
	t.Issuer = r.address()
	t.TargetAsset = r.address()
	t.TrustScore = r.u8()
	t.Evidence = r.str()
	t.IsActive = r.boolean()
	t.IssuedAt = r.i64()
	t.ExpiresAt = r.optI64()
	t.Bump = r.u8()
	if r.err != nil {
		return nil, fmt.Errorf("decode trust record: %w", r.err)
	}
	return t, nil
}

// -----------------------------------------------------------------------------
// primitives
// -----------------------------------------------------------------------------

type writer struct {
	buf bytes.Buffer
	err error
}

func newWriter(d Discriminator) *writer {
	w := &writer{}
	w.buf.Write(d[:])
	return w
}

func (w *writer) bytes() []byte { return w.buf.Bytes() }

func (w *writer) address(a address.Address) { w.buf.Write(a[:]) }

func (w *writer) u8(v uint8) { w.buf.WriteByte(v) }

func (w *writer) boolean(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

func (w *writer) u32(v uint32) {
	w.buf.Write(binary.LittleEndian.AppendUint32(nil, v))
}

func (w *writer) u64(v uint64) {
	w.buf.Write(binary.LittleEndian.AppendUint64(nil, v))
}

func (w *writer) i64(v int64) { w.u64(uint64(v)) }

func (w *writer) str(s string) {
	if uint64(len(s)) > math.MaxUint32 {
		w.err = fmt.Errorf("%w: string too long", ErrInvalidEncoding)
		return
	}
	w.u32(uint32(len(s)))
	w.buf.WriteString(s)
}

func (w *writer) strVec(v []string) error {
	if uint64(len(v)) > math.MaxUint32 {
		return fmt.Errorf("%w: vector too long", ErrInvalidEncoding)
	}
	w.u32(uint32(len(v)))
	for _, s := range v {
		w.str(s)
	}
	return w.err
}

func (w *writer) optStr(s *string) {
	if s == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.str(*s)
}

func (w *writer) optI64(v *int64) {
	if v == nil {
		w.u8(0)
		return
	}
	w.u8(1)
	w.i64(*v)
}

// reader records the first error and returns zero values afterwards, so decode
// functions check r.err once at the end.
type reader struct {
	data []byte
	pos  int
	err  error
}

func newReader(data []byte, d Discriminator) (*reader, error) {
	if !HasDiscriminator(data, d) {
		return nil, ErrDiscriminatorMismatch
	}
	return &reader{data: data, pos: DiscriminatorSize}, nil
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.err = ErrShortBuffer
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) address() address.Address {
	var a address.Address
	copy(a[:], r.take(address.Size))
	return a
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) boolean() bool {
	switch v := r.u8(); v {
	case 0:
		return false
	case 1:
		return true
	default:
		if r.err == nil {
			r.err = fmt.Errorf("%w: bool byte %d", ErrInvalidEncoding, v)
		}
		return false
	}
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *reader) i64() int64 { return int64(r.u64()) }

func (r *reader) str() string {
	n := r.u32()
	return string(r.take(int(n)))
}

func (r *reader) strVec() []string {
	n := r.u32()
	if r.err != nil {
		return nil
	}
	// each element needs at least its 4-byte length prefix
	if int(n) > (len(r.data)-r.pos)/4 {
		r.err = ErrShortBuffer
		return nil
	}
	out := make([]string, 0, n)
	for i := uint32(0); i < n; i++ {
		out = append(out, r.str())
	}
	return out
}

func (r *reader) option() bool {
	switch tag := r.u8(); tag {
	case 0:
		return false
	case 1:
		return true
	default:
		if r.err == nil {
			r.err = fmt.Errorf("%w: option tag %d", ErrInvalidEncoding, tag)
		}
		return false
	}
}

func (r *reader) optStr() *string {
	if !r.option() {
		return nil
	}
	s := r.str()
	if r.err != nil {
		return nil
	}
	return &s
}

func (r *reader) optI64() *int64 {
	if !r.option() {
		return nil
	}
	v := r.i64()
	if r.err != nil {
		return nil
	}
	return &v
}
