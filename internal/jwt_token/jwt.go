// Package jwttoken issues and verifies signer tokens: short-lived JWTs signed
// with EdDSA by the signer's own ed25519 key. The subject is the base58 public
// key, so verification needs no key registry.
package jwttoken

import (
	"crypto/ed25519"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"daviz/pkg/address"
	dErrors "daviz/pkg/domain-errors"
)

const DefaultAudience = "daviz"

// Claims are the registered claims of a signer token. Subject carries the
// signer address.
type Claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for the key pair owning priv.
func Issue(priv ed25519.PrivateKey, audience string, now time.Time, expiresIn time.Duration) (string, error) {
	signer, err := address.FromPublicKey(priv.Public().(ed25519.PublicKey))
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   signer.String(),
			Audience:  []string{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(priv)
}

// Verifier checks signer tokens for one audience.
type Verifier struct {
	audience string
	leeway   time.Duration
	now      func() time.Time
}

type VerifierOption func(*Verifier)

func WithLeeway(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		v.leeway = d
	}
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

func NewVerifier(audience string, opts ...VerifierOption) *Verifier {
	v := &Verifier{audience: audience, leeway: 30 * time.Second, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateToken verifies the signature against the subject's key and returns
// the signer address.
func (v *Verifier) ValidateToken(tokenString string) (address.Address, error) {
	var signer address.Address
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		claims, ok := token.Claims.(*Claims)
		if !ok {
			return nil, jwt.ErrTokenInvalidClaims
		}
		addr, err := address.Parse(claims.Subject)
		if err != nil {
			return nil, jwt.ErrTokenInvalidSubject
		}
		signer = addr
		return addr.PublicKey(), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithAudience(v.audience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return address.Address{}, dErrors.New(dErrors.CodeUnauthenticated, "token has expired")
		}
		return address.Address{}, dErrors.Wrap(err, dErrors.CodeUnauthenticated, "invalid token")
	}
	if !parsed.Valid {
		return address.Address{}, dErrors.New(dErrors.CodeUnauthenticated, "invalid token")
	}
	return signer, nil
}
