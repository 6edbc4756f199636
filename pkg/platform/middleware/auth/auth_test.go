package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"daviz/pkg/address"
	"daviz/pkg/requestcontext"
)

type stubVerifier struct {
	signer address.Address
	err    error
}

func (v stubVerifier) ValidateToken(string) (address.Address, error) {
	return v.signer, v.err
}

func run(verifier SignerVerifier, authorization string) (*httptest.ResponseRecorder, address.Address, bool) {
	var got address.Address
	var called bool
	h := RequireSigner(verifier, slog.New(slog.NewTextHandler(io.Discard, nil)))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			got, _ = requestcontext.Signer(r.Context())
		}))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got, called
}

func TestRequireSigner(t *testing.T) {
	signer := address.MustParse("B1EzQtkQo1o3dthdo1XHfc3R8qa4zLwxEwp8ATAW2sDS")

	t.Run("valid token sets signer", func(t *testing.T) {
		_, got, called := run(stubVerifier{signer: signer}, "Bearer tok")
		assert.True(t, called)
		assert.Equal(t, signer, got)
	})

	t.Run("missing header", func(t *testing.T) {
		rec, _, called := run(stubVerifier{signer: signer}, "")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthenticated","error_description":"Missing or invalid Authorization header"}`, rec.Body.String())
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec, _, called := run(stubVerifier{signer: signer}, "Basic abc")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec, _, called := run(stubVerifier{err: errors.New("bad signature")}, "Bearer tok")
		assert.False(t, called)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
