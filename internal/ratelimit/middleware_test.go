package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"daviz/pkg/requestcontext"
)

type failingBuckets struct{}

func (failingBuckets) Allow(context.Context, string, Limit) (*Result, error) {
	return nil, errors.New("redis down")
}

func serve(h http.Handler, method, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/frameworks", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPerIPSeparatesReadAndWriteBudgets(t *testing.T) {
	mw := New(NewInMemoryBuckets(), map[Class]Limit{
		ClassRead:  {Requests: 2, Window: time.Minute},
		ClassWrite: {Requests: 1, Window: time.Minute},
	}, nil)
	h := mw.PerIP(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "10.0.0.1").Code)
	rec := serve(h, http.MethodPost, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodPost, "10.0.0.2").Code, "other clients keep their budget")
}

func TestPerIPFailsOpen(t *testing.T) {
	mw := New(failingBuckets{}, map[Class]Limit{ClassRead: {Requests: 1, Window: time.Minute}}, nil)
	h := mw.PerIP(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	assert.Equal(t, http.StatusNoContent, serve(h, http.MethodGet, "10.0.0.1").Code)
}
