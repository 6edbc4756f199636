package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "daviz/pkg/domain-errors"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "internal_error", body["error"])
		assert.NotContains(t, body, "error_description")
	})

	t.Run("uncoded error is internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("validation includes field and reason", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.NewValidation("name", dErrors.ReasonFieldTooLong, "name too long"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "validation_error", body["error"])
		assert.Equal(t, "name", body["field"])
		assert.Equal(t, "FieldTooLong", body["reason"])
		assert.Equal(t, "name too long", body["error_description"])
	})
}

func TestStatusFor(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeValidation:      http.StatusBadRequest,
		dErrors.CodeBadRequest:      http.StatusBadRequest,
		dErrors.CodeUnauthenticated: http.StatusUnauthorized,
		dErrors.CodeUnauthorized:    http.StatusForbidden,
		dErrors.CodeNotFound:        http.StatusNotFound,
		dErrors.CodeAddressInUse:    http.StatusConflict,
		dErrors.CodeInvalidState:    http.StatusConflict,
		dErrors.CodeInternal:        http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusFor(code), code)
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(req, &dst))
	assert.Equal(t, "x", dst.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"other":1}`))
	assert.True(t, dErrors.HasCode(DecodeJSON(req, &dst), dErrors.CodeBadRequest))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.True(t, dErrors.HasCode(DecodeJSON(req, &dst), dErrors.CodeBadRequest))
}
