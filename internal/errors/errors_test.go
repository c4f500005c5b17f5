package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError(t *testing.T) {
	err := New(http.StatusBadRequest, "INVALID_REQUEST", "bad input")
	assert.Equal(t, "bad input", err.Error())
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	assert.Equal(t, "INVALID_REQUEST", err.ErrorCode)

	withDetails := NewWithDetails(http.StatusNotFound, "STORE_NOT_FOUND", "store not found", "009")
	assert.Equal(t, "009", withDetails.Details)
}

func TestErrValidation(t *testing.T) {
	err := ErrValidation("days_in_month", "must be between 1 and 31")
	assert.Equal(t, http.StatusBadRequest, err.StatusCode)
	detail, ok := err.Details.(ValidationError)
	require.True(t, ok)
	assert.Equal(t, "days_in_month", detail.Field)
}

func TestProblemDetailsMarshal(t *testing.T) {
	pd := NewProblemDetails(http.StatusNotFound, TypeStoreNotFound, "Not Found", "store 009 not found", "/api/v1/stores/009")
	pd.WithExtension("trace_id", "abc-123")

	data, err := json.Marshal(pd)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, TypeStoreNotFound, decoded["type"])
	assert.Equal(t, float64(http.StatusNotFound), decoded["status"])
	assert.Equal(t, "abc-123", decoded["trace_id"])
	assert.Equal(t, "store 009 not found", decoded["detail"])
}

func TestErrorHandlerHandleError(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)

	t.Run("api error maps to its problem type", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/jobs/unknown", nil)

		h.HandleError(w, r, ErrJobNotFound)

		assert.Equal(t, http.StatusNotFound, w.Code)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
		assert.Equal(t, TypeJobNotFound, decoded["type"])
		assert.Equal(t, "JOB_NOT_FOUND", decoded["error_code"])
	})

	t.Run("unknown error becomes internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/v1/calculate", nil)

		h.HandleError(w, r, fmt.Errorf("boom"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var decoded map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
		assert.Equal(t, TypeInternal, decoded["type"])
	})

	t.Run("queue full maps to service unavailable", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil)

		h.HandleError(w, r, fmt.Errorf("job queue is full"))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		h.HandleError(w, r, nil)
		assert.Empty(t, w.Body.Bytes())
	})
}

func TestErrorHandlerNotFound(t *testing.T) {
	h := NewErrorHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/nope", nil)

	h.NotFound(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), TypeNotFound)
}
