package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docflow/internal/classifier/registry"
)

const opsTestConfig = `{
  "detectors": [
    {"name": "lease_header_detector", "impl": "lease_header", "description": "", "output_type": "docType"},
    {"name": "jurisdiction_detector", "impl": "jurisdiction", "description": "", "output_type": "jurisdiction"}
  ]
}`

type staticHealth struct{ err error }

func (s staticHealth) Health(context.Context) error { return s.err }

func newOpsRouter(t *testing.T, healthErr error) http.Handler {
	t.Helper()
	reg, err := registry.Parse([]byte(opsTestConfig))
	require.NoError(t, err)
	return NewRouter(reg, staticHealth{err: healthErr})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newOpsRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyz(t *testing.T) {
	t.Run("ready when store reachable", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newOpsRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unavailable when store down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		newOpsRouter(t, errors.New("dial refused")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestDetectorsListing(t *testing.T) {
	rec := httptest.NewRecorder()
	newOpsRouter(t, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/detectors", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []struct {
		Name       string `json:"name"`
		OutputType string `json:"outputType"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "lease_header_detector", entries[0].Name)
	assert.Equal(t, "docType", entries[0].OutputType)
	assert.Equal(t, "jurisdiction_detector", entries[1].Name)
}
