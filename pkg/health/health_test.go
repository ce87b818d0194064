package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func ready(t *testing.T, h *Handler) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLivenessHandler(t *testing.T) {
	h := NewHandler()
	h.Register("db", down)

	rec := httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestReadiness(t *testing.T) {
	tests := []struct {
		name     string
		critical map[string]Checker
		optional map[string]Checker
		code     int
		status   Status
	}{
		{"no checks", nil, nil, http.StatusOK, StatusUp},
		{"all up", map[string]Checker{"postgres": up}, map[string]Checker{"cms": up}, http.StatusOK, StatusUp},
		{"optional down", map[string]Checker{"postgres": up}, map[string]Checker{"cms": down}, http.StatusOK, StatusDegraded},
		{"critical down", map[string]Checker{"postgres": down}, map[string]Checker{"cms": up}, http.StatusServiceUnavailable, StatusDown},
		{"both down", map[string]Checker{"postgres": down}, map[string]Checker{"cms": down}, http.StatusServiceUnavailable, StatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler()
			for name, fn := range tt.critical {
				h.Register(name, fn)
			}
			for name, fn := range tt.optional {
				h.RegisterNonCritical(name, fn)
			}

			code, resp := ready(t, h)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.status, resp.Status)
			assert.Len(t, resp.Checks, len(tt.critical)+len(tt.optional))
		})
	}
}

func TestReadiness_ReportsErrors(t *testing.T) {
	h := NewHandler()
	h.RegisterNonCritical("redis", down)

	_, resp := ready(t, h)
	assert.Equal(t, CheckResult{Status: StatusDown, Critical: false, Error: "connection refused"}, resp.Checks["redis"])
}

func TestRegister_Overwrites(t *testing.T) {
	h := NewHandler()
	h.Register("cms", down)
	h.RegisterNonCritical("cms", up)

	code, resp := ready(t, h)
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, resp.Checks["cms"].Critical)
}
