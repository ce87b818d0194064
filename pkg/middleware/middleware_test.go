package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilestudio/site/pkg/logger"
)

const testSecret = "test-secret"

func discard() *slog.Logger {
	return slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func signToken(t *testing.T, secret, scope string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "cms-webhook",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error.Code
}

func TestJWTAuth(t *testing.T) {
	future := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + signToken(t, "other", "catalog:revalidate", future), http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, "catalog:revalidate", time.Now().Add(-time.Minute)), http.StatusUnauthorized},
		{"missing scope", "Bearer " + signToken(t, testSecret, "catalog:read", future), http.StatusForbidden},
		{"valid", "Bearer " + signToken(t, testSecret, "catalog:read catalog:revalidate", future), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/revalidate", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			JWTAuth(testSecret, "catalog:revalidate", discard())(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestJWTAuth_RejectsOtherAlgorithms(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	JWTAuth(testSecret, "", discard())(okHandler()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, rec))
}

func TestJWTAuth_StoresSubject(t *testing.T) {
	var subject, logged string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
		logged = logger.SubjectFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "", time.Now().Add(time.Hour)))
	JWTAuth(testSecret, "", discard())(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "cms-webhook", subject)
	assert.Equal(t, "cms-webhook", logged)
}

func TestRateLimit_PerClient(t *testing.T) {
	store := newVisitorStore(1, 2, time.Minute)
	h := rateLimit(store, discard())(okHandler())

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
	assert.Equal(t, 2, store.len())
}

func TestRateLimit_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mw := RateLimit(ctx, 5, 5, discard())
	cancel()

	rec := httptest.NewRecorder()
	mw(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVisitorStore_Cleanup(t *testing.T) {
	now := time.Now()
	store := newVisitorStore(1, 1, time.Minute)
	store.nowFunc = func() time.Time { return now }

	store.getVisitor("10.0.0.1")
	now = now.Add(2 * time.Minute)
	store.getVisitor("10.0.0.2")
	store.cleanup()

	assert.Equal(t, 1, store.len())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", clientIP(req))

	req.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", clientIP(req))
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	h := Recovery(l)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("template exploded")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
	assert.Contains(t, buf.String(), "template exploded")
}

func TestRequestLogging_CorrelationID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	h := RequestLogging(slog.New(slog.NewJSONHandler(&buf, nil)))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logger.CorrelationIDFromContext(r.Context())
		w.WriteHeader(http.StatusAccepted)
	}))

	req := httptest.NewRequest(http.MethodGet, "/products?finish=matt", nil)
	req.Header.Set("X-Correlation-ID", "corr-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "corr-42", seen)
	assert.Equal(t, "corr-42", rec.Header().Get("X-Correlation-ID"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.EqualValues(t, http.StatusAccepted, line["status"])
	assert.Equal(t, "finish=matt", line["query"])
}

func TestRequestLogging_GeneratesCorrelationID(t *testing.T) {
	rec := httptest.NewRecorder()
	RequestLogging(discard())(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, rec.Header().Get("X-Correlation-ID"), 36)
}

func TestRequestLogger_EnrichesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logger.NewWithWriter("site", "info", &buf)

	h := RequestLogger(base)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		logger.FromContext(r.Context()).Info("inside")
	}))

	ctx := logger.WithCorrelationID(context.Background(), "corr-7")
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "corr-7", line["correlation_id"])
}

func TestCacheControl(t *testing.T) {
	h := CacheControl(60)(okHandler())

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.Equal(t, "public, max-age=60, stale-while-revalidate=60", get.Header().Get("Cache-Control"))

	post := httptest.NewRecorder()
	h.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/contact", nil))
	assert.Empty(t, post.Header().Get("Cache-Control"))

	noStore := httptest.NewRecorder()
	NoStore(okHandler()).ServeHTTP(noStore, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, "no-store", noStore.Header().Get("Cache-Control"))
}

func TestCORS(t *testing.T) {
	h := CORS(CORSConfig{AllowedOrigins: []string{"https://tiles.example"}})(okHandler())

	allowed := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	allowed.Header.Set("Origin", "https://tiles.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, allowed)
	assert.Equal(t, "https://tiles.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	other := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	other.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	preflight := httptest.NewRequest(http.MethodOptions, "/api/v1/contact", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, preflight)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_Wildcard(t *testing.T) {
	rec := httptest.NewRecorder()
	CORS(DefaultCORSConfig())(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
