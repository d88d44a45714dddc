package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

const secret = "mw-secret"

func token(t *testing.T, subject string, roles ...string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, subject, roles, time.Minute)
	require.NoError(t, err)
	return tok.Token
}

func protected(roles ...string) *echo.Echo {
	e := echo.New()
	mws := []echo.MiddlewareFunc{JWTAuth(secret)}
	if len(roles) > 0 {
		mws = append(mws, RequireRole(roles...))
	}
	e.GET("/p", func(c echo.Context) error {
		return c.String(http.StatusOK, userID(c))
	}, mws...)
	return e
}

func do(e *echo.Echo, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	e := protected()

	rec := do(e, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing bearer token")

	rec = do(e, "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	other, err := utils.NewAccessToken("other", "ann", nil, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(e, other.Token).Code)

	rec = do(e, token(t, "ann"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann", rec.Body.String())
}

func TestRequireRole(t *testing.T) {
	e := protected("admin")
	assert.Equal(t, http.StatusForbidden, do(e, token(t, "ann", "viewer")).Code)
	assert.Equal(t, http.StatusOK, do(e, token(t, "root", "admin")).Code)
	assert.Equal(t, http.StatusOK, do(e, token(t, "ed", "viewer", "admin")).Code)
}

func TestRequireRoleWithoutClaims(t *testing.T) {
	e := echo.New()
	e.GET("/open", func(c echo.Context) error { return c.NoContent(http.StatusOK) }, RequireRole("admin"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserIDGuest(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "guest", userID(c))
}

func TestCacheKeyUsesPrefixAndQuery(t *testing.T) {
	e := echo.New()
	cfg := config.CacheConfig{Prefix: "movies", KeyStrategy: "route_query"}

	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/movies")
		return cacheKey(cfg, c)
	}
	a, b := key("/v1/movies?category=drama"), key("/v1/movies?category=comedy")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, key("/v1/movies?category=drama"))
	assert.Regexp(t, `^movies:[0-9a-f]{40}$`, a)
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`[1]`))
	require.NoError(t, err)

	status, got, body, ok := decodePayload(bs)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, `[1]`, string(body))

	_, _, _, ok = decodePayload([]byte{0, 1})
	assert.False(t, ok)
}

func TestDisabledMiddlewaresPassThrough(t *testing.T) {
	e := echo.New()
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") },
		NewRedisCache(config.CacheConfig{Enabled: true}, nil, zap.NewNop()),
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, zap.NewNop()))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, "ok", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))

	n, err := PurgeCache(context.Background(), nil, config.CacheConfig{Prefix: "movies"})
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestRequestLoggerLevelFollowsStatus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	e := echo.New()
	e.Use(RequestLogger(zap.New(core)))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/missing", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound) })
	e.GET("/denied", func(c echo.Context) error { return echo.ErrUnauthorized })
	e.GET("/boom", func(c echo.Context) error { return errors.New("db down") })

	cases := []struct {
		path   string
		level  zapcore.Level
		status int
		hasErr bool
	}{
		{"/ok", zap.InfoLevel, http.StatusNoContent, false},
		{"/missing", zap.WarnLevel, http.StatusNotFound, true},
		{"/denied", zap.WarnLevel, http.StatusUnauthorized, true},
		{"/boom", zap.ErrorLevel, http.StatusInternalServerError, true},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		assert.Equal(t, tc.status, rec.Code, tc.path)
	}

	entries := logs.All()
	require.Len(t, entries, len(cases))
	for i, tc := range cases {
		ctx := entries[i].ContextMap()
		assert.Equal(t, tc.level, entries[i].Level, tc.path)
		assert.EqualValues(t, tc.status, ctx["status"], tc.path)
		_, hasErr := ctx["error"]
		assert.Equal(t, tc.hasErr, hasErr, tc.path)
	}
}
