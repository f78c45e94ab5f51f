package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/labstack/echo/v4"
)

func TestLimiterRefills(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiter(2, 1)
	l.now = func() time.Time { return now }

	assert.Equal(t, l.Allow("a"), true)
	assert.Equal(t, l.Allow("a"), true)
	assert.Equal(t, l.Allow("a"), false)
	// keys are independent
	assert.Equal(t, l.Allow("b"), true)

	now = now.Add(time.Second)
	assert.Equal(t, l.Allow("a"), true)
	assert.Equal(t, l.Allow("a"), false)
}

func TestRateLimitMiddleware(t *testing.T) {
	e := echo.New()
	e.Use(RateLimit(NewLimiter(1, 0)))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, rec.Code, http.StatusOK)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, rec.Code, http.StatusTooManyRequests)
}
