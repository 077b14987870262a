package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimitMiddleware(t *testing.T) {
	// 60 req/min with burst 2: the third immediate request must be rejected
	rl := NewRateLimiter(60, 2)
	e := echo.New()
	handler := rl.RateLimitMiddleware()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/graphql", nil)
		req.Header.Set("X-Real-Ip", ip)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, handler(c))
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("1.2.3.4"))
	assert.Equal(t, http.StatusOK, do("1.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, do("1.2.3.4"))

	// Another IP has its own bucket
	assert.Equal(t, http.StatusOK, do("5.6.7.8"))
}
