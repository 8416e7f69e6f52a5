package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRequestContextFallback(t *testing.T) {
	require.Equal(t, context.Background(), requestContext(nil))
	require.Equal(t, context.Background(), requestContext(&gin.Context{}))

	type ctxKey struct{}
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil).
		WithContext(context.WithValue(context.Background(), ctxKey{}, "v"))
	require.Equal(t, "v", requestContext(c).Value(ctxKey{}))
}

func TestParseIntQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := map[string]int{
		"/blogs":              10,
		"/blogs?page=3":       3,
		"/blogs?page=+4":      4,
		"/blogs?page=%20":     10,
		"/blogs?page=abc":     10,
		"/blogs?page=-2":      -2,
		"/blogs?page=2&page=": 2,
	}
	for target, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, target, nil)
		require.Equal(t, want, parseIntQuery(c, "page", 10), target)
	}
}
