package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestFromContext(t *testing.T) {
	fallback := zap.NewExample()
	scoped := zap.NewExample().With(zap.String("command", "checkout"))

	assert.Same(t, fallback, FromContext(context.Background(), fallback))
	assert.Same(t, scoped, FromContext(WithContext(context.Background(), scoped), fallback))
	assert.Same(t, GetLogger(), FromContext(context.Background(), nil))
}

func TestFromEchoUsesMiddlewareLogger(t *testing.T) {
	e := echo.New()
	var got *zap.Logger
	e.Use(Middleware(zap.NewNop()))
	e.GET("/", func(c echo.Context) error {
		got = FromEcho(c)
		assert.Same(t, got, FromContext(c.Request().Context(), nil))
		return c.NoContent(http.StatusOK)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, got)
}
