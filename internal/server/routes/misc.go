package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

func RegisterMisc(injector *do.Injector, e *echo.Echo) {
	e.GET("/api/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}

// RegisterAuth reserves the sign-in endpoints. Identity is taken from the
// X-User-Id header until a provider is wired in.
func RegisterAuth(injector *do.Injector, e *echo.Echo) {
	notImplemented := func(c echo.Context) error {
		return errorJSON(c, http.StatusNotImplemented, CodeNotImplemented, "not implemented")
	}
	auth := e.Group("/api/auth")
	for _, provider := range []string{"/github", "/google"} {
		auth.GET(provider, notImplemented)
		auth.POST(provider, notImplemented)
	}
	auth.Any("/email/*", notImplemented)
}
