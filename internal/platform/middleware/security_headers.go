package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets response headers for a JSON API that serves patient
// records and study data to a browser front end.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			// Prevent MIME type sniffing of JSON and CSV bodies
			h.Set("X-Content-Type-Options", "nosniff")

			// The API is never framed by the dashboard
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-XSS-Protection", "0")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// Patient records, tokens and exports must not be stored by
			// browsers or shared proxies.
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")

			// Exports are attachments; keep the browser from rendering them inline
			if strings.Contains(c.Request().URL.Path, "/export") {
				h.Set("X-Download-Options", "noopen")
			}

			return next(c)
		}
	}
}
