package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// imgSources must admit signed object storage URLs, which live on another
// host.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' data: blob: https:",
	"media-src 'self' blob: https:",
	"font-src 'self'",
	"connect-src 'self'",
	"frame-ancestors 'none'",
	"base-uri 'self'",
	"form-action 'self'",
}, "; ")

var securityHeaders = map[string]string{
	"Content-Security-Policy":   contentSecurityPolicy,
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	"X-Content-Type-Options":    "nosniff",
	"X-Frame-Options":           "DENY",
	"Referrer-Policy":           "no-referrer",
	"Permissions-Policy":        "geolocation=(), microphone=(), camera=(), payment=(), usb=()",
}

// SecurityHeaders sets the fixed response headers. Referrer-Policy is
// no-referrer because share links carry the token in the URL.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			for name, value := range securityHeaders {
				header.Set(name, value)
			}
			header.Del(echo.HeaderServer)

			return next(c)
		}
	}
}
