package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
)

const corsMaxAgeSeconds = 600

// CORS admits the configured browser origins. With no origins configured
// cross-origin requests are refused.
func CORS(allowedOrigins []string) echo.MiddlewareFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", echo.HeaderXRequestID, csrfHeaderName},
		ExposedHeaders:   []string{echo.HeaderXRequestID, csrfHeaderName, headerRateLimitRemaining},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeSeconds,
	})

	return echo.WrapMiddleware(c.Handler)
}
