package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsRequestsByRoute(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/events/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/boom", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusTeapot, "short and stout")
	})

	for _, path := range []string{"/api/events/1", "/api/events/2", "/boom"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/events/:id", "204")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/boom", "418")))
}

func TestMiddleware_HandlesPlainErrors(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/fail", func(c echo.Context) error {
		return errors.New("kaput")
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/fail", "500")))
}

func TestDomainCounters(t *testing.T) {
	m := New()

	m.ObserveTransition("IN_REVIEW", "FINAL_APPROVED", "applied")
	m.ObserveTransition("IN_REVIEW", "FINAL_APPROVED", "applied")
	m.ObserveTokenValidation("TOKEN_EXPIRED")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("IN_REVIEW", "FINAL_APPROVED", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tokenValidations.WithLabelValues("TOKEN_EXPIRED")))
}

func TestRegisterMetricsRoute(t *testing.T) {
	m := New()
	m.ObserveTokenValidation("ok")

	e := echo.New()
	m.RegisterMetricsRoute(e)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, MetricsPath, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "mediaflow_share_token_validations_total"))
}
