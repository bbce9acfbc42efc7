package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHTTPMetrics_CountsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/studies/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound, "Study not found")
		}
		return c.String(http.StatusOK, "ok")
	})

	for _, id := range []string{"1", "2", "missing"} {
		req := httptest.NewRequest(http.MethodGet, "/api/studies/"+id, nil)
		e.ServeHTTP(httptest.NewRecorder(), req)
	}

	ok := testutil.ToFloat64(m.total.WithLabelValues(http.MethodGet, "/api/studies/:id", "200"))
	if ok != 2 {
		t.Errorf("expected 2 successful requests, got %v", ok)
	}
	notFound := testutil.ToFloat64(m.total.WithLabelValues(http.MethodGet, "/api/studies/:id", "404"))
	if notFound != 1 {
		t.Errorf("expected 1 not-found request, got %v", notFound)
	}
	if got := testutil.ToFloat64(m.inFlight); got != 0 {
		t.Errorf("expected no in-flight requests, got %v", got)
	}
}
