package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

type fakeProbe struct {
	err   error
	block bool
}

func (f fakeProbe) Ping(ctx context.Context) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

func (f fakeProbe) Stats() PoolStats {
	return PoolStats{TotalConns: 3, IdleConns: 2, AcquiredConns: 1, MaxConns: 10}
}

func serve(t *testing.T, p Probe) (int, Health) {
	t.Helper()
	e := echo.New()
	e.GET("/health/db", HealthHandler(p, 50*time.Millisecond))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/db", nil))
	var h Health
	if err := json.Unmarshal(rec.Body.Bytes(), &h); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, h
}

func TestHealthHandler_Healthy(t *testing.T) {
	code, h := serve(t, fakeProbe{})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if h.Status != "healthy" || h.Error != "" {
		t.Errorf("unexpected body %+v", h)
	}
	if h.Pool.TotalConns != 3 || h.Pool.MaxConns != 10 {
		t.Errorf("unexpected pool stats %+v", h.Pool)
	}
}

func TestHealthHandler_PingFails(t *testing.T) {
	code, h := serve(t, fakeProbe{err: errors.New("connection refused")})
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if h.Status != "unhealthy" || h.Error != "connection refused" {
		t.Errorf("unexpected body %+v", h)
	}
}

func TestHealthHandler_Timeout(t *testing.T) {
	code, h := serve(t, fakeProbe{block: true})
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if h.Error != context.DeadlineExceeded.Error() {
		t.Errorf("expected deadline error, got %q", h.Error)
	}
}

func TestPoolStats_JSONTags(t *testing.T) {
	b, err := json.Marshal(PoolStats{TotalConns: 1, AcquireDuration: "1ms"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	for _, key := range []string{"totalConns", "idleConns", "acquiredConns", "maxConns", "acquireCount", "acquireDuration"} {
		if _, ok := m[key]; !ok {
			t.Errorf("missing key %q", key)
		}
	}
}
