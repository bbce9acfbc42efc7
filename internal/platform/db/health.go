package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type PoolStats struct {
	TotalConns      int32  `json:"totalConns"`
	IdleConns       int32  `json:"idleConns"`
	AcquiredConns   int32  `json:"acquiredConns"`
	MaxConns        int32  `json:"maxConns"`
	AcquireCount    int64  `json:"acquireCount"`
	AcquireDuration string `json:"acquireDuration"`
}

// Probe is what the health endpoint needs from a pool.
type Probe interface {
	Ping(ctx context.Context) error
	Stats() PoolStats
}

type poolProbe struct {
	pool *pgxpool.Pool
}

// ProbePool adapts a pgx pool to Probe.
func ProbePool(pool *pgxpool.Pool) Probe {
	return poolProbe{pool: pool}
}

func (p poolProbe) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

func (p poolProbe) Stats() PoolStats {
	s := p.pool.Stat()
	return PoolStats{
		TotalConns:      s.TotalConns(),
		IdleConns:       s.IdleConns(),
		AcquiredConns:   s.AcquiredConns(),
		MaxConns:        s.MaxConns(),
		AcquireCount:    s.AcquireCount(),
		AcquireDuration: s.AcquireDuration().String(),
	}
}

type Health struct {
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
	Pool   PoolStats `json:"pool"`
}

// HealthHandler pings the database, answering 503 when the ping fails or
// takes longer than timeout.
func HealthHandler(p Probe, timeout time.Duration) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
		defer cancel()

		if err := p.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, Health{Status: "unhealthy", Error: err.Error(), Pool: p.Stats()})
		}
		return c.JSON(http.StatusOK, Health{Status: "healthy", Pool: p.Stats()})
	}
}
