package health

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/cache"
)

// HealthChecker reports readiness of the backing services. The database is
// required; the cache is optional and only reported, never fails readiness.
type HealthChecker struct {
	db *pgxpool.Pool
}

type Status struct {
	Status     string          `json:"status"`
	Database   ComponentHealth `json:"database"`
	Cache      ComponentHealth `json:"cache"`
	Migrations int             `json:"migrations_applied"`
}

type ComponentHealth struct {
	Status       string `json:"status"`
	ResponseTime int64  `json:"response_time_ms"`
}

func NewHealthChecker(db *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{db: db}
}

func (h *HealthChecker) Check() Status {
	dbHealth, migrations := h.checkDatabase()

	status := "healthy"
	if dbHealth.Status != "healthy" {
		status = "unhealthy"
	}

	return Status{
		Status:     status,
		Database:   dbHealth,
		Cache:      h.checkCache(),
		Migrations: migrations,
	}
}

func (h *HealthChecker) checkDatabase() (ComponentHealth, int) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := h.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	if err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}, 0
	}

	// Applied migration count doubles as a schema sanity check.
	var migrations int
	if err := h.db.QueryRow(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&migrations); err != nil {
		return ComponentHealth{Status: "unhealthy", ResponseTime: responseTime}, 0
	}

	return ComponentHealth{Status: "healthy", ResponseTime: responseTime}, migrations
}

func (h *HealthChecker) checkCache() ComponentHealth {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := cache.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	switch {
	case errors.Is(err, cache.ErrDisabled):
		return ComponentHealth{Status: "disabled"}
	case err != nil:
		return ComponentHealth{Status: "unreachable", ResponseTime: responseTime}
	default:
		return ComponentHealth{Status: "healthy", ResponseTime: responseTime}
	}
}
