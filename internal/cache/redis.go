package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrDisabled is returned by Ping when no cache was configured.
var ErrDisabled = errors.New("cache not configured")

// Analytics cache keys, scoped per store.
const (
	DashboardStatsKeyFmt = "analytics:dashboard:%d"
	SalesSeriesKeyFmt    = "analytics:sales:%d:%d"
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional: callers
// degrade gracefully when it is unavailable.
func Init() error {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("REDIS_PORT")
	if port == "" {
		port = "6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// Ping checks cache reachability for health reporting.
func Ping(ctx context.Context) error {
	if client == nil {
		return ErrDisabled
	}
	return client.Ping(ctx).Err()
}

// GetCachedDashboardStats returns cached dashboard stats if available
func GetCachedDashboardStats(ctx context.Context, storeID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(DashboardStatsKeyFmt, storeID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheDashboardStats caches dashboard stats for 5 minutes
func CacheDashboardStats(ctx context.Context, storeID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(DashboardStatsKeyFmt, storeID), data, 5*time.Minute)
}

// GetCachedSalesSeries returns a cached sales-by-day series if available
func GetCachedSalesSeries(ctx context.Context, storeID, days int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(SalesSeriesKeyFmt, storeID, days)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// CacheSalesSeries caches a sales-by-day series for 5 minutes
func CacheSalesSeries(ctx context.Context, storeID, days int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(SalesSeriesKeyFmt, storeID, days), data, 5*time.Minute)
}

// InvalidateStore drops all cached analytics for a store. Called after
// ledger mutations and checkouts so stale revenue numbers don't linger.
func InvalidateStore(ctx context.Context, storeID int) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(DashboardStatsKeyFmt, storeID))
	iter := client.Scan(ctx, 0, fmt.Sprintf("analytics:sales:%d:*", storeID), 50).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
