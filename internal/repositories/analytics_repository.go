package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type AnalyticsRepository struct {
	DB *pgxpool.Pool
}

func NewAnalyticsRepository(db *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{DB: db}
}

// DashboardStats aggregates the store snapshot in one round trip per concern.
// Debt and credit come from cached balances, which the ledger keeps equal to
// summed payment history.
func (r *AnalyticsRepository) DashboardStats(ctx context.Context, storeID, lowStockThreshold int) (*models.DashboardStats, error) {
	var stats models.DashboardStats

	err := r.DB.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM customers WHERE store_id=$1),
			(SELECT COUNT(*) FROM products WHERE store_id=$1),
			(SELECT COUNT(*) FROM orders WHERE store_id=$1),
			(SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE store_id=$1 AND status='completed'),
			(SELECT COALESCE(SUM(-balance), 0) FROM customers WHERE store_id=$1 AND balance < 0),
			(SELECT COALESCE(SUM(balance), 0) FROM customers WHERE store_id=$1 AND balance > 0),
			(SELECT COUNT(*) FROM invoices WHERE store_id=$1 AND status='pending'),
			(SELECT COUNT(*) FROM products WHERE store_id=$1 AND stock_quantity <= $2)
	`, storeID, lowStockThreshold).Scan(
		&stats.TotalCustomers, &stats.TotalProducts, &stats.TotalOrders, &stats.TotalRevenue,
		&stats.OutstandingDebt, &stats.CustomerCredit, &stats.UnpaidInvoices, &stats.LowStockCount,
	)
	if err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}

// SalesSeries returns per-day order counts and revenue for the last N days,
// oldest first. Days with no orders are omitted.
func (r *AnalyticsRepository) SalesSeries(ctx context.Context, storeID, days int) ([]models.SalesPoint, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') as day,
			COUNT(*) as orders,
			COALESCE(SUM(total_amount), 0) as revenue
		FROM orders
		WHERE store_id=$1 AND created_at >= CURRENT_DATE - ($2 || ' days')::interval
		GROUP BY created_at::date
		ORDER BY created_at::date ASC
	`, storeID, days)
	if err != nil {
		return nil, fmt.Errorf("sales series: %w", err)
	}
	defer rows.Close()

	var series []models.SalesPoint
	for rows.Next() {
		var point models.SalesPoint
		if err := rows.Scan(&point.Date, &point.Orders, &point.Revenue); err != nil {
			return nil, err
		}
		series = append(series, point)
	}
	return series, rows.Err()
}
