package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

// CreateWithItems persists the order header and all item rows in a single
// transaction. A failure on any item rolls back the header too; a partially
// written order is never a terminal state.
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *models.Order, items []models.OrderItem) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO orders(store_id, customer_id, order_number, total_amount, status, notes)
         VALUES($1, $2, $3, $4, $5, $6)
         RETURNING id, created_at, updated_at`,
		o.StoreID, o.CustomerID, o.OrderNumber, o.TotalAmount, o.Status, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range items {
		items[i].OrderID = o.ID
		err = tx.QueryRow(ctx,
			`INSERT INTO order_items(order_id, product_id, product_name, quantity, unit_price, total_price)
             VALUES($1, $2, $3, $4, $5, $6)
             RETURNING id, created_at`,
			o.ID, items[i].ProductID, items[i].ProductName, items[i].Quantity,
			items[i].UnitPrice, items[i].TotalPrice,
		).Scan(&items[i].ID, &items[i].CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order tx: %w", err)
	}

	o.Items = items
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, storeID, id int) (*models.Order, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT o.id, o.store_id, o.customer_id, o.order_number, o.total_amount, o.status,
                COALESCE(o.notes, '') as notes, o.created_at, o.updated_at,
                COALESCE(c.name, '') as customer_name
         FROM orders o
         LEFT JOIN customers c ON c.id = o.customer_id
         WHERE o.id=$1 AND o.store_id=$2`, id, storeID)

	var o models.Order
	err := row.Scan(&o.ID, &o.StoreID, &o.CustomerID, &o.OrderNumber, &o.TotalAmount,
		&o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.CustomerName)
	if err != nil {
		return nil, err
	}

	items, err := r.listItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, order_id, product_id, product_name, quantity, unit_price, total_price, created_at
         FROM order_items WHERE order_id=$1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice, &it.CreatedAt)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *OrderRepository) List(ctx context.Context, storeID int, limit, offset int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.DB.Query(ctx,
		`SELECT o.id, o.store_id, o.customer_id, o.order_number, o.total_amount, o.status,
                COALESCE(o.notes, '') as notes, o.created_at, o.updated_at,
                COALESCE(c.name, '') as customer_name
         FROM orders o
         LEFT JOIN customers c ON c.id = o.customer_id
         WHERE o.store_id=$1
         ORDER BY o.created_at DESC, o.id DESC
         LIMIT $2 OFFSET $3`, storeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		err := rows.Scan(&o.ID, &o.StoreID, &o.CustomerID, &o.OrderNumber, &o.TotalAmount,
			&o.Status, &o.Notes, &o.CreatedAt, &o.UpdatedAt, &o.CustomerName)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, storeID, id int, status models.OrderStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE orders SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2 AND store_id=$3`,
		status, id, storeID)
	return err
}
