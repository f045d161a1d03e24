package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

// TransactionRepository is read-only: transaction rows are written solely by
// the ledger inside its own database transaction.
type TransactionRepository struct {
	DB *pgxpool.Pool
}

func NewTransactionRepository(db *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

// List returns the audit trail with optional filters, newest first
func (r *TransactionRepository) List(ctx context.Context, storeID int, filter *models.TransactionFilter) ([]models.Transaction, error) {
	conditions := []string{"t.store_id = $1"}
	args := []interface{}{storeID}
	argNum := 2

	if filter.CustomerID != 0 {
		conditions = append(conditions, fmt.Sprintf("t.customer_id = $%d", argNum))
		args = append(args, filter.CustomerID)
		argNum++
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("t.type = $%d", argNum))
		args = append(args, filter.Type)
		argNum++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at >= $%d", argNum))
		args = append(args, filter.StartDate)
		argNum++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("t.created_at <= $%d", argNum))
		args = append(args, filter.EndDate)
		argNum++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}

	query := fmt.Sprintf(`
		SELECT t.id, t.store_id, t.customer_id, t.invoice_id, t.order_id, t.type, t.amount,
			COALESCE(t.description, '') as description, t.created_at,
			COALESCE(c.name, '') as customer_name
		FROM transactions t
		LEFT JOIN customers c ON c.id = t.customer_id
		WHERE %s
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), argNum, argNum+1)

	args = append(args, limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var t models.Transaction
		err := rows.Scan(&t.ID, &t.StoreID, &t.CustomerID, &t.InvoiceID, &t.OrderID,
			&t.Type, &t.Amount, &t.Description, &t.CreatedAt, &t.CustomerName)
		if err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}

// Get returns a single audit entry scoped to the store
func (r *TransactionRepository) Get(ctx context.Context, storeID, id int) (*models.Transaction, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT t.id, t.store_id, t.customer_id, t.invoice_id, t.order_id, t.type, t.amount,
			COALESCE(t.description, '') as description, t.created_at,
			COALESCE(c.name, '') as customer_name
		FROM transactions t
		LEFT JOIN customers c ON c.id = t.customer_id
		WHERE t.id=$1 AND t.store_id=$2`, id, storeID)

	var t models.Transaction
	err := row.Scan(&t.ID, &t.StoreID, &t.CustomerID, &t.InvoiceID, &t.OrderID,
		&t.Type, &t.Amount, &t.Description, &t.CreatedAt, &t.CustomerName)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
