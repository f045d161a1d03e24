package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

// LedgerRepository owns the payments table, the transactions audit table and
// the cached customers.balance column. AppendEntry is the only code path
// that writes any of the three.
type LedgerRepository struct {
	DB *pgxpool.Pool
}

func NewLedgerRepository(db *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{DB: db}
}

// AppendEntry atomically appends a payment row, rewrites the customer's
// cached balance from payment history, and appends the audit transaction.
// The customer row is locked for the duration, so concurrent entries for the
// same customer serialize and the balance can never lose an update. Returns
// pgx.ErrNoRows if the customer does not exist in the store.
func (r *LedgerRepository) AppendEntry(ctx context.Context, e *models.LedgerEntry) (*models.LedgerResult, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the customer row. The lock is held until commit, serializing all
	// ledger writes for this customer.
	var lockedID int
	err = tx.QueryRow(ctx,
		`SELECT id FROM customers WHERE id=$1 AND store_id=$2 FOR UPDATE`,
		e.CustomerID, e.StoreID,
	).Scan(&lockedID)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		StoreID:    e.StoreID,
		CustomerID: &e.CustomerID,
		InvoiceID:  e.InvoiceID,
		OrderID:    e.OrderID,
		Amount:     e.Amount,
		Method:     e.Method,
		Kind:       e.Kind,
		ReversalOf: e.ReversalOf,
		Notes:      e.Notes,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO payments(store_id, customer_id, invoice_id, order_id, amount, payment_method, kind, reversal_of, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)
         RETURNING id, created_at`,
		e.StoreID, e.CustomerID, e.InvoiceID, e.OrderID, e.Amount, e.Method, e.Kind, e.ReversalOf, e.Notes,
	).Scan(&payment.ID, &payment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}

	// The balance column is a cache; the stored value is always rederived
	// from the full payment history inside the same locked transaction.
	var balance float64
	err = tx.QueryRow(ctx,
		`UPDATE customers
         SET balance = COALESCE((SELECT SUM(amount) FROM payments WHERE customer_id=$1 AND store_id=$2), 0),
             updated_at = CURRENT_TIMESTAMP
         WHERE id=$1 AND store_id=$2
         RETURNING balance`,
		e.CustomerID, e.StoreID,
	).Scan(&balance)
	if err != nil {
		return nil, fmt.Errorf("update balance: %w", err)
	}

	txn := &models.Transaction{
		StoreID:     e.StoreID,
		CustomerID:  &e.CustomerID,
		InvoiceID:   e.InvoiceID,
		OrderID:     e.OrderID,
		Type:        e.TxType,
		Amount:      abs(e.Amount),
		Description: e.Description,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO transactions(store_id, customer_id, invoice_id, order_id, type, amount, description)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at`,
		e.StoreID, e.CustomerID, e.InvoiceID, e.OrderID, e.TxType, txn.Amount, e.Description,
	).Scan(&txn.ID, &txn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit ledger tx: %w", err)
	}

	return &models.LedgerResult{
		Payment:     payment,
		Transaction: txn,
		Balance:     balance,
	}, nil
}

// GetPayment returns a single payment scoped to the store
func (r *LedgerRepository) GetPayment(ctx context.Context, storeID, paymentID int) (*models.Payment, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, store_id, customer_id, invoice_id, order_id, amount, payment_method,
                kind, reversal_of, COALESCE(notes, '') as notes, created_at
         FROM payments WHERE id=$1 AND store_id=$2`, paymentID, storeID)

	var p models.Payment
	err := row.Scan(&p.ID, &p.StoreID, &p.CustomerID, &p.InvoiceID, &p.OrderID,
		&p.Amount, &p.Method, &p.Kind, &p.ReversalOf, &p.Notes, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// RecomputeBalance re-derives the cached balance from payment history under
// the customer row lock and returns the corrected value. Used for repair and
// verification; AppendEntry already does this on every write.
func (r *LedgerRepository) RecomputeBalance(ctx context.Context, storeID, customerID int) (float64, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin recompute tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var lockedID int
	err = tx.QueryRow(ctx,
		`SELECT id FROM customers WHERE id=$1 AND store_id=$2 FOR UPDATE`,
		customerID, storeID,
	).Scan(&lockedID)
	if err != nil {
		return 0, err
	}

	var balance float64
	err = tx.QueryRow(ctx,
		`UPDATE customers
         SET balance = COALESCE((SELECT SUM(amount) FROM payments WHERE customer_id=$1 AND store_id=$2), 0),
             updated_at = CURRENT_TIMESTAMP
         WHERE id=$1 AND store_id=$2
         RETURNING balance`,
		customerID, storeID,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("recompute balance: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit recompute tx: %w", err)
	}
	return balance, nil
}

// ListPayments returns payments for a store with optional filters, newest first
func (r *LedgerRepository) ListPayments(ctx context.Context, storeID int, filter *models.PaymentFilter) ([]models.Payment, error) {
	conditions := []string{"p.store_id = $1"}
	args := []interface{}{storeID}
	argNum := 2

	if filter.CustomerID != 0 {
		conditions = append(conditions, fmt.Sprintf("p.customer_id = $%d", argNum))
		args = append(args, filter.CustomerID)
		argNum++
	}
	if filter.InvoiceID != 0 {
		conditions = append(conditions, fmt.Sprintf("p.invoice_id = $%d", argNum))
		args = append(args, filter.InvoiceID)
		argNum++
	}
	if filter.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_at >= $%d", argNum))
		args = append(args, filter.StartDate)
		argNum++
	}
	if filter.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("p.created_at <= $%d", argNum))
		args = append(args, filter.EndDate)
		argNum++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.store_id, p.customer_id, p.invoice_id, p.order_id, p.amount,
			p.payment_method, p.kind, p.reversal_of, COALESCE(p.notes, '') as notes, p.created_at,
			COALESCE(c.name, '') as customer_name, COALESCE(i.invoice_number, '') as invoice_number
		FROM payments p
		LEFT JOIN customers c ON c.id = p.customer_id
		LEFT JOIN invoices i ON i.id = p.invoice_id
		WHERE %s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $%d OFFSET $%d
	`, strings.Join(conditions, " AND "), argNum, argNum+1)

	args = append(args, limit, filter.Offset)

	rows, err := r.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.StoreID, &p.CustomerID, &p.InvoiceID, &p.OrderID,
			&p.Amount, &p.Method, &p.Kind, &p.ReversalOf, &p.Notes, &p.CreatedAt,
			&p.CustomerName, &p.InvoiceNumber)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// ListByCustomer returns a customer's full ledger history, newest first
func (r *LedgerRepository) ListByCustomer(ctx context.Context, storeID, customerID int, limit, offset int) ([]models.Payment, error) {
	return r.ListPayments(ctx, storeID, &models.PaymentFilter{
		CustomerID: customerID,
		Limit:      limit,
		Offset:     offset,
	})
}

// SumForInvoice returns the signed sum of payments referencing an invoice
func (r *LedgerRepository) SumForInvoice(ctx context.Context, storeID, invoiceID int) (float64, error) {
	var total float64
	err := r.DB.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM payments WHERE invoice_id=$1 AND store_id=$2`,
		invoiceID, storeID,
	).Scan(&total)
	return total, err
}

// VerifyBalances compares every customer's cached balance against the summed
// payment history and returns the IDs that disagree. Zero rows means the
// ledger invariant holds across the store.
func (r *LedgerRepository) VerifyBalances(ctx context.Context, storeID int) ([]int, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.id
		FROM customers c
		LEFT JOIN payments p ON p.customer_id = c.id AND p.store_id = c.store_id
		WHERE c.store_id = $1
		GROUP BY c.id, c.balance
		HAVING c.balance <> COALESCE(SUM(p.amount), 0)
	`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
