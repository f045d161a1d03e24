package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

// InvoiceRepository reads paid_amount as a SELECT-time sum over payments
// referencing the invoice. There is no stored paid_amount column to drift
// from payment history.
type InvoiceRepository struct {
	DB *pgxpool.Pool
}

func NewInvoiceRepository(db *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{DB: db}
}

const invoiceSelect = `
	SELECT i.id, i.store_id, i.customer_id, i.invoice_number, i.total_amount,
		COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.invoice_id = i.id AND p.amount > 0), 0) as paid_amount,
		i.status, i.due_date, COALESCE(i.notes, '') as notes, i.created_at, i.updated_at,
		COALESCE(c.name, '') as customer_name
	FROM invoices i
	LEFT JOIN customers c ON c.id = i.customer_id
`

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO invoices(store_id, customer_id, invoice_number, total_amount, status, due_date, notes)
         VALUES($1, $2, $3, $4, $5, $6, $7)
         RETURNING id, created_at, updated_at`,
		inv.StoreID, inv.CustomerID, inv.InvoiceNumber, inv.TotalAmount, inv.Status, inv.DueDate, inv.Notes,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

func (r *InvoiceRepository) Get(ctx context.Context, storeID, id int) (*models.Invoice, error) {
	row := r.DB.QueryRow(ctx, invoiceSelect+` WHERE i.id=$1 AND i.store_id=$2`, id, storeID)

	var inv models.Invoice
	err := row.Scan(&inv.ID, &inv.StoreID, &inv.CustomerID, &inv.InvoiceNumber, &inv.TotalAmount,
		&inv.PaidAmount, &inv.Status, &inv.DueDate, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
		&inv.CustomerName)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) List(ctx context.Context, storeID int) ([]models.Invoice, error) {
	rows, err := r.DB.Query(ctx,
		invoiceSelect+` WHERE i.store_id=$1 ORDER BY i.created_at DESC, i.id DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		err := rows.Scan(&inv.ID, &inv.StoreID, &inv.CustomerID, &inv.InvoiceNumber, &inv.TotalAmount,
			&inv.PaidAmount, &inv.Status, &inv.DueDate, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt,
			&inv.CustomerName)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, storeID, id int, status models.InvoiceStatus) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE invoices SET status=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2 AND store_id=$3`,
		status, id, storeID)
	return err
}
