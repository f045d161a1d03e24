package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type OnlineTransactionRepository struct {
	DB *pgxpool.Pool
}

func NewOnlineTransactionRepository(db *pgxpool.Pool) *OnlineTransactionRepository {
	return &OnlineTransactionRepository{DB: db}
}

func (r *OnlineTransactionRepository) Create(ctx context.Context, t *models.OnlineTransaction) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO online_transactions(store_id, customer_id, razorpay_order_id, amount, status)
         VALUES($1, $2, $3, $4, 'created')
         RETURNING id, created_at`,
		t.StoreID, t.CustomerID, t.RazorpayOrderID, t.Amount,
	).Scan(&t.ID, &t.CreatedAt)
}

func (r *OnlineTransactionRepository) GetByOrderID(ctx context.Context, razorpayOrderID string) (*models.OnlineTransaction, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, store_id, customer_id, razorpay_order_id, COALESCE(razorpay_payment_id, '') as razorpay_payment_id,
                amount, status, created_at, settled_at
         FROM online_transactions WHERE razorpay_order_id=$1`, razorpayOrderID)

	var t models.OnlineTransaction
	err := row.Scan(&t.ID, &t.StoreID, &t.CustomerID, &t.RazorpayOrderID, &t.RazorpayPaymentID,
		&t.Amount, &t.Status, &t.CreatedAt, &t.SettledAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MarkPaid records the gateway payment ID and flips the row to paid exactly
// once; a second settle attempt for the same order affects zero rows.
func (r *OnlineTransactionRepository) MarkPaid(ctx context.Context, id int, razorpayPaymentID string) (bool, error) {
	tag, err := r.DB.Exec(ctx,
		`UPDATE online_transactions
         SET razorpay_payment_id=$1, status='paid', settled_at=CURRENT_TIMESTAMP
         WHERE id=$2 AND status='created'`,
		razorpayPaymentID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *OnlineTransactionRepository) MarkFailed(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE online_transactions SET status='failed' WHERE id=$1 AND status='created'`, id)
	return err
}

// RevertSettlement moves a paid row back to created. Used when the ledger
// write after MarkPaid fails, so the next gateway callback can settle again
// instead of finding an already-paid row with no ledger entry behind it.
func (r *OnlineTransactionRepository) RevertSettlement(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE online_transactions SET status='created', settled_at=NULL WHERE id=$1 AND status='paid'`, id)
	return err
}
