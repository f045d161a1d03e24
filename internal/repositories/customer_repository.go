package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

// Create inserts a customer with a zero opening balance. Balance is owned by
// the ledger and never set through this repository.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO customers(store_id, name, email, phone, address, balance)
         VALUES($1, $2, $3, $4, $5, 0)
         RETURNING id, balance, created_at, updated_at`,
		c.StoreID, c.Name, c.Email, c.Phone, c.Address,
	).Scan(&c.ID, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CustomerRepository) Get(ctx context.Context, storeID, id int) (*models.Customer, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, store_id, name, COALESCE(email, '') as email, COALESCE(phone, '') as phone,
                COALESCE(address, '') as address, balance, created_at, updated_at
         FROM customers WHERE id=$1 AND store_id=$2`, id, storeID)

	var c models.Customer
	err := row.Scan(&c.ID, &c.StoreID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.Balance, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) List(ctx context.Context, storeID int) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, store_id, name, COALESCE(email, '') as email, COALESCE(phone, '') as phone,
                COALESCE(address, '') as address, balance, created_at, updated_at
         FROM customers WHERE store_id=$1 ORDER BY created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var c models.Customer
		err := rows.Scan(&c.ID, &c.StoreID, &c.Name, &c.Email, &c.Phone, &c.Address,
			&c.Balance, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}

// Update writes contact fields only; the balance column is untouched.
func (r *CustomerRepository) Update(ctx context.Context, c *models.Customer) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE customers SET name=$1, email=$2, phone=$3, address=$4, updated_at=CURRENT_TIMESTAMP
         WHERE id=$5 AND store_id=$6`,
		c.Name, c.Email, c.Phone, c.Address, c.ID, c.StoreID)
	return err
}

func (r *CustomerRepository) Delete(ctx context.Context, storeID, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM customers WHERE id=$1 AND store_id=$2`, id, storeID)
	return err
}

// Debtors returns customers with negative balance (they owe the store),
// largest debt first.
func (r *CustomerRepository) Debtors(ctx context.Context, storeID int) ([]*models.Customer, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, store_id, name, COALESCE(email, '') as email, COALESCE(phone, '') as phone,
                COALESCE(address, '') as address, balance, created_at, updated_at
         FROM customers WHERE store_id=$1 AND balance < 0 ORDER BY balance ASC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		var c models.Customer
		err := rows.Scan(&c.ID, &c.StoreID, &c.Name, &c.Email, &c.Phone, &c.Address,
			&c.Balance, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}
	return customers, rows.Err()
}
