package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type ProductRepository struct {
	DB *pgxpool.Pool
}

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{DB: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO products(store_id, name, description, price, cost, stock_quantity, category, barcode)
         VALUES($1, $2, $3, $4, $5, $6, $7, $8)
         RETURNING id, created_at, updated_at`,
		p.StoreID, p.Name, p.Description, p.Price, p.Cost, p.StockQuantity, p.Category, p.Barcode,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *ProductRepository) Get(ctx context.Context, storeID, id int) (*models.Product, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, store_id, name, COALESCE(description, '') as description, price, cost,
                stock_quantity, COALESCE(category, '') as category, COALESCE(barcode, '') as barcode,
                created_at, updated_at
         FROM products WHERE id=$1 AND store_id=$2`, id, storeID)

	var p models.Product
	err := row.Scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &p.Price, &p.Cost,
		&p.StockQuantity, &p.Category, &p.Barcode, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) List(ctx context.Context, storeID int) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, store_id, name, COALESCE(description, '') as description, price, cost,
                stock_quantity, COALESCE(category, '') as category, COALESCE(barcode, '') as barcode,
                created_at, updated_at
         FROM products WHERE store_id=$1 ORDER BY created_at DESC`, storeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &p.Price, &p.Cost,
			&p.StockQuantity, &p.Category, &p.Barcode, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, p *models.Product) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE products SET name=$1, description=$2, price=$3, cost=$4, stock_quantity=$5,
                category=$6, barcode=$7, updated_at=CURRENT_TIMESTAMP
         WHERE id=$8 AND store_id=$9`,
		p.Name, p.Description, p.Price, p.Cost, p.StockQuantity, p.Category, p.Barcode, p.ID, p.StoreID)
	return err
}

func (r *ProductRepository) Delete(ctx context.Context, storeID, id int) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1 AND store_id=$2`, id, storeID)
	return err
}

// AdjustStock applies a delta to a product's stock and returns the new
// quantity. Stock never goes below zero; oversold quantities clamp.
func (r *ProductRepository) AdjustStock(ctx context.Context, storeID, id, delta int) (int, error) {
	var qty int
	err := r.DB.QueryRow(ctx,
		`UPDATE products
         SET stock_quantity = GREATEST(stock_quantity + $1, 0), updated_at=CURRENT_TIMESTAMP
         WHERE id=$2 AND store_id=$3
         RETURNING stock_quantity`,
		delta, id, storeID,
	).Scan(&qty)
	return qty, err
}

// LowStock returns products at or below the threshold
func (r *ProductRepository) LowStock(ctx context.Context, storeID, threshold int) ([]*models.Product, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, store_id, name, COALESCE(description, '') as description, price, cost,
                stock_quantity, COALESCE(category, '') as category, COALESCE(barcode, '') as barcode,
                created_at, updated_at
         FROM products WHERE store_id=$1 AND stock_quantity <= $2 ORDER BY stock_quantity ASC`,
		storeID, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &p.Price, &p.Cost,
			&p.StockQuantity, &p.Category, &p.Barcode, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, &p)
	}
	return products, rows.Err()
}
