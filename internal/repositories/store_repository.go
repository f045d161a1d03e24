package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"shop-backend/internal/models"
)

type StoreRepository struct {
	DB *pgxpool.Pool
}

func NewStoreRepository(db *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{DB: db}
}

func (r *StoreRepository) Create(ctx context.Context, s *models.Store) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO stores(name, email, password_hash)
         VALUES($1, $2, $3)
         RETURNING id, created_at, updated_at`,
		s.Name, s.Email, s.PasswordHash,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
}

func (r *StoreRepository) Get(ctx context.Context, id int) (*models.Store, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, password_hash, COALESCE(logo_url, '') as logo_url, created_at, updated_at
         FROM stores WHERE id=$1`, id)

	var s models.Store
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.LogoURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) GetByEmail(ctx context.Context, email string) (*models.Store, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT id, name, email, password_hash, COALESCE(logo_url, '') as logo_url, created_at, updated_at
         FROM stores WHERE email=$1`, email)

	var s models.Store
	err := row.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &s.LogoURL, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) UpdateLogoURL(ctx context.Context, id int, logoURL string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE stores SET logo_url=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, logoURL, id)
	return err
}
