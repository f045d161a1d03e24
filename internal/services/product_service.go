package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/models"
	"shop-backend/internal/repositories"
)

var ErrProductNotFound = errors.New("product not found")

type ProductService struct {
	repo     *repositories.ProductRepository
	notifier Notifier
}

func NewProductService(repo *repositories.ProductRepository, notifier Notifier) *ProductService {
	return &ProductService{repo: repo, notifier: notifier}
}

func (s *ProductService) Create(ctx context.Context, storeID int, p *models.Product) (*models.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return nil, fmt.Errorf("product name is required")
	}
	if p.Price < 0 || p.Cost < 0 {
		return nil, ErrInvalidAmount
	}
	if p.StockQuantity < 0 {
		p.StockQuantity = 0
	}

	p.StoreID = storeID
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.notifier.Notify(ctx, storeID, ProductAdded(p.Name))
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, storeID, id int) (*models.Product, error) {
	product, err := s.repo.Get(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context, storeID int) ([]*models.Product, error) {
	return s.repo.List(ctx, storeID)
}

func (s *ProductService) Update(ctx context.Context, storeID, id int, update *models.Product) (*models.Product, error) {
	product, err := s.Get(ctx, storeID, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		product.Name = name
	}
	if update.Price < 0 || update.Cost < 0 {
		return nil, ErrInvalidAmount
	}
	product.Description = update.Description
	product.Price = update.Price
	product.Cost = update.Cost
	product.StockQuantity = update.StockQuantity
	product.Category = update.Category
	product.Barcode = update.Barcode

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product %d: %w", id, err)
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, storeID, id int) error {
	if _, err := s.Get(ctx, storeID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, storeID, id)
}

// AdjustStock applies a delta and emits a low stock warning when the result
// dips to the threshold.
func (s *ProductService) AdjustStock(ctx context.Context, storeID, id, delta int) (int, error) {
	product, err := s.Get(ctx, storeID, id)
	if err != nil {
		return 0, err
	}

	remaining, err := s.repo.AdjustStock(ctx, storeID, id, delta)
	if err != nil {
		return 0, fmt.Errorf("adjust stock for product %d: %w", id, err)
	}
	if delta < 0 && remaining <= LowStockThreshold {
		s.notifier.Notify(ctx, storeID, LowStock(product.Name, remaining))
	}
	return remaining, nil
}

func (s *ProductService) LowStock(ctx context.Context, storeID int) ([]*models.Product, error) {
	return s.repo.LowStock(ctx, storeID, LowStockThreshold)
}
