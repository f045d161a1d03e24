package services

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"shop-backend/internal/models"
	"shop-backend/internal/repositories"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionService reads the audit trail. Write access does not exist:
// transactions are produced only by ledger mutations.
type TransactionService struct {
	repo *repositories.TransactionRepository
}

func NewTransactionService(repo *repositories.TransactionRepository) *TransactionService {
	return &TransactionService{repo: repo}
}

func (s *TransactionService) List(ctx context.Context, storeID int, filter *models.TransactionFilter) ([]models.Transaction, error) {
	return s.repo.List(ctx, storeID, filter)
}

func (s *TransactionService) Get(ctx context.Context, storeID, id int) (*models.Transaction, error) {
	txn, err := s.repo.Get(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return txn, nil
}
