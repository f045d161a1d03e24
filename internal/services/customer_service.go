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

type CustomerService struct {
	repo     *repositories.CustomerRepository
	notifier Notifier
}

func NewCustomerService(repo *repositories.CustomerRepository, notifier Notifier) *CustomerService {
	return &CustomerService{repo: repo, notifier: notifier}
}

// Create adds a customer with a zero opening balance.
func (s *CustomerService) Create(ctx context.Context, storeID int, req *models.CreateCustomerRequest) (*models.Customer, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("customer name is required")
	}

	customer := &models.Customer{
		StoreID: storeID,
		Name:    name,
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}

	s.notifier.Notify(ctx, storeID, CustomerAdded(customer.Name))
	return customer, nil
}

func (s *CustomerService) Get(ctx context.Context, storeID, id int) (*models.Customer, error) {
	customer, err := s.repo.Get(ctx, storeID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context, storeID int) ([]*models.Customer, error) {
	return s.repo.List(ctx, storeID)
}

// Update writes contact fields; the balance stays with the ledger.
func (s *CustomerService) Update(ctx context.Context, storeID, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.Get(ctx, storeID, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		customer.Name = name
	}
	customer.Email = strings.TrimSpace(req.Email)
	customer.Phone = strings.TrimSpace(req.Phone)
	customer.Address = strings.TrimSpace(req.Address)

	if err := s.repo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	return customer, nil
}

// Delete removes a customer. Refused while the balance is non-zero: the
// remaining credit or debt has to be settled through the ledger first.
func (s *CustomerService) Delete(ctx context.Context, storeID, id int) error {
	customer, err := s.Get(ctx, storeID, id)
	if err != nil {
		return err
	}
	if customer.Balance != 0 {
		return ErrBalanceNotSettled
	}
	return s.repo.Delete(ctx, storeID, id)
}

// Debtors returns customers who owe the store, largest debt first
func (s *CustomerService) Debtors(ctx context.Context, storeID int) ([]*models.Customer, error) {
	return s.repo.Debtors(ctx, storeID)
}
