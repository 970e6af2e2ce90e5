package services

import (
	"context"
	"errors"
	"log"
	"time"

	"khata-backend/internal/metrics"
	"khata-backend/internal/models"
	"khata-backend/internal/repositories"
)

type CustomerService struct {
	Repo  *repositories.CustomerRepository
	bills BillRemover
}

func NewCustomerService(repo *repositories.CustomerRepository, bills BillRemover) *CustomerService {
	return &CustomerService{Repo: repo, bills: bills}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, userID int, req *models.CreateCustomerRequest) (*models.Customer, error) {
	// Validate input
	if req.Name == "" || req.ContactNumber == "" {
		return nil, errors.New("name and contact number are required")
	}

	customer := &models.Customer{
		UserID:        userID,
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
	}

	if err := s.Repo.Create(ctx, customer); err != nil {
		return nil, err
	}

	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, userID, id int) (*models.Customer, error) {
	return s.Repo.Get(ctx, userID, id)
}

func (s *CustomerService) ListCustomers(ctx context.Context, userID int) ([]*models.Customer, error) {
	return s.Repo.List(ctx, userID)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, userID, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	// Validate input
	if req.Name == "" || req.ContactNumber == "" {
		return nil, errors.New("name and contact number are required")
	}

	customer := &models.Customer{
		ID:            id,
		UserID:        userID,
		Name:          req.Name,
		ContactNumber: req.ContactNumber,
		Email:         req.Email,
		Address:       req.Address,
	}

	if err := s.Repo.Update(ctx, customer); err != nil {
		return nil, err
	}

	return s.Repo.Get(ctx, userID, id)
}

// DeleteCustomer removes the customer with its transactions and reminders in
// bulk, then cleans up the stored bill attachments. The storage cleanup is
// best-effort: a failed delete is logged and the customer stays deleted.
func (s *CustomerService) DeleteCustomer(ctx context.Context, userID, id int) error {
	billKeys, err := s.Repo.Delete(ctx, userID, id)
	if err != nil {
		return err
	}

	if s.bills == nil || len(billKeys) == 0 {
		return nil
	}
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	for _, key := range billKeys {
		if err := s.bills.Delete(cleanupCtx, key); err != nil {
			metrics.AttachmentDeleteFailures.Inc()
			log.Printf("[Customers] bill cleanup after delete: %v", err)
		}
	}
	return nil
}
