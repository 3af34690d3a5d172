package services

import (
	"context"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
)

// SubAccountService exposes the sub-account master lists (suppliers,
// customers, employees, banks, companies) for pickers and reports.
type SubAccountService struct {
	repo repository.SubAccountRepository
}

func NewSubAccountService(repo repository.SubAccountRepository) *SubAccountService {
	return &SubAccountService{repo: repo}
}

func (s *SubAccountService) ListSuppliers(ctx context.Context, query *repository.ListQuery) ([]models.Supplier, int64, error) {
	return s.repo.ListSuppliers(ctx, query)
}

func (s *SubAccountService) ListCustomers(ctx context.Context, query *repository.ListQuery) ([]models.Customer, int64, error) {
	return s.repo.ListCustomers(ctx, query)
}

func (s *SubAccountService) ListEmployees(ctx context.Context, query *repository.ListQuery) ([]models.Employee, int64, error) {
	return s.repo.ListEmployees(ctx, query)
}

func (s *SubAccountService) ListBanks(ctx context.Context, query *repository.ListQuery) ([]models.Bank, int64, error) {
	return s.repo.ListBanks(ctx, query)
}

func (s *SubAccountService) ListCompanies(ctx context.Context, query *repository.ListQuery) ([]models.Company, int64, error) {
	return s.repo.ListCompanies(ctx, query)
}
