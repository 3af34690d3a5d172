package services

import (
	"context"
	"fmt"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
)

// AccountService manages the chart of accounts
type AccountService struct {
	repo     repository.AccountRepository
	auditSvc *AuditService
}

func NewAccountService(repo repository.AccountRepository, auditSvc *AuditService) *AccountService {
	return &AccountService{repo: repo, auditSvc: auditSvc}
}

func (s *AccountService) FindByID(ctx context.Context, id uint) (*models.ChartOfAccount, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *AccountService) List(ctx context.Context, query *repository.ListQuery) ([]models.ChartOfAccount, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *AccountService) Create(ctx context.Context, account *models.ChartOfAccount, actorID uint) error {
	if !models.ValidAccountType(account.AccountType) {
		return fmt.Errorf("unknown account type: %s", account.AccountType)
	}
	if err := s.repo.Create(ctx, account); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actorID, "CREATE", "ChartOfAccount", account.ID, fmt.Sprintf("Account created: %s %s", account.AccountNumber, account.AccountName), "", "")
	return nil
}

func (s *AccountService) Update(ctx context.Context, account *models.ChartOfAccount, actorID uint) error {
	if !models.ValidAccountType(account.AccountType) {
		return fmt.Errorf("unknown account type: %s", account.AccountType)
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return err
	}
	s.auditSvc.Log(ctx, actorID, "UPDATE", "ChartOfAccount", account.ID, fmt.Sprintf("Account updated: %s", account.AccountNumber), "", "")
	return nil
}

// Deactivate retires an account from new postings. Ledger history that
// already references the number stays untouched.
func (s *AccountService) Deactivate(ctx context.Context, id uint, actorID uint) (*models.ChartOfAccount, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	account.Active = false
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	s.auditSvc.Log(ctx, actorID, "DEACTIVATE", "ChartOfAccount", id, fmt.Sprintf("Account deactivated: %s", account.AccountNumber), "", "")
	return account, nil
}
