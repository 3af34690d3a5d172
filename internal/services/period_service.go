package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"gorm.io/gorm"
)

// PeriodService is the period-lock gate. Every mutating operation that
// touches a date-bearing document calls EnsureOpen first; a closed month
// fails the call with ErrPeriodClosed and nothing is written.
type PeriodService struct {
	repo            repository.PeriodRepository
	auditSvc        *AuditService
	notificationSvc *NotificationService
}

// NewPeriodService creates a new period service
func NewPeriodService(repo repository.PeriodRepository, auditSvc *AuditService, notificationSvc *NotificationService) *PeriodService {
	return &PeriodService{repo: repo, auditSvc: auditSvc, notificationSvc: notificationSvc}
}

// IsClosed reports whether the accounting month owning the date is closed.
// A month that has never been materialized as a period row is open.
func (s *PeriodService) IsClosed(ctx context.Context, date time.Time) (bool, error) {
	period, err := s.repo.FindByYearMonth(ctx, date.Year(), int(date.Month()))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return period.IsClosed(), nil
}

// EnsureOpen fails with ErrPeriodClosed when the date's month is closed
func (s *PeriodService) EnsureOpen(ctx context.Context, date time.Time) error {
	closed, err := s.IsClosed(ctx, date)
	if err != nil {
		return err
	}
	if closed {
		return ErrPeriodClosed
	}
	return nil
}

// MinimumOpenDate returns the first day of the earliest month that may still
// accept documents, derived from the latest closed period. Documents dated
// before it are in locked territory.
func (s *PeriodService) MinimumOpenDate(ctx context.Context) (time.Time, error) {
	latest, err := s.repo.LatestClosed(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if latest == nil {
		return time.Time{}, nil // books never closed; everything is open
	}
	return latest.FirstDay().AddDate(0, 1, 0), nil
}

// Close locks an accounting month. Idempotent close attempts are rejected so
// the audit trail records each close exactly once.
func (s *PeriodService) Close(ctx context.Context, year, month int, actorID uint, ip, userAgent string) (*models.AccountingPeriod, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("invalid month %d", month)
	}
	period, err := s.repo.FindOrCreate(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if period.IsClosed() {
		return nil, ErrInvalidState
	}

	now := time.Now()
	period.Status = models.PeriodStatusClosed
	period.ClosedByUserID = &actorID
	period.ClosedAt = &now
	if err := s.repo.Update(ctx, period); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "CLOSE_PERIOD", "Period", period.ID,
		fmt.Sprintf("Accounting period %s closed", period.Label()), ip, userAgent)

	if s.notificationSvc != nil {
		_ = s.notificationSvc.NotifyPeriodClosed(ctx, period)
	}

	return period, nil
}

// Reopen unlocks a closed month (admin only, enforced at the route)
func (s *PeriodService) Reopen(ctx context.Context, year, month int, actorID uint, ip, userAgent string) (*models.AccountingPeriod, error) {
	period, err := s.repo.FindByYearMonth(ctx, year, month)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !period.IsClosed() {
		return nil, ErrInvalidState
	}

	period.Status = models.PeriodStatusOpen
	period.ClosedByUserID = nil
	period.ClosedAt = nil
	if err := s.repo.Update(ctx, period); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "REOPEN_PERIOD", "Period", period.ID,
		fmt.Sprintf("Accounting period %s reopened", period.Label()), ip, userAgent)

	return period, nil
}

// List returns the period rows for a year (all years when year is 0)
func (s *PeriodService) List(ctx context.Context, year int) ([]models.AccountingPeriod, error) {
	return s.repo.List(ctx, year)
}
