package services

import (
	"context"
	"fmt"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
)

// NotificationService creates in-app notification rows and fans the
// document-lifecycle ones out by email. Email failures never fail the
// notifying operation.
type NotificationService struct {
	repo     repository.NotificationRepository
	userRepo repository.UserRepository
	emailSvc *EmailService
}

// NewNotificationService creates a new notification service
func NewNotificationService(repo repository.NotificationRepository, userRepo repository.UserRepository, emailSvc *EmailService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, emailSvc: emailSvc}
}

func (s *NotificationService) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *NotificationService) FindByUser(ctx context.Context, userID uint, query *repository.ListQuery) ([]models.Notification, int64, error) {
	return s.repo.FindByUser(ctx, userID, query)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, id uint) error {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	notification.MarkAsRead()
	return s.repo.Update(ctx, notification)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

// NotifyUser creates a notification for a single user
func (s *NotificationService) NotifyUser(ctx context.Context, userID uint, title, message, notifType string) error {
	notification := &models.Notification{
		UserID:           userID,
		Title:            title,
		Message:          message,
		NotificationType: &notifType,
	}
	return s.repo.Create(ctx, notification)
}

// NotifyAdmins creates a notification for every active admin
func (s *NotificationService) NotifyAdmins(ctx context.Context, title, message, notifType string) error {
	if s.userRepo == nil {
		return nil
	}
	admins, err := s.userRepo.FindAdmins(ctx)
	if err != nil {
		return err
	}
	for _, admin := range admins {
		if err := s.NotifyUser(ctx, admin.ID, title, message, notifType); err != nil {
			return err
		}
	}
	return nil
}

// NotifyAccountants creates a notification for active admins and accountants
func (s *NotificationService) NotifyAccountants(ctx context.Context, title, message, notifType string) error {
	if s.userRepo == nil {
		return nil
	}
	users, err := s.userRepo.FindAccountants(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if err := s.NotifyUser(ctx, u.ID, title, message, notifType); err != nil {
			return err
		}
	}
	return nil
}

// NotifyVoucherSubmitted alerts approvers in-app and by email
func (s *NotificationService) NotifyVoucherSubmitted(ctx context.Context, voucher *models.VoucherHeader) error {
	if s.userRepo == nil {
		return nil
	}
	users, err := s.userRepo.FindAccountants(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if err := s.NotifyUser(ctx, users[i].ID, "Voucher pending approval",
			fmt.Sprintf("Voucher %s is waiting for approval", voucher.Number),
			models.NotificationTypeVoucherSubmitted); err != nil {
			return err
		}
		if s.emailSvc != nil {
			_ = s.emailSvc.SendVoucherSubmitted(ctx, &users[i], voucher)
		}
	}
	return nil
}

// NotifyVoucherPosted tells the voucher's creator their document hit the ledger
func (s *NotificationService) NotifyVoucherPosted(ctx context.Context, voucher *models.VoucherHeader) error {
	if err := s.NotifyUser(ctx, voucher.CreatedByUserID, "Voucher posted",
		fmt.Sprintf("Voucher %s has been posted to the general ledger", voucher.Number),
		models.NotificationTypeVoucherPosted); err != nil {
		return err
	}
	if s.emailSvc != nil && s.userRepo != nil {
		if creator, err := s.userRepo.FindByID(ctx, voucher.CreatedByUserID); err == nil {
			_ = s.emailSvc.SendVoucherPosted(ctx, creator, voucher)
		}
	}
	return nil
}

// NotifyPeriodClosed tells accountants the month is locked
func (s *NotificationService) NotifyPeriodClosed(ctx context.Context, period *models.AccountingPeriod) error {
	if s.userRepo == nil {
		return nil
	}
	users, err := s.userRepo.FindAccountants(ctx)
	if err != nil {
		return err
	}
	for i := range users {
		if err := s.NotifyUser(ctx, users[i].ID, "Period closed",
			fmt.Sprintf("Accounting period %s has been closed. Documents dated within it are locked.", period.Label()),
			models.NotificationTypePeriodClosed); err != nil {
			return err
		}
		if s.emailSvc != nil {
			_ = s.emailSvc.SendPeriodClosed(ctx, &users[i], period)
		}
	}
	return nil
}
