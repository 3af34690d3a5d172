package services

import (
	"github.com/ledgerbooks/ledgerbooks-api/internal/config"
	"github.com/ledgerbooks/ledgerbooks-api/internal/jobs"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/ledgerbooks/ledgerbooks-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	Voucher      *VoucherService
	Posting      *PostingService
	Period       *PeriodService
	Account      *AccountService
	SubAccount   *SubAccountService
	Notification *NotificationService
	Report       *ReportService
	Export       *ExportService
	Audit        *AuditService
	Email        *EmailService
	Job          *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, storage *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	emailSvc := NewEmailService(cfg)
	notificationSvc := NewNotificationService(repos.Notification, repos.User, emailSvc)
	auditSvc := NewAuditService(db)

	periodSvc := NewPeriodService(repos.Period, auditSvc, notificationSvc)
	resolver := NewSubAccountResolver(repos.SubAccount)
	jobSvc := NewJobService(worker)

	return &Services{
		Auth:         NewAuthService(repos.User, repos.RefreshToken, cfg),
		User:         NewUserService(repos.User, emailSvc, auditSvc),
		Voucher:      NewVoucherService(repos.Voucher, repos.Amortization, repos.Account, periodSvc, resolver, notificationSvc, auditSvc, storage, worker),
		Posting:      NewPostingService(repos.Posting, notificationSvc, worker),
		Period:       periodSvc,
		Account:      NewAccountService(repos.Account, auditSvc),
		SubAccount:   NewSubAccountService(repos.SubAccount),
		Notification: notificationSvc,
		Report:       NewReportService(repos.Voucher, repos.Ledger),
		Export:       NewExportService(repos.Ledger),
		Audit:        auditSvc,
		Email:        emailSvc,
		Job:          jobSvc,
	}
}
