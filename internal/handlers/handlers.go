package handlers

import (
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/ledgerbooks/ledgerbooks-api/internal/services"
	"github.com/ledgerbooks/ledgerbooks-api/internal/storage"
)

// Handlers holds all handler instances
type Handlers struct {
	Health       *HealthHandler
	Auth         *AuthHandler
	User         *UserHandler
	Voucher      *VoucherHandler
	Ledger       *LedgerHandler
	Period       *PeriodHandler
	Account      *AccountHandler
	SubAccount   *SubAccountHandler
	Notification *NotificationHandler
	Audit        *AuditHandler
	Job          *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, repos *repository.Repositories, storage *storage.LocalStorage) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(),
		Auth:         NewAuthHandler(svcs.Auth),
		User:         NewUserHandler(svcs.User),
		Voucher:      NewVoucherHandler(svcs.Voucher, svcs.Posting, storage),
		Ledger:       NewLedgerHandler(repos.Ledger, svcs.Report, svcs.Export),
		Period:       NewPeriodHandler(svcs.Period),
		Account:      NewAccountHandler(svcs.Account),
		SubAccount:   NewSubAccountHandler(svcs.SubAccount),
		Notification: NewNotificationHandler(svcs.Notification),
		Audit:        NewAuditHandler(svcs.Audit),
		Job:          NewJobHandler(svcs.Job),
	}
}
