package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Voucher      VoucherRepository
	Ledger       LedgerRepository
	Period       PeriodRepository
	Account      AccountRepository
	SubAccount   SubAccountRepository
	Amortization AmortizationRepository
	Posting      PostingRepository
	Notification NotificationRepository
	RefreshToken RefreshTokenRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Voucher:      NewVoucherRepository(db),
		Ledger:       NewLedgerRepository(db),
		Period:       NewPeriodRepository(db),
		Account:      NewAccountRepository(db),
		SubAccount:   NewSubAccountRepository(db),
		Amortization: NewAmortizationRepository(db),
		Posting:      NewPostingRepository(db),
		Notification: NewNotificationRepository(db),
		RefreshToken: NewRefreshTokenRepository(db),
	}
}
