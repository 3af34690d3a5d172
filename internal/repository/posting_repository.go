package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostingRepository is the transactional boundary of the posting engine.
// Every state change driven by posting (status update, ledger rows, audit
// trail, amortization fan-out) happens against a single PostingTx and is
// committed or rolled back as a unit.
type PostingRepository interface {
	WithTx(ctx context.Context, fn func(tx PostingTx) error) error
}

// PostingTx exposes the writes the posting engine is allowed to make inside
// one database transaction.
type PostingTx interface {
	// GetVoucherForUpdate loads the header with details under a row lock, so
	// the status precondition acts as a compare-and-swap between concurrent
	// posting attempts.
	GetVoucherForUpdate(ctx context.Context, id uint) (*models.VoucherHeader, error)
	UpdateVoucher(ctx context.Context, voucher *models.VoucherHeader) error
	CreateVoucherWithDetails(ctx context.Context, voucher *models.VoucherHeader) error
	InsertLedgerEntries(ctx context.Context, entries []models.GeneralLedgerEntry) error
	DeleteLedgerEntriesByReference(ctx context.Context, reference string) error
	IsPeriodClosed(ctx context.Context, date time.Time) (bool, error)
	AccountExists(ctx context.Context, accountNumber string) (bool, error)
	GetAmortizationSetting(ctx context.Context, voucherID uint) (*models.AmortizationSetting, error)
	UpdateAmortizationSetting(ctx context.Context, setting *models.AmortizationSetting) error
	AppendAuditLog(ctx context.Context, log *models.AuditLog) error
}

type postingRepository struct {
	db *gorm.DB
}

// NewPostingRepository creates a new posting repository
func NewPostingRepository(db *gorm.DB) PostingRepository {
	return &postingRepository{db: db}
}

func (r *postingRepository) WithTx(ctx context.Context, fn func(tx PostingTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postingTx{db: tx})
	})
}

type postingTx struct {
	db *gorm.DB
}

func (t *postingTx) GetVoucherForUpdate(ctx context.Context, id uint) (*models.VoucherHeader, error) {
	var voucher models.VoucherHeader
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&voucher, id).Error
	if err != nil {
		return nil, err
	}
	// Details loaded separately; FOR UPDATE does not apply across the join.
	if err := t.db.WithContext(ctx).
		Where("voucher_id = ?", id).
		Order("id ASC").
		Find(&voucher.Details).Error; err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (t *postingTx) UpdateVoucher(ctx context.Context, voucher *models.VoucherHeader) error {
	return t.db.WithContext(ctx).Omit("Details").Save(voucher).Error
}

func (t *postingTx) CreateVoucherWithDetails(ctx context.Context, voucher *models.VoucherHeader) error {
	return t.db.WithContext(ctx).Create(voucher).Error
}

func (t *postingTx) InsertLedgerEntries(ctx context.Context, entries []models.GeneralLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return t.db.WithContext(ctx).Create(&entries).Error
}

func (t *postingTx) DeleteLedgerEntriesByReference(ctx context.Context, reference string) error {
	return t.db.WithContext(ctx).
		Where("reference = ?", reference).
		Delete(&models.GeneralLedgerEntry{}).Error
}

func (t *postingTx) IsPeriodClosed(ctx context.Context, date time.Time) (bool, error) {
	var period models.AccountingPeriod
	err := t.db.WithContext(ctx).
		Where("year = ? AND month = ?", date.Year(), int(date.Month())).
		First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return period.IsClosed(), nil
}

func (t *postingTx) AccountExists(ctx context.Context, accountNumber string) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).
		Model(&models.ChartOfAccount{}).
		Where("account_number = ? AND active = true", accountNumber).
		Count(&count).Error
	return count > 0, err
}

func (t *postingTx) GetAmortizationSetting(ctx context.Context, voucherID uint) (*models.AmortizationSetting, error) {
	var setting models.AmortizationSetting
	err := t.db.WithContext(ctx).
		Where("voucher_id = ?", voucherID).
		First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (t *postingTx) UpdateAmortizationSetting(ctx context.Context, setting *models.AmortizationSetting) error {
	return t.db.WithContext(ctx).Save(setting).Error
}

func (t *postingTx) AppendAuditLog(ctx context.Context, log *models.AuditLog) error {
	return t.db.WithContext(ctx).Create(log).Error
}
