package repository

import (
	"context"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"gorm.io/gorm"
)

// LedgerRepository defines the interface for general-ledger data access.
// Rows are written only by the posting engine and removed only as a unit by
// reference when a posting is reversed.
type LedgerRepository interface {
	CreateBatch(ctx context.Context, entries []models.GeneralLedgerEntry) error
	FindByReference(ctx context.Context, reference string) ([]models.GeneralLedgerEntry, error)
	DeleteByReference(ctx context.Context, reference string) error
	List(ctx context.Context, query *LedgerQuery) ([]models.GeneralLedgerEntry, int64, error)
	AccountTotals(ctx context.Context, from, to time.Time) ([]AccountTotal, error)
}

// LedgerQuery filters general-ledger listings
type LedgerQuery struct {
	*ListQuery
	AccountNumber string
	Module        string
	Reference     string
	DateFrom      string
	DateTo        string
}

// AccountTotal is one row of a trial-balance projection
type AccountTotal struct {
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
}

type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) CreateBatch(ctx context.Context, entries []models.GeneralLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *ledgerRepository) FindByReference(ctx context.Context, reference string) ([]models.GeneralLedgerEntry, error) {
	var entries []models.GeneralLedgerEntry
	err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

func (r *ledgerRepository) DeleteByReference(ctx context.Context, reference string) error {
	return r.db.WithContext(ctx).
		Where("reference = ?", reference).
		Delete(&models.GeneralLedgerEntry{}).Error
}

func (r *ledgerRepository) List(ctx context.Context, query *LedgerQuery) ([]models.GeneralLedgerEntry, int64, error) {
	var entries []models.GeneralLedgerEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&models.GeneralLedgerEntry{})

	if query.AccountNumber != "" {
		db = db.Where("account_number = ?", query.AccountNumber)
	}
	if query.Module != "" {
		db = db.Where("module = ?", query.Module)
	}
	if query.Reference != "" {
		db = db.Where("reference = ?", query.Reference)
	}
	if query.DateFrom != "" {
		db = db.Where("date >= ?", query.DateFrom)
	}
	if query.DateTo != "" {
		db = db.Where("date <= ?", query.DateTo)
	}

	db.Count(&total)
	db = db.Order("date ASC, reference ASC, id ASC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&entries).Error
	return entries, total, err
}

func (r *ledgerRepository) AccountTotals(ctx context.Context, from, to time.Time) ([]AccountTotal, error) {
	var totals []AccountTotal
	err := r.db.WithContext(ctx).
		Model(&models.GeneralLedgerEntry{}).
		Select("account_number, account_name, COALESCE(SUM(debit), 0) as debit, COALESCE(SUM(credit), 0) as credit").
		Where("date >= ? AND date <= ?", from, to).
		Group("account_number, account_name").
		Order("account_number ASC").
		Scan(&totals).Error
	return totals, err
}
