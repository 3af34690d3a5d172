package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"gorm.io/gorm"
)

// PeriodRepository defines the interface for accounting period data access
type PeriodRepository interface {
	FindByYearMonth(ctx context.Context, year, month int) (*models.AccountingPeriod, error)
	FindOrCreate(ctx context.Context, year, month int) (*models.AccountingPeriod, error)
	Update(ctx context.Context, period *models.AccountingPeriod) error
	List(ctx context.Context, year int) ([]models.AccountingPeriod, error)
	LatestClosed(ctx context.Context) (*models.AccountingPeriod, error)
}

type periodRepository struct {
	db *gorm.DB
}

// NewPeriodRepository creates a new period repository
func NewPeriodRepository(db *gorm.DB) PeriodRepository {
	return &periodRepository{db: db}
}

func (r *periodRepository) FindByYearMonth(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
	var period models.AccountingPeriod
	err := r.db.WithContext(ctx).
		Where("year = ? AND month = ?", year, month).
		First(&period).Error
	if err != nil {
		return nil, err
	}
	return &period, nil
}

func (r *periodRepository) FindOrCreate(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
	period, err := r.FindByYearMonth(ctx, year, month)
	if err == nil {
		return period, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	period = &models.AccountingPeriod{
		Year:   year,
		Month:  month,
		Status: models.PeriodStatusOpen,
	}
	if err := r.db.WithContext(ctx).Create(period).Error; err != nil {
		return nil, err
	}
	return period, nil
}

func (r *periodRepository) Update(ctx context.Context, period *models.AccountingPeriod) error {
	return r.db.WithContext(ctx).Save(period).Error
}

func (r *periodRepository) List(ctx context.Context, year int) ([]models.AccountingPeriod, error) {
	var periods []models.AccountingPeriod
	db := r.db.WithContext(ctx).Preload("ClosedBy")
	if year > 0 {
		db = db.Where("year = ?", year)
	}
	err := db.Order("year DESC, month DESC").Find(&periods).Error
	return periods, err
}

// LatestClosed returns the most recent closed period, or nil when the books
// have never been closed.
func (r *periodRepository) LatestClosed(ctx context.Context) (*models.AccountingPeriod, error) {
	var period models.AccountingPeriod
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PeriodStatusClosed).
		Order("year DESC, month DESC").
		First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &period, nil
}

// IsDateClosed is a convenience predicate over FindByYearMonth. A month with
// no period row has never been closed.
func IsDateClosed(ctx context.Context, repo PeriodRepository, date time.Time) (bool, error) {
	period, err := repo.FindByYearMonth(ctx, date.Year(), int(date.Month()))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return period.IsClosed(), nil
}
