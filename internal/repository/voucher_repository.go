package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"gorm.io/gorm"
)

// VoucherRepository defines the interface for voucher data access
type VoucherRepository interface {
	FindByID(ctx context.Context, id uint) (*models.VoucherHeader, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*models.VoucherHeader, error)
	FindByNumber(ctx context.Context, number string) (*models.VoucherHeader, error)
	Create(ctx context.Context, voucher *models.VoucherHeader) error
	Update(ctx context.Context, voucher *models.VoucherHeader) error
	ReplaceDetails(ctx context.Context, voucherID uint, details []models.VoucherDetail) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *VoucherQuery) ([]models.VoucherHeader, int64, error)
	CountByTypeAndYear(ctx context.Context, voucherType string, year int) (int64, error)
	FindSubmitted(ctx context.Context) ([]models.VoucherHeader, error)
	FindStaleDrafts(ctx context.Context, olderThan time.Time) ([]models.VoucherHeader, error)
}

// VoucherQuery extends ListQuery with voucher-specific filters
type VoucherQuery struct {
	*ListQuery
	VoucherType string
	Status      string
	DateFrom    string
	DateTo      string
}

type voucherRepository struct {
	db *gorm.DB
}

// NewVoucherRepository creates a new voucher repository
func NewVoucherRepository(db *gorm.DB) VoucherRepository {
	return &voucherRepository{db: db}
}

func (r *voucherRepository) FindByID(ctx context.Context, id uint) (*models.VoucherHeader, error) {
	var voucher models.VoucherHeader
	err := r.db.WithContext(ctx).First(&voucher, id).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) FindByIDWithDetails(ctx context.Context, id uint) (*models.VoucherHeader, error) {
	var voucher models.VoucherHeader
	err := r.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("CreatedBy").
		Preload("ApprovedBy").
		Preload("PostedBy").
		Preload("Amortization").
		First(&voucher, id).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) FindByNumber(ctx context.Context, number string) (*models.VoucherHeader, error) {
	var voucher models.VoucherHeader
	err := r.db.WithContext(ctx).
		Preload("Details").
		Where("number = ?", number).
		First(&voucher).Error
	if err != nil {
		return nil, err
	}
	return &voucher, nil
}

func (r *voucherRepository) Create(ctx context.Context, voucher *models.VoucherHeader) error {
	if err := r.db.WithContext(ctx).Create(voucher).Error; err != nil {
		if isDuplicateKeyError(err, "idx_voucher_headers_number") {
			return errors.New("a voucher with this number already exists")
		}
		return err
	}
	return nil
}

func (r *voucherRepository) Update(ctx context.Context, voucher *models.VoucherHeader) error {
	// Save without touching details; line replacement goes through ReplaceDetails.
	return r.db.WithContext(ctx).Omit("Details").Save(voucher).Error
}

// ReplaceDetails swaps the full detail-line set of a voucher in one transaction.
func (r *voucherRepository) ReplaceDetails(ctx context.Context, voucherID uint, details []models.VoucherDetail) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("voucher_id = ?", voucherID).
			Delete(&models.VoucherDetail{}).Error; err != nil {
			return err
		}
		for i := range details {
			details[i].ID = 0
			details[i].VoucherID = voucherID
		}
		if len(details) == 0 {
			return nil
		}
		return tx.Create(&details).Error
	})
}

func (r *voucherRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("voucher_id = ?", id).
			Delete(&models.VoucherDetail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.VoucherHeader{}, id).Error
	})
}

func (r *voucherRepository) List(ctx context.Context, query *VoucherQuery) ([]models.VoucherHeader, int64, error) {
	var vouchers []models.VoucherHeader
	var total int64

	db := r.db.WithContext(ctx).Model(&models.VoucherHeader{})

	if query.VoucherType != "" {
		db = db.Where("voucher_type = ?", query.VoucherType)
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.DateFrom != "" {
		db = db.Where("date >= ?", query.DateFrom)
	}
	if query.DateTo != "" {
		db = db.Where("date <= ?", query.DateTo)
	}
	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("number ILIKE ? OR payee ILIKE ? OR particulars ILIKE ?",
			search, search, search)
	}

	db.Count(&total)

	if query.SortBy != "" {
		column := query.SortBy
		// Whitelist sortable columns to keep user input out of the ORDER BY.
		switch column {
		case "number", "date", "total", "status", "created_at":
		default:
			column = "date"
		}
		if strings.ToLower(query.SortDir) == "asc" {
			db = db.Order(column + " ASC")
		} else {
			db = db.Order(column + " DESC")
		}
	} else {
		db = db.Order("date DESC, number DESC")
	}

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Preload("Details").Preload("CreatedBy").Find(&vouchers).Error
	return vouchers, total, err
}

func (r *voucherRepository) CountByTypeAndYear(ctx context.Context, voucherType string, year int) (int64, error) {
	var count int64
	start := fmt.Sprintf("%04d-01-01", year)
	end := fmt.Sprintf("%04d-01-01", year+1)
	err := r.db.WithContext(ctx).
		Model(&models.VoucherHeader{}).
		Where("voucher_type = ? AND date >= ? AND date < ?", voucherType, start, end).
		Count(&count).Error
	return count, err
}

func (r *voucherRepository) FindSubmitted(ctx context.Context) ([]models.VoucherHeader, error) {
	var vouchers []models.VoucherHeader
	err := r.db.WithContext(ctx).
		Where("status = ?", models.VoucherStatusSubmitted).
		Order("date ASC").
		Find(&vouchers).Error
	return vouchers, err
}

func (r *voucherRepository) FindStaleDrafts(ctx context.Context, olderThan time.Time) ([]models.VoucherHeader, error) {
	var vouchers []models.VoucherHeader
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", models.VoucherStatusDraft, olderThan).
		Find(&vouchers).Error
	return vouchers, err
}

// AmortizationRepository defines the interface for amortization settings
type AmortizationRepository interface {
	FindByVoucherID(ctx context.Context, voucherID uint) (*models.AmortizationSetting, error)
	Create(ctx context.Context, setting *models.AmortizationSetting) error
	Update(ctx context.Context, setting *models.AmortizationSetting) error
}

type amortizationRepository struct {
	db *gorm.DB
}

// NewAmortizationRepository creates a new amortization repository
func NewAmortizationRepository(db *gorm.DB) AmortizationRepository {
	return &amortizationRepository{db: db}
}

func (r *amortizationRepository) FindByVoucherID(ctx context.Context, voucherID uint) (*models.AmortizationSetting, error) {
	var setting models.AmortizationSetting
	err := r.db.WithContext(ctx).
		Where("voucher_id = ?", voucherID).
		First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *amortizationRepository) Create(ctx context.Context, setting *models.AmortizationSetting) error {
	return r.db.WithContext(ctx).Create(setting).Error
}

func (r *amortizationRepository) Update(ctx context.Context, setting *models.AmortizationSetting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Notification, error)
	FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Notification, int64, error)
	Create(ctx context.Context, notification *models.Notification) error
	Update(ctx context.Context, notification *models.Notification) error
	Delete(ctx context.Context, id uint) error
	MarkAllAsRead(ctx context.Context, userID uint) error
	CountUnread(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) FindByID(ctx context.Context, id uint) (*models.Notification, error) {
	var notification models.Notification
	err := r.db.WithContext(ctx).First(&notification, id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *notificationRepository) FindByUser(ctx context.Context, userID uint, query *ListQuery) ([]models.Notification, int64, error) {
	var notifications []models.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)

	if status, ok := query.Filters["status"]; ok && status != "" {
		switch strings.ToLower(status) {
		case "unread":
			db = db.Where("read_at IS NULL")
		case "read":
			db = db.Where("read_at IS NOT NULL")
		}
	}

	db.Count(&total)
	db = db.Order("created_at DESC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&notifications).Error
	return notifications, total, err
}

func (r *notificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Create(notification).Error
}

func (r *notificationRepository) Update(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Save(notification).Error
}

func (r *notificationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Notification{}, id).Error
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", now).Error
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}
