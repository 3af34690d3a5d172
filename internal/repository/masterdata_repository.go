package repository

import (
	"context"
	"errors"

	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"gorm.io/gorm"
)

// AccountRepository defines the interface for chart-of-accounts data access
type AccountRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ChartOfAccount, error)
	FindByNumber(ctx context.Context, number string) (*models.ChartOfAccount, error)
	Create(ctx context.Context, account *models.ChartOfAccount) error
	Update(ctx context.Context, account *models.ChartOfAccount) error
	List(ctx context.Context, query *ListQuery) ([]models.ChartOfAccount, int64, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new chart-of-accounts repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) FindByID(ctx context.Context, id uint) (*models.ChartOfAccount, error) {
	var account models.ChartOfAccount
	err := r.db.WithContext(ctx).First(&account, id).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) FindByNumber(ctx context.Context, number string) (*models.ChartOfAccount, error) {
	var account models.ChartOfAccount
	err := r.db.WithContext(ctx).
		Where("account_number = ?", number).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *models.ChartOfAccount) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		if isDuplicateKeyError(err, "idx_chart_of_accounts_account_number") {
			return errors.New("an account with this number already exists")
		}
		return err
	}
	return nil
}

func (r *accountRepository) Update(ctx context.Context, account *models.ChartOfAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *accountRepository) List(ctx context.Context, query *ListQuery) ([]models.ChartOfAccount, int64, error) {
	var accounts []models.ChartOfAccount
	var total int64

	db := r.db.WithContext(ctx).Model(&models.ChartOfAccount{})

	if query.Search != "" {
		search := "%" + query.Search + "%"
		db = db.Where("account_number ILIKE ? OR account_name ILIKE ?", search, search)
	}
	if query.Filters["account_type"] != "" {
		db = db.Where("account_type = ?", query.Filters["account_type"])
	}
	if query.Filters["active"] != "" {
		db = db.Where("active = ?", query.Filters["active"] == "true")
	}

	db.Count(&total)
	db = db.Order("account_number ASC")

	if query.PerPage > 0 {
		db = db.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}

	err := db.Find(&accounts).Error
	return accounts, total, err
}

func (r *accountRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ChartOfAccount{}).
		Where("account_number = ? AND active = true", number).
		Count(&count).Error
	return count > 0, err
}

// SubAccountRepository resolves sub-account references to display names. The
// lookup varies over the master tables; a missing row is reported as
// gorm.ErrRecordNotFound and tolerated by callers.
type SubAccountRepository interface {
	ResolveName(ctx context.Context, kind models.SubAccountKind, id uint) (string, error)
	ListSuppliers(ctx context.Context, query *ListQuery) ([]models.Supplier, int64, error)
	ListCustomers(ctx context.Context, query *ListQuery) ([]models.Customer, int64, error)
	ListEmployees(ctx context.Context, query *ListQuery) ([]models.Employee, int64, error)
	ListBanks(ctx context.Context, query *ListQuery) ([]models.Bank, int64, error)
	ListCompanies(ctx context.Context, query *ListQuery) ([]models.Company, int64, error)
}

type subAccountRepository struct {
	db *gorm.DB
}

// NewSubAccountRepository creates a new sub-account repository
func NewSubAccountRepository(db *gorm.DB) SubAccountRepository {
	return &subAccountRepository{db: db}
}

func (r *subAccountRepository) ResolveName(ctx context.Context, kind models.SubAccountKind, id uint) (string, error) {
	db := r.db.WithContext(ctx)
	switch kind {
	case models.SubAccountSupplier:
		var m models.Supplier
		if err := db.First(&m, id).Error; err != nil {
			return "", err
		}
		return m.Name, nil
	case models.SubAccountCustomer:
		var m models.Customer
		if err := db.First(&m, id).Error; err != nil {
			return "", err
		}
		return m.Name, nil
	case models.SubAccountEmployee:
		var m models.Employee
		if err := db.First(&m, id).Error; err != nil {
			return "", err
		}
		return m.FullName, nil
	case models.SubAccountBank:
		var m models.Bank
		if err := db.First(&m, id).Error; err != nil {
			return "", err
		}
		return m.Name, nil
	case models.SubAccountCompany:
		var m models.Company
		if err := db.First(&m, id).Error; err != nil {
			return "", err
		}
		return m.Name, nil
	}
	return "", gorm.ErrRecordNotFound
}

func listMaster[T any](ctx context.Context, db *gorm.DB, query *ListQuery, nameColumn string) ([]T, int64, error) {
	var rows []T
	var total int64

	var model T
	q := db.WithContext(ctx).Model(&model)
	if query.Search != "" {
		q = q.Where(nameColumn+" ILIKE ?", "%"+query.Search+"%")
	}
	if query.Filters["active"] != "" {
		q = q.Where("active = ?", query.Filters["active"] == "true")
	}

	q.Count(&total)
	q = q.Order(nameColumn + " ASC")
	if query.PerPage > 0 {
		q = q.Offset((query.Page - 1) * query.PerPage).Limit(query.PerPage)
	}
	err := q.Find(&rows).Error
	return rows, total, err
}

func (r *subAccountRepository) ListSuppliers(ctx context.Context, query *ListQuery) ([]models.Supplier, int64, error) {
	return listMaster[models.Supplier](ctx, r.db, query, "name")
}

func (r *subAccountRepository) ListCustomers(ctx context.Context, query *ListQuery) ([]models.Customer, int64, error) {
	return listMaster[models.Customer](ctx, r.db, query, "name")
}

func (r *subAccountRepository) ListEmployees(ctx context.Context, query *ListQuery) ([]models.Employee, int64, error) {
	return listMaster[models.Employee](ctx, r.db, query, "full_name")
}

func (r *subAccountRepository) ListBanks(ctx context.Context, query *ListQuery) ([]models.Bank, int64, error) {
	return listMaster[models.Bank](ctx, r.db, query, "name")
}

func (r *subAccountRepository) ListCompanies(ctx context.Context, query *ListQuery) ([]models.Company, int64, error) {
	return listMaster[models.Company](ctx, r.db, query, "name")
}
