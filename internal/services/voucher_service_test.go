package services

import (
	"context"
	"testing"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/jobs"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockVoucherRepo struct {
	repository.VoucherRepository
	mockFindByIDWithDetails func(ctx context.Context, id uint) (*models.VoucherHeader, error)
	mockCreate              func(ctx context.Context, voucher *models.VoucherHeader) error
	mockUpdate              func(ctx context.Context, voucher *models.VoucherHeader) error
	mockReplaceDetails      func(ctx context.Context, voucherID uint, details []models.VoucherDetail) error
	mockCountByTypeAndYear  func(ctx context.Context, voucherType string, year int) (int64, error)
	mockFindSubmitted       func(ctx context.Context) ([]models.VoucherHeader, error)
	mockFindStaleDrafts     func(ctx context.Context, olderThan time.Time) ([]models.VoucherHeader, error)
}

func (m *mockVoucherRepo) FindByIDWithDetails(ctx context.Context, id uint) (*models.VoucherHeader, error) {
	return m.mockFindByIDWithDetails(ctx, id)
}

func (m *mockVoucherRepo) Create(ctx context.Context, voucher *models.VoucherHeader) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, voucher)
	}
	return nil
}

func (m *mockVoucherRepo) Update(ctx context.Context, voucher *models.VoucherHeader) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, voucher)
	}
	return nil
}

func (m *mockVoucherRepo) ReplaceDetails(ctx context.Context, voucherID uint, details []models.VoucherDetail) error {
	if m.mockReplaceDetails != nil {
		return m.mockReplaceDetails(ctx, voucherID, details)
	}
	return nil
}

func (m *mockVoucherRepo) CountByTypeAndYear(ctx context.Context, voucherType string, year int) (int64, error) {
	if m.mockCountByTypeAndYear != nil {
		return m.mockCountByTypeAndYear(ctx, voucherType, year)
	}
	return 0, nil
}

func (m *mockVoucherRepo) FindSubmitted(ctx context.Context) ([]models.VoucherHeader, error) {
	return m.mockFindSubmitted(ctx)
}

func (m *mockVoucherRepo) FindStaleDrafts(ctx context.Context, olderThan time.Time) ([]models.VoucherHeader, error) {
	return m.mockFindStaleDrafts(ctx, olderThan)
}

type mockAmortizationRepo struct {
	repository.AmortizationRepository
	mockFindByVoucherID func(ctx context.Context, voucherID uint) (*models.AmortizationSetting, error)
	mockCreate          func(ctx context.Context, setting *models.AmortizationSetting) error
}

func (m *mockAmortizationRepo) FindByVoucherID(ctx context.Context, voucherID uint) (*models.AmortizationSetting, error) {
	return m.mockFindByVoucherID(ctx, voucherID)
}

func (m *mockAmortizationRepo) Create(ctx context.Context, setting *models.AmortizationSetting) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, setting)
	}
	return nil
}

type mockAccountRepo struct {
	repository.AccountRepository
	mockExistsByNumber func(ctx context.Context, number string) (bool, error)
}

func (m *mockAccountRepo) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	if m.mockExistsByNumber != nil {
		return m.mockExistsByNumber(ctx, number)
	}
	return true, nil
}

type mockPeriodRepo struct {
	repository.PeriodRepository
	mockFindByYearMonth func(ctx context.Context, year, month int) (*models.AccountingPeriod, error)
}

func (m *mockPeriodRepo) FindByYearMonth(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
	return m.mockFindByYearMonth(ctx, year, month)
}

type mockSubAccountRepo struct {
	repository.SubAccountRepository
	mockResolveName func(ctx context.Context, kind models.SubAccountKind, id uint) (string, error)
}

func (m *mockSubAccountRepo) ResolveName(ctx context.Context, kind models.SubAccountKind, id uint) (string, error) {
	if m.mockResolveName != nil {
		return m.mockResolveName(ctx, kind, id)
	}
	return "", nil
}

type voucherServiceFixture struct {
	svc       *VoucherService
	repo      *mockVoucherRepo
	amortRepo *mockAmortizationRepo
	worker    *jobs.Worker
}

func newVoucherServiceFixture(closedMonths map[string]bool) *voucherServiceFixture {
	repo := &mockVoucherRepo{}
	amortRepo := &mockAmortizationRepo{}
	accountRepo := &mockAccountRepo{}
	periodRepo := &mockPeriodRepo{
		mockFindByYearMonth: func(ctx context.Context, year, month int) (*models.AccountingPeriod, error) {
			key := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
			if closedMonths[key] {
				now := time.Now()
				return &models.AccountingPeriod{Year: year, Month: month, Status: models.PeriodStatusClosed, ClosedAt: &now}, nil
			}
			return &models.AccountingPeriod{Year: year, Month: month, Status: models.PeriodStatusOpen}, nil
		},
	}
	periodSvc := NewPeriodService(periodRepo, nil, nil)
	resolver := NewSubAccountResolver(&mockSubAccountRepo{})
	notifSvc := NewNotificationService(&mockNotificationRepo{}, nil, nil)
	worker := jobs.NewWorker(1)

	svc := NewVoucherService(repo, amortRepo, accountRepo, periodSvc, resolver, notifSvc, nil, nil, worker)
	return &voucherServiceFixture{svc: svc, repo: repo, amortRepo: amortRepo, worker: worker}
}

func draftCheckInput() *CreateVoucherInput {
	payee := "ACME Supplies Ltd"
	return &CreateVoucherInput{
		VoucherType: models.VoucherTypeCheck,
		Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Payee:       &payee,
		Details: []models.VoucherDetail{
			{AccountNumber: "5100", AccountName: "Supplies Expense", Debit: 200},
			{AccountNumber: "1010", AccountName: "Cash in Bank", Credit: 200},
		},
	}
}

func TestVoucherService_Create(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	f.repo.mockCountByTypeAndYear = func(ctx context.Context, voucherType string, year int) (int64, error) {
		return 41, nil
	}
	var created *models.VoucherHeader
	f.repo.mockCreate = func(ctx context.Context, voucher *models.VoucherHeader) error {
		voucher.ID = 10
		created = voucher
		return nil
	}

	voucher, err := f.svc.Create(context.Background(), draftCheckInput(), 7, "", "")
	require.NoError(t, err)
	assert.Equal(t, "CV-2026-000042", voucher.Number)
	assert.Equal(t, models.VoucherStatusDraft, voucher.Status)
	assert.Equal(t, 200.0, voucher.Total)
	assert.Equal(t, uint(7), voucher.CreatedByUserID)
	assert.Same(t, created, voucher)
}

func TestVoucherService_Create_ClosedPeriod(t *testing.T) {
	f := newVoucherServiceFixture(map[string]bool{"2026-03": true})
	defer f.worker.Shutdown()

	_, err := f.svc.Create(context.Background(), draftCheckInput(), 7, "", "")
	assert.ErrorIs(t, err, ErrPeriodClosed)
}

func TestVoucherService_Create_EmptyDetails(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	input := draftCheckInput()
	input.Details = nil
	_, err := f.svc.Create(context.Background(), input, 7, "", "")
	assert.ErrorIs(t, err, ErrEmptyDetails)
}

func TestVoucherService_Create_AmortizationSetting(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	f.repo.mockCreate = func(ctx context.Context, voucher *models.VoucherHeader) error {
		voucher.ID = 11
		return nil
	}
	var saved *models.AmortizationSetting
	f.amortRepo.mockCreate = func(ctx context.Context, setting *models.AmortizationSetting) error {
		saved = setting
		return nil
	}

	kind := models.JournalKindAmortization
	input := draftCheckInput()
	input.VoucherType = models.VoucherTypeJournal
	input.JournalKind = &kind
	input.Amortization = &AmortizationInput{
		StartDate:       time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		OccurrenceTotal: 6,
	}

	_, err := f.svc.Create(context.Background(), input, 7, "", "")
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, uint(11), saved.VoucherID)
	assert.Equal(t, 6, saved.OccurrenceTotal)
	assert.Equal(t, 5, saved.OccurrenceRemaining)
	assert.True(t, saved.Active)
	// End date lands on the clamped last occurrence month.
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), saved.EndDate)
}

func TestVoucherService_Update_ResetsApprovals(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	approvedBy := uint(3)
	approvedAt := time.Now()
	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.VoucherHeader, error) {
		return &models.VoucherHeader{
			ID:               id,
			Number:           "CV-2026-000001",
			VoucherType:      models.VoucherTypeCheck,
			Date:             time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Status:           models.VoucherStatusApproved,
			ApprovedByUserID: &approvedBy,
			ApprovedAt:       &approvedAt,
			Details: []models.VoucherDetail{
				{AccountNumber: "5100", Debit: 200},
				{AccountNumber: "1010", Credit: 200},
			},
		}, nil
	}

	newPayee := "New Supplier Inc"
	voucher, err := f.svc.Update(context.Background(), 1, &UpdateVoucherInput{Payee: &newPayee}, 7, "", "")
	require.NoError(t, err)

	assert.Equal(t, models.VoucherStatusDraft, voucher.Status)
	assert.Nil(t, voucher.ApprovedByUserID)
	assert.Nil(t, voucher.ApprovedAt)
	assert.Equal(t, "New Supplier Inc", *voucher.Payee)
}

func TestVoucherService_Update_PostedRefused(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.VoucherHeader, error) {
		return &models.VoucherHeader{ID: id, Status: models.VoucherStatusPosted,
			Date: time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)}, nil
	}

	_, err := f.svc.Update(context.Background(), 1, &UpdateVoucherInput{}, 7, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVoucherService_Update_ConsumedAmortizationFrozen(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	kind := models.JournalKindAmortization
	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.VoucherHeader, error) {
		return &models.VoucherHeader{
			ID:          id,
			VoucherType: models.VoucherTypeJournal,
			JournalKind: &kind,
			Status:      models.VoucherStatusDraft,
			Date:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		}, nil
	}
	f.amortRepo.mockFindByVoucherID = func(ctx context.Context, voucherID uint) (*models.AmortizationSetting, error) {
		return &models.AmortizationSetting{VoucherID: voucherID, Active: false, OccurrenceRemaining: 0}, nil
	}

	_, err := f.svc.Update(context.Background(), 1, &UpdateVoucherInput{}, 7, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVoucherService_Submit_Unbalanced(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.VoucherHeader, error) {
		return &models.VoucherHeader{
			ID:     id,
			Status: models.VoucherStatusDraft,
			Date:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Details: []models.VoucherDetail{
				{AccountNumber: "5100", Debit: 200},
				{AccountNumber: "1010", Credit: 150},
			},
		}, nil
	}

	_, err := f.svc.Submit(context.Background(), 1, 7, "", "")
	assert.ErrorIs(t, err, ErrUnbalancedEntry)
}

func TestVoucherService_Approve(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.VoucherHeader, error) {
		return &models.VoucherHeader{
			ID:     id,
			Status: models.VoucherStatusSubmitted,
			Date:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			Details: []models.VoucherDetail{
				{AccountNumber: "5100", Debit: 200},
				{AccountNumber: "1010", Credit: 200},
			},
		}, nil
	}

	voucher, err := f.svc.Approve(context.Background(), 1, 3, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusApproved, voucher.Status)
	require.NotNil(t, voucher.ApprovedByUserID)
	assert.Equal(t, uint(3), *voucher.ApprovedByUserID)
	assert.NotNil(t, voucher.ApprovedAt)
}

func TestVoucherService_Cancel_FromDraft(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	f.repo.mockFindByIDWithDetails = func(ctx context.Context, id uint) (*models.VoucherHeader, error) {
		return &models.VoucherHeader{
			ID:     id,
			Status: models.VoucherStatusDraft,
			Date:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		}, nil
	}

	voucher, err := f.svc.Cancel(context.Background(), 1, 7, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusCanceled, voucher.Status)
	assert.NotNil(t, voucher.CanceledAt)
}

func TestVoucherService_CleanupStaleDrafts(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	var cutoff time.Time
	f.repo.mockFindStaleDrafts = func(ctx context.Context, olderThan time.Time) ([]models.VoucherHeader, error) {
		cutoff = olderThan
		return []models.VoucherHeader{
			{ID: 1, Number: "CV-2026-000001", Status: models.VoucherStatusDraft},
		}, nil
	}
	var updated []*models.VoucherHeader
	f.repo.mockUpdate = func(ctx context.Context, voucher *models.VoucherHeader) error {
		updated = append(updated, voucher)
		return nil
	}

	err := f.svc.CleanupStaleDrafts(context.Background(), 90*24*time.Hour)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, models.VoucherStatusCanceled, updated[0].Status)
	assert.WithinDuration(t, time.Now().Add(-90*24*time.Hour), cutoff, time.Minute)
}

func TestVoucherService_NextNumberPrefixes(t *testing.T) {
	f := newVoucherServiceFixture(nil)
	defer f.worker.Shutdown()

	f.repo.mockCountByTypeAndYear = func(ctx context.Context, voucherType string, year int) (int64, error) {
		return 0, nil
	}

	for voucherType, want := range map[string]string{
		models.VoucherTypeCheck:     "CV-2026-000001",
		models.VoucherTypeJournal:   "JV-2026-000001",
		models.VoucherTypeOrderSlip: "COS-2026-000001",
	} {
		number, err := f.svc.nextNumber(context.Background(), voucherType, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, want, number)
	}
}
