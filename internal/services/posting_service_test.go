package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/jobs"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakePostingStore implements PostingRepository and PostingTx over in-memory
// state, with snapshot/restore so a failed transaction leaves no writes.
type fakePostingStore struct {
	vouchers        map[uint]*models.VoucherHeader
	ledger          []models.GeneralLedgerEntry
	created         []*models.VoucherHeader
	closedPeriods   map[string]bool
	missingAccounts map[string]bool
	setting         *models.AmortizationSetting
	audits          []models.AuditLog
}

func newFakePostingStore() *fakePostingStore {
	return &fakePostingStore{
		vouchers:        make(map[uint]*models.VoucherHeader),
		closedPeriods:   make(map[string]bool),
		missingAccounts: make(map[string]bool),
	}
}

func copyVoucher(v *models.VoucherHeader) *models.VoucherHeader {
	cp := *v
	cp.Details = append([]models.VoucherDetail(nil), v.Details...)
	return &cp
}

func (f *fakePostingStore) WithTx(ctx context.Context, fn func(tx repository.PostingTx) error) error {
	snapVouchers := make(map[uint]*models.VoucherHeader, len(f.vouchers))
	for id, v := range f.vouchers {
		snapVouchers[id] = copyVoucher(v)
	}
	snapLedger := append([]models.GeneralLedgerEntry(nil), f.ledger...)
	snapCreated := append([]*models.VoucherHeader(nil), f.created...)
	snapAudits := append([]models.AuditLog(nil), f.audits...)
	var snapSetting *models.AmortizationSetting
	if f.setting != nil {
		cp := *f.setting
		snapSetting = &cp
	}

	if err := fn(f); err != nil {
		f.vouchers = snapVouchers
		f.ledger = snapLedger
		f.created = snapCreated
		f.audits = snapAudits
		f.setting = snapSetting
		return err
	}
	return nil
}

func (f *fakePostingStore) GetVoucherForUpdate(ctx context.Context, id uint) (*models.VoucherHeader, error) {
	v, ok := f.vouchers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyVoucher(v), nil
}

func (f *fakePostingStore) UpdateVoucher(ctx context.Context, voucher *models.VoucherHeader) error {
	f.vouchers[voucher.ID] = copyVoucher(voucher)
	return nil
}

func (f *fakePostingStore) CreateVoucherWithDetails(ctx context.Context, voucher *models.VoucherHeader) error {
	f.created = append(f.created, copyVoucher(voucher))
	return nil
}

func (f *fakePostingStore) InsertLedgerEntries(ctx context.Context, entries []models.GeneralLedgerEntry) error {
	f.ledger = append(f.ledger, entries...)
	return nil
}

func (f *fakePostingStore) DeleteLedgerEntriesByReference(ctx context.Context, reference string) error {
	kept := f.ledger[:0]
	for _, e := range f.ledger {
		if e.Reference != reference {
			kept = append(kept, e)
		}
	}
	f.ledger = append([]models.GeneralLedgerEntry(nil), kept...)
	return nil
}

func (f *fakePostingStore) IsPeriodClosed(ctx context.Context, date time.Time) (bool, error) {
	return f.closedPeriods[date.Format("2006-01")], nil
}

func (f *fakePostingStore) AccountExists(ctx context.Context, accountNumber string) (bool, error) {
	return !f.missingAccounts[accountNumber], nil
}

func (f *fakePostingStore) GetAmortizationSetting(ctx context.Context, voucherID uint) (*models.AmortizationSetting, error) {
	if f.setting == nil || f.setting.VoucherID != voucherID {
		return nil, nil
	}
	cp := *f.setting
	return &cp, nil
}

func (f *fakePostingStore) UpdateAmortizationSetting(ctx context.Context, setting *models.AmortizationSetting) error {
	cp := *setting
	f.setting = &cp
	return nil
}

func (f *fakePostingStore) AppendAuditLog(ctx context.Context, log *models.AuditLog) error {
	f.audits = append(f.audits, *log)
	return nil
}

type mockNotificationRepo struct {
	repository.NotificationRepository
	mockCreate func(ctx context.Context, n *models.Notification) error
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *models.Notification) error {
	if m.mockCreate != nil {
		return m.mockCreate(ctx, n)
	}
	return nil
}

func newPostingServiceForTest(store *fakePostingStore) (*PostingService, *jobs.Worker) {
	worker := jobs.NewWorker(1)
	notifSvc := NewNotificationService(&mockNotificationRepo{}, nil, nil)
	svc := NewPostingService(store, notifSvc, worker)
	svc.WithNow(func() time.Time {
		return time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	})
	return svc, worker
}

func approvedCheckVoucher() *models.VoucherHeader {
	particulars := "Office supplies"
	return &models.VoucherHeader{
		ID:              1,
		Number:          "CV-2026-000001",
		VoucherType:     models.VoucherTypeCheck,
		Date:            time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		Particulars:     &particulars,
		Total:           150,
		Status:          models.VoucherStatusApproved,
		CreatedByUserID: 7,
		Details: []models.VoucherDetail{
			{AccountNumber: "5100", AccountName: "Supplies Expense", Debit: 150},
			{AccountNumber: "1010", AccountName: "Cash in Bank", Credit: 150},
		},
	}
}

func TestBalanced(t *testing.T) {
	assert.True(t, Balanced([]models.VoucherDetail{
		{Debit: 100}, {Credit: 100},
	}))
	assert.False(t, Balanced([]models.VoucherDetail{
		{Debit: 100}, {Credit: 99.99},
	}))
	// Float accumulation below a cent must not block a posting.
	assert.True(t, Balanced([]models.VoucherDetail{
		{Debit: 0.1}, {Debit: 0.2}, {Credit: 0.3},
	}))
}

func TestPostingService_Post_WritesLedgerRows(t *testing.T) {
	store := newFakePostingStore()
	store.vouchers[1] = approvedCheckVoucher()
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	posted, err := svc.Post(context.Background(), 1, 9, "10.0.0.1", "test-agent")
	require.NoError(t, err)

	assert.Equal(t, models.VoucherStatusPosted, posted.Status)
	require.NotNil(t, posted.PostedByUserID)
	assert.Equal(t, uint(9), *posted.PostedByUserID)
	require.NotNil(t, posted.PostedAt)

	require.Len(t, store.ledger, 2)
	for _, e := range store.ledger {
		assert.Equal(t, "CV-2026-000001", e.Reference)
		assert.Equal(t, "Office supplies", e.Description)
		assert.Equal(t, models.LedgerModuleCheckVoucher, e.Module)
	}
	assert.Equal(t, 150.0, store.ledger[0].Debit)
	assert.Equal(t, 150.0, store.ledger[1].Credit)

	require.Len(t, store.audits, 1)
	assert.Equal(t, "POST", store.audits[0].Action)
	assert.Equal(t, "10.0.0.1", store.audits[0].IPAddress)
}

func TestPostingService_Post_Unbalanced(t *testing.T) {
	store := newFakePostingStore()
	v := approvedCheckVoucher()
	v.Details[1].Credit = 140
	store.vouchers[1] = v
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	assert.ErrorIs(t, err, ErrUnbalancedEntry)

	assert.Empty(t, store.ledger)
	assert.Empty(t, store.audits)
	assert.Equal(t, models.VoucherStatusApproved, store.vouchers[1].Status)
}

func TestPostingService_Post_WrongStatus(t *testing.T) {
	store := newFakePostingStore()
	v := approvedCheckVoucher()
	v.Status = models.VoucherStatusDraft
	store.vouchers[1] = v
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Empty(t, store.ledger)
	assert.Equal(t, models.VoucherStatusDraft, store.vouchers[1].Status)
}

func TestPostingService_Post_ClosedPeriod(t *testing.T) {
	store := newFakePostingStore()
	store.vouchers[1] = approvedCheckVoucher()
	store.closedPeriods["2026-03"] = true
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	assert.ErrorIs(t, err, ErrPeriodClosed)

	// Nothing may have been written.
	assert.Empty(t, store.ledger)
	assert.Empty(t, store.audits)
	assert.Empty(t, store.created)
	assert.Equal(t, models.VoucherStatusApproved, store.vouchers[1].Status)
	assert.Nil(t, store.vouchers[1].PostedAt)
}

func TestPostingService_Post_UnknownAccount(t *testing.T) {
	store := newFakePostingStore()
	store.vouchers[1] = approvedCheckVoucher()
	store.missingAccounts["1010"] = true
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Empty(t, store.ledger)
}

func TestPostingService_Unpost_PaymentRecorded(t *testing.T) {
	store := newFakePostingStore()
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	store.vouchers[1] = approvedCheckVoucher()
	_, err := svc.Post(context.Background(), 1, 9, "", "")
	require.NoError(t, err)

	v := store.vouchers[1]
	v.AmountPaid = 50

	_, err = svc.Unpost(context.Background(), 1, 9, "", "")
	assert.ErrorIs(t, err, ErrPaymentRecorded)

	// Posting stands untouched.
	assert.Equal(t, models.VoucherStatusPosted, store.vouchers[1].Status)
	assert.Len(t, store.ledger, 2)
}

func TestPostingService_UnpostThenRepost_IdenticalRows(t *testing.T) {
	store := newFakePostingStore()
	store.vouchers[1] = approvedCheckVoucher()
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	require.NoError(t, err)
	firstRows := append([]models.GeneralLedgerEntry(nil), store.ledger...)

	unposted, err := svc.Unpost(context.Background(), 1, 9, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusApproved, unposted.Status)
	assert.Nil(t, unposted.PostedAt)
	assert.Nil(t, unposted.PostedByUserID)
	assert.Empty(t, store.ledger)

	_, err = svc.Post(context.Background(), 1, 9, "", "")
	require.NoError(t, err)
	assert.Equal(t, firstRows, store.ledger)
}

func TestPostingService_Unpost_ClosedPeriod(t *testing.T) {
	store := newFakePostingStore()
	store.vouchers[1] = approvedCheckVoucher()
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	require.NoError(t, err)

	store.closedPeriods["2026-03"] = true
	_, err = svc.Unpost(context.Background(), 1, 9, "", "")
	assert.ErrorIs(t, err, ErrPeriodClosed)
	assert.Equal(t, models.VoucherStatusPosted, store.vouchers[1].Status)
	assert.Len(t, store.ledger, 2)
}

func TestPostingService_Post_AccrualReversal(t *testing.T) {
	store := newFakePostingStore()
	kind := models.JournalKindAccrual
	v := approvedCheckVoucher()
	v.Number = "JV-2026-000004"
	v.VoucherType = models.VoucherTypeJournal
	v.JournalKind = &kind
	v.Date = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	store.vouchers[1] = v
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	require.NoError(t, err)
	require.Len(t, store.ledger, 4)

	original := store.ledger[:2]
	reversal := store.ledger[2:]

	for i, r := range reversal {
		// Mirror of the original line with debit and credit swapped.
		assert.Equal(t, original[i].AccountNumber, r.AccountNumber)
		assert.Equal(t, original[i].Debit, r.Credit)
		assert.Equal(t, original[i].Credit, r.Debit)
		assert.Equal(t, "Reversal of JV-2026-000004", r.Description)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), r.Date)
	}

	// The reversing set balances on its own.
	var debit, credit float64
	for _, r := range reversal {
		debit += r.Debit
		credit += r.Credit
	}
	assert.Equal(t, debit, credit)
}

func TestPostingService_Post_AmortizationFanOut(t *testing.T) {
	store := newFakePostingStore()
	kind := models.JournalKindAmortization
	v := approvedCheckVoucher()
	v.Number = "JV-2026-000009"
	v.VoucherType = models.VoucherTypeJournal
	v.JournalKind = &kind
	v.Date = time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	store.vouchers[1] = v
	store.setting = &models.AmortizationSetting{
		ID:                  1,
		VoucherID:           1,
		StartDate:           v.Date,
		OccurrenceTotal:     4,
		OccurrenceRemaining: 3,
		Active:              true,
	}
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	require.NoError(t, err)

	// One follow-on draft per remaining month, dates clamped to month ends.
	require.Len(t, store.created, 3)
	wantDates := []time.Time{
		time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
	}
	for i, clone := range store.created {
		assert.Equal(t, models.VoucherStatusDraft, clone.Status)
		assert.Equal(t, models.VoucherTypeJournal, clone.VoucherType)
		assert.Nil(t, clone.JournalKind)
		assert.Equal(t, wantDates[i], clone.Date)
		assert.Len(t, clone.Details, 2)
		assert.Equal(t, v.Details[0].Debit, clone.Details[0].Debit)
	}
	assert.Equal(t, "JV-2026-000009-01", store.created[0].Number)
	assert.Equal(t, "JV-2026-000009-03", store.created[2].Number)

	// The setting is consumed so the fan-out can never run twice.
	assert.True(t, store.setting.Consumed())
}

func TestPostingService_Void(t *testing.T) {
	store := newFakePostingStore()
	store.vouchers[1] = approvedCheckVoucher()
	svc, worker := newPostingServiceForTest(store)
	defer worker.Shutdown()

	_, err := svc.Post(context.Background(), 1, 9, "", "")
	require.NoError(t, err)

	voided, err := svc.Void(context.Background(), 1, 9, "", "")
	require.NoError(t, err)
	assert.Equal(t, models.VoucherStatusVoided, voided.Status)
	require.NotNil(t, voided.VoidedByUserID)
	assert.Equal(t, uint(9), *voided.VoidedByUserID)
	assert.Nil(t, voided.PostedAt)
	assert.Empty(t, store.ledger)
}

func TestAddMonthsClamped(t *testing.T) {
	jan31 := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC), addMonthsClamped(jan31, 1))
	assert.Equal(t, time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC), addMonthsClamped(jan31, 3))

	jan15 := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 2, 15, 0, 0, 0, 0, time.UTC), addMonthsClamped(jan15, 1))
}
