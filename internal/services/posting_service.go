package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/jobs"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
)

// PostingService converts approved vouchers into immutable general-ledger
// rows and reverses postings. Every mutation runs inside one database
// transaction: the balance check, the status flip, the ledger inserts and the
// audit row either all land or none do.
type PostingService struct {
	posting         repository.PostingRepository
	notificationSvc *NotificationService
	worker          *jobs.Worker
	now             func() time.Time
}

// NewPostingService creates a new posting service
func NewPostingService(
	posting repository.PostingRepository,
	notificationSvc *NotificationService,
	worker *jobs.Worker,
) *PostingService {
	return &PostingService{
		posting:         posting,
		notificationSvc: notificationSvc,
		worker:          worker,
		now:             time.Now,
	}
}

// WithNow overrides the clock, for tests
func (s *PostingService) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Balanced reports whether the detail lines balance to the currency minor
// unit. Amounts are compared in integer cents so float accumulation noise
// below a cent cannot block or pass a posting.
func Balanced(details []models.VoucherDetail) bool {
	var debit, credit int64
	for _, d := range details {
		debit += toCents(d.Debit)
		credit += toCents(d.Credit)
	}
	return debit == credit
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Post transitions an approved voucher to posted and writes one ledger row
// per detail line, keyed by the voucher number.
func (s *PostingService) Post(ctx context.Context, voucherID, actorID uint, ip, userAgent string) (*models.VoucherHeader, error) {
	var posted *models.VoucherHeader
	err := s.posting.WithTx(ctx, func(tx repository.PostingTx) error {
		voucher, err := tx.GetVoucherForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		// Status equality is the concurrency guard: a concurrent Post that
		// committed first already moved the voucher off "approved".
		if !voucher.MayPost() {
			return ErrInvalidState
		}
		closed, err := tx.IsPeriodClosed(ctx, voucher.Date)
		if err != nil {
			return err
		}
		if closed {
			return ErrPeriodClosed
		}
		if len(voucher.Details) == 0 {
			return ErrEmptyDetails
		}
		if !Balanced(voucher.Details) {
			return ErrUnbalancedEntry
		}
		for _, d := range voucher.Details {
			ok, err := tx.AccountExists(ctx, d.AccountNumber)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("account %s not found in chart of accounts: %w", d.AccountNumber, ErrNotFound)
			}
		}

		now := s.now()
		voucher.Status = models.VoucherStatusPosted
		voucher.PostedByUserID = &actorID
		voucher.PostedAt = &now
		if err := tx.UpdateVoucher(ctx, voucher); err != nil {
			return err
		}

		entries := buildLedgerEntries(voucher)
		if voucher.IsAccrual() {
			entries = append(entries, buildAccrualReversal(voucher)...)
		}
		if err := tx.InsertLedgerEntries(ctx, entries); err != nil {
			return err
		}

		if voucher.IsAmortization() {
			if err := s.generateAmortizationFanOut(ctx, tx, voucher, actorID); err != nil {
				return err
			}
		}

		if err := tx.AppendAuditLog(ctx, &models.AuditLog{
			UserID:    actorID,
			Action:    "POST",
			Entity:    "Voucher",
			EntityID:  voucher.ID,
			Details:   fmt.Sprintf("Voucher %s posted, %d ledger rows", voucher.Number, len(entries)),
			IPAddress: ip,
			UserAgent: userAgent,
		}); err != nil {
			return err
		}

		posted = voucher
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyVoucherPosted(ctx, posted)
	})

	return posted, nil
}

// Unpost reverses a posting: clears the posted audit pair, reverts the status
// to approved and deletes the ledger rows sharing the voucher's number. It is
// refused once any payment has been recorded against the document.
func (s *PostingService) Unpost(ctx context.Context, voucherID, actorID uint, ip, userAgent string) (*models.VoucherHeader, error) {
	var unposted *models.VoucherHeader
	err := s.posting.WithTx(ctx, func(tx repository.PostingTx) error {
		voucher, err := tx.GetVoucherForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if voucher.Status != models.VoucherStatusPosted {
			return ErrInvalidState
		}
		if !voucher.MayUnpost() {
			return ErrPaymentRecorded
		}
		closed, err := tx.IsPeriodClosed(ctx, voucher.Date)
		if err != nil {
			return err
		}
		if closed {
			return ErrPeriodClosed
		}

		voucher.Status = models.VoucherStatusApproved
		voucher.PostedByUserID = nil
		voucher.PostedAt = nil
		if err := tx.UpdateVoucher(ctx, voucher); err != nil {
			return err
		}
		if err := tx.DeleteLedgerEntriesByReference(ctx, voucher.Number); err != nil {
			return err
		}

		if err := tx.AppendAuditLog(ctx, &models.AuditLog{
			UserID:    actorID,
			Action:    "UNPOST",
			Entity:    "Voucher",
			EntityID:  voucher.ID,
			Details:   fmt.Sprintf("Voucher %s unposted, ledger rows removed", voucher.Number),
			IPAddress: ip,
			UserAgent: userAgent,
		}); err != nil {
			return err
		}

		unposted = voucher
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyUser(ctx, unposted.CreatedByUserID,
			"Voucher unposted",
			fmt.Sprintf("Posting of voucher %s has been reversed", unposted.Number),
			models.NotificationTypeVoucherUnposted)
	})

	return unposted, nil
}

// Void unposts and then marks the voucher voided in the same transaction.
func (s *PostingService) Void(ctx context.Context, voucherID, actorID uint, ip, userAgent string) (*models.VoucherHeader, error) {
	var voided *models.VoucherHeader
	err := s.posting.WithTx(ctx, func(tx repository.PostingTx) error {
		voucher, err := tx.GetVoucherForUpdate(ctx, voucherID)
		if err != nil {
			return err
		}
		if !voucher.MayVoid() {
			if voucher.Status == models.VoucherStatusPosted {
				return ErrPaymentRecorded
			}
			return ErrInvalidState
		}
		closed, err := tx.IsPeriodClosed(ctx, voucher.Date)
		if err != nil {
			return err
		}
		if closed {
			return ErrPeriodClosed
		}

		now := s.now()
		voucher.Status = models.VoucherStatusVoided
		voucher.PostedByUserID = nil
		voucher.PostedAt = nil
		voucher.VoidedByUserID = &actorID
		voucher.VoidedAt = &now
		if err := tx.UpdateVoucher(ctx, voucher); err != nil {
			return err
		}
		if err := tx.DeleteLedgerEntriesByReference(ctx, voucher.Number); err != nil {
			return err
		}

		if err := tx.AppendAuditLog(ctx, &models.AuditLog{
			UserID:    actorID,
			Action:    "VOID",
			Entity:    "Voucher",
			EntityID:  voucher.ID,
			Details:   fmt.Sprintf("Voucher %s voided", voucher.Number),
			IPAddress: ip,
			UserAgent: userAgent,
		}); err != nil {
			return err
		}

		voided = voucher
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.worker.EnqueueAsync(func(ctx context.Context) error {
		return s.notificationSvc.NotifyUser(ctx, voided.CreatedByUserID,
			"Voucher voided",
			fmt.Sprintf("Voucher %s has been voided", voided.Number),
			models.NotificationTypeVoucherVoided)
	})

	return voided, nil
}

// buildLedgerEntries maps detail lines to ledger rows one to one.
func buildLedgerEntries(voucher *models.VoucherHeader) []models.GeneralLedgerEntry {
	description := ""
	if voucher.Particulars != nil {
		description = *voucher.Particulars
	}
	module := models.LedgerModuleFor(voucher.VoucherType)

	entries := make([]models.GeneralLedgerEntry, 0, len(voucher.Details))
	for _, d := range voucher.Details {
		entries = append(entries, models.GeneralLedgerEntry{
			Date:           voucher.Date,
			Reference:      voucher.Number,
			Description:    description,
			AccountNumber:  d.AccountNumber,
			AccountName:    d.AccountName,
			SubAccountKind: d.SubAccountKind,
			SubAccountID:   d.SubAccountID,
			SubAccountName: d.SubAccountName,
			Debit:          d.Debit,
			Credit:         d.Credit,
			Module:         module,
		})
	}
	return entries
}

// buildAccrualReversal mirrors each original line with debit and credit
// swapped, dated the first day of the following month. The reversing set
// balances whenever the original does.
func buildAccrualReversal(voucher *models.VoucherHeader) []models.GeneralLedgerEntry {
	reversalDate := firstOfNextMonth(voucher.Date)
	module := models.LedgerModuleFor(voucher.VoucherType)

	entries := make([]models.GeneralLedgerEntry, 0, len(voucher.Details))
	for _, d := range voucher.Details {
		entries = append(entries, models.GeneralLedgerEntry{
			Date:           reversalDate,
			Reference:      voucher.Number,
			Description:    fmt.Sprintf("Reversal of %s", voucher.Number),
			AccountNumber:  d.AccountNumber,
			AccountName:    d.AccountName,
			SubAccountKind: d.SubAccountKind,
			SubAccountID:   d.SubAccountID,
			SubAccountName: d.SubAccountName,
			Debit:          d.Credit,
			Credit:         d.Debit,
			Module:         module,
		})
	}
	return entries
}

// generateAmortizationFanOut synthesizes the remaining follow-on journal
// vouchers on the first post, one per subsequent month, cloning the original
// detail lines verbatim. The setting is consumed afterwards so the fan-out
// can never run twice.
func (s *PostingService) generateAmortizationFanOut(ctx context.Context, tx repository.PostingTx, voucher *models.VoucherHeader, actorID uint) error {
	setting, err := tx.GetAmortizationSetting(ctx, voucher.ID)
	if err != nil {
		return err
	}
	if setting == nil || !setting.Active || setting.OccurrenceRemaining <= 0 {
		return nil
	}
	if len(voucher.Details) == 0 {
		return fmt.Errorf("amortization voucher %s: %w", voucher.Number, ErrEmptyDetails)
	}

	for i := 1; i <= setting.OccurrenceRemaining; i++ {
		clone := &models.VoucherHeader{
			Number:          fmt.Sprintf("%s-%02d", voucher.Number, i),
			VoucherType:     models.VoucherTypeJournal,
			Date:            addMonthsClamped(voucher.Date, i),
			Payee:           voucher.Payee,
			Particulars:     voucher.Particulars,
			Total:           voucher.Total,
			Status:          models.VoucherStatusDraft,
			JournalKind:     nil, // follow-on months post as plain journal vouchers
			CreatedByUserID: actorID,
		}
		for _, d := range voucher.Details {
			clone.Details = append(clone.Details, models.VoucherDetail{
				AccountNumber:  d.AccountNumber,
				AccountName:    d.AccountName,
				Debit:          d.Debit,
				Credit:         d.Credit,
				SubAccountKind: d.SubAccountKind,
				SubAccountID:   d.SubAccountID,
				SubAccountName: d.SubAccountName,
			})
		}
		if err := tx.CreateVoucherWithDetails(ctx, clone); err != nil {
			return err
		}
	}

	setting.OccurrenceRemaining = 0
	setting.Active = false
	return tx.UpdateAmortizationSetting(ctx, setting)
}

func firstOfNextMonth(date time.Time) time.Time {
	year, month, _ := date.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, date.Location()).AddDate(0, 1, 0)
}

// addMonthsClamped advances by whole months, clamping to the last day of the
// target month instead of letting AddDate roll over (Jan 31 + 1 month must be
// Feb 28/29, not Mar 3).
func addMonthsClamped(date time.Time, months int) time.Time {
	year, month, day := date.Date()
	first := time.Date(year, month, 1, 0, 0, 0, 0, date.Location()).AddDate(0, months, 0)
	lastDay := first.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, date.Location())
}
