package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/ledgerbooks/ledgerbooks-api/internal/jobs"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
	"github.com/ledgerbooks/ledgerbooks-api/internal/repository"
	"github.com/ledgerbooks/ledgerbooks-api/internal/statemachine"
	"github.com/ledgerbooks/ledgerbooks-api/internal/storage"
	"gorm.io/gorm"
)

// VoucherService owns the pre-posting lifecycle of vouchers: drafting,
// detail-line replacement, submission and approval. Posting itself lives in
// PostingService.
type VoucherService struct {
	repo            repository.VoucherRepository
	amortRepo       repository.AmortizationRepository
	accountRepo     repository.AccountRepository
	periodSvc       *PeriodService
	resolver        *SubAccountResolver
	notificationSvc *NotificationService
	auditSvc        *AuditService
	storage         *storage.LocalStorage
	worker          *jobs.Worker
}

// NewVoucherService creates a new voucher service
func NewVoucherService(
	repo repository.VoucherRepository,
	amortRepo repository.AmortizationRepository,
	accountRepo repository.AccountRepository,
	periodSvc *PeriodService,
	resolver *SubAccountResolver,
	notificationSvc *NotificationService,
	auditSvc *AuditService,
	store *storage.LocalStorage,
	worker *jobs.Worker,
) *VoucherService {
	return &VoucherService{
		repo:            repo,
		amortRepo:       amortRepo,
		accountRepo:     accountRepo,
		periodSvc:       periodSvc,
		resolver:        resolver,
		notificationSvc: notificationSvc,
		auditSvc:        auditSvc,
		storage:         store,
		worker:          worker,
	}
}

// CreateVoucherInput carries everything needed to draft a voucher
type CreateVoucherInput struct {
	VoucherType  string
	Date         time.Time
	Payee        *string
	Particulars  *string
	CheckNumber  *string
	BankID       *uint
	JournalKind  *string
	Details      []models.VoucherDetail
	Amortization *AmortizationInput
}

// AmortizationInput configures the fan-out of an amortization voucher
type AmortizationInput struct {
	StartDate       time.Time
	OccurrenceTotal int
}

func (s *VoucherService) FindByID(ctx context.Context, id uint) (*models.VoucherHeader, error) {
	voucher, err := s.repo.FindByIDWithDetails(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return voucher, err
}

func (s *VoucherService) List(ctx context.Context, query *repository.VoucherQuery) ([]models.VoucherHeader, int64, error) {
	return s.repo.List(ctx, query)
}

// Create drafts a new voucher with its detail lines. The accounting period
// owning the voucher date must still be open.
func (s *VoucherService) Create(ctx context.Context, input *CreateVoucherInput, actorID uint, ip, userAgent string) (*models.VoucherHeader, error) {
	if err := s.periodSvc.EnsureOpen(ctx, input.Date); err != nil {
		return nil, err
	}
	if err := s.validateDetails(ctx, input.Details); err != nil {
		return nil, err
	}

	number, err := s.nextNumber(ctx, input.VoucherType, input.Date)
	if err != nil {
		return nil, err
	}

	s.resolver.ResolveDetails(ctx, input.Details)

	voucher := &models.VoucherHeader{
		Number:          number,
		VoucherType:     input.VoucherType,
		Date:            input.Date,
		Payee:           input.Payee,
		Particulars:     input.Particulars,
		CheckNumber:     input.CheckNumber,
		BankID:          input.BankID,
		JournalKind:     input.JournalKind,
		Total:           detailTotal(input.Details),
		Status:          models.VoucherStatusDraft,
		CreatedByUserID: actorID,
		Details:         input.Details,
	}
	if err := s.repo.Create(ctx, voucher); err != nil {
		return nil, err
	}

	if voucher.IsAmortization() && input.Amortization != nil {
		total := input.Amortization.OccurrenceTotal
		if total < 1 {
			return nil, fmt.Errorf("amortization occurrences must be at least 1")
		}
		setting := &models.AmortizationSetting{
			VoucherID:           voucher.ID,
			StartDate:           input.Amortization.StartDate,
			EndDate:             addMonthsClamped(input.Amortization.StartDate, total-1),
			OccurrenceTotal:     total,
			OccurrenceRemaining: total - 1,
			Active:              true,
		}
		if err := s.amortRepo.Create(ctx, setting); err != nil {
			return nil, err
		}
		voucher.Amortization = setting
	}

	s.auditSvc.Log(ctx, actorID, "CREATE", "Voucher", voucher.ID,
		fmt.Sprintf("Voucher %s created (%s, %.2f)", voucher.Number, voucher.VoucherType, voucher.Total), ip, userAgent)

	return voucher, nil
}

// UpdateVoucherInput carries editable header fields and the replacement
// detail-line set.
type UpdateVoucherInput struct {
	Date        *time.Time
	Payee       *string
	Particulars *string
	CheckNumber *string
	BankID      *uint
	Details     []models.VoucherDetail
}

// Update edits a voucher. Editing invalidates prior approvals: the status
// reverts to draft and the approval audit pair is cleared. Edits are refused
// for posted vouchers, for closed periods, and for amortization vouchers
// whose fan-out has already been generated.
func (s *VoucherService) Update(ctx context.Context, id uint, input *UpdateVoucherInput, actorID uint, ip, userAgent string) (*models.VoucherHeader, error) {
	voucher, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !voucher.MayEdit() {
		return nil, ErrInvalidState
	}
	if err := s.periodSvc.EnsureOpen(ctx, voucher.Date); err != nil {
		return nil, err
	}
	if input.Date != nil {
		if err := s.periodSvc.EnsureOpen(ctx, *input.Date); err != nil {
			return nil, err
		}
	}
	if voucher.IsAmortization() {
		setting, err := s.amortRepo.FindByVoucherID(ctx, voucher.ID)
		if err == nil && setting.Consumed() {
			// The follow-on months already exist; the originating voucher is
			// frozen rather than cascading a regeneration.
			return nil, ErrInvalidState
		}
	}
	if input.Details != nil {
		if err := s.validateDetails(ctx, input.Details); err != nil {
			return nil, err
		}
	}

	if input.Date != nil {
		voucher.Date = *input.Date
	}
	if input.Payee != nil {
		voucher.Payee = input.Payee
	}
	if input.Particulars != nil {
		voucher.Particulars = input.Particulars
	}
	if input.CheckNumber != nil {
		voucher.CheckNumber = input.CheckNumber
	}
	if input.BankID != nil {
		voucher.BankID = input.BankID
	}

	// Editing invalidates prior approvals.
	voucher.Status = models.VoucherStatusDraft
	voucher.ApprovedByUserID = nil
	voucher.ApprovedAt = nil

	if input.Details != nil {
		s.resolver.ResolveDetails(ctx, input.Details)
		if err := s.repo.ReplaceDetails(ctx, voucher.ID, input.Details); err != nil {
			return nil, err
		}
		voucher.Details = input.Details
		voucher.Total = detailTotal(input.Details)
	}
	if err := s.repo.Update(ctx, voucher); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, "UPDATE", "Voucher", voucher.ID,
		fmt.Sprintf("Voucher %s edited, approvals reset", voucher.Number), ip, userAgent)

	return voucher, nil
}

// Submit sends a draft voucher for approval
func (s *VoucherService) Submit(ctx context.Context, id, actorID uint, ip, userAgent string) (*models.VoucherHeader, error) {
	return s.transition(ctx, id, actorID, ip, userAgent, func(fsm *statemachine.VoucherFSM, voucher *models.VoucherHeader) error {
		if len(voucher.Details) == 0 {
			return ErrEmptyDetails
		}
		if !Balanced(voucher.Details) {
			return ErrUnbalancedEntry
		}
		return fsm.Submit(ctx)
	}, "SUBMIT", "submitted for approval")
}

// Approve marks a submitted voucher ready for posting
func (s *VoucherService) Approve(ctx context.Context, id, actorID uint, ip, userAgent string) (*models.VoucherHeader, error) {
	now := time.Now()
	return s.transition(ctx, id, actorID, ip, userAgent, func(fsm *statemachine.VoucherFSM, voucher *models.VoucherHeader) error {
		if err := fsm.Approve(ctx); err != nil {
			return err
		}
		voucher.ApprovedByUserID = &actorID
		voucher.ApprovedAt = &now
		return nil
	}, "APPROVE", "approved for posting")
}

// Cancel abandons an unposted voucher
func (s *VoucherService) Cancel(ctx context.Context, id, actorID uint, ip, userAgent string) (*models.VoucherHeader, error) {
	now := time.Now()
	return s.transition(ctx, id, actorID, ip, userAgent, func(fsm *statemachine.VoucherFSM, voucher *models.VoucherHeader) error {
		if err := fsm.Cancel(ctx); err != nil {
			return err
		}
		voucher.CanceledByUserID = &actorID
		voucher.CanceledAt = &now
		return nil
	}, "CANCEL", "canceled")
}

func (s *VoucherService) transition(
	ctx context.Context,
	id, actorID uint,
	ip, userAgent string,
	apply func(fsm *statemachine.VoucherFSM, voucher *models.VoucherHeader) error,
	action, what string,
) (*models.VoucherHeader, error) {
	voucher, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.periodSvc.EnsureOpen(ctx, voucher.Date); err != nil {
		return nil, err
	}

	fsm := statemachine.NewVoucherFSM(voucher)
	if err := apply(fsm, voucher); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, voucher); err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, actorID, action, "Voucher", voucher.ID,
		fmt.Sprintf("Voucher %s %s", voucher.Number, what), ip, userAgent)

	if action == "SUBMIT" {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.notificationSvc.NotifyVoucherSubmitted(ctx, voucher)
		})
	}

	return voucher, nil
}

// UploadAttachment stores a supporting document for a voucher. The file is
// written to storage first; only the resulting key touches the database, so a
// failed upload leaves no partial state.
func (s *VoucherService) UploadAttachment(ctx context.Context, id uint, file multipart.File, header *multipart.FileHeader, actorID uint) (*models.VoucherHeader, error) {
	voucher, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.periodSvc.EnsureOpen(ctx, voucher.Date); err != nil {
		return nil, err
	}

	path, err := s.storage.Upload(file, header, "vouchers")
	if err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}

	old := voucher.AttachmentPath
	voucher.AttachmentPath = &path
	if err := s.repo.Update(ctx, voucher); err != nil {
		// Best effort: do not leave the uploaded file orphaned.
		s.storage.Delete(path)
		return nil, err
	}
	if old != nil && *old != "" {
		s.storage.Delete(*old)
	}

	s.auditSvc.Log(ctx, actorID, "UPLOAD", "Voucher", voucher.ID,
		fmt.Sprintf("Attachment added to voucher %s", voucher.Number), "", "")

	return voucher, nil
}

// validateDetails checks line shape and account existence before any write.
func (s *VoucherService) validateDetails(ctx context.Context, details []models.VoucherDetail) error {
	if len(details) == 0 {
		return ErrEmptyDetails
	}
	for _, d := range details {
		if d.Debit < 0 || d.Credit < 0 {
			return fmt.Errorf("negative amounts are not allowed on detail lines")
		}
		if d.Debit != 0 && d.Credit != 0 {
			return fmt.Errorf("a detail line carries either a debit or a credit, not both")
		}
		if !d.SubAccountKind.Valid() {
			return fmt.Errorf("unknown sub-account kind %q", d.SubAccountKind)
		}
		ok, err := s.accountRepo.ExistsByNumber(ctx, d.AccountNumber)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("account %s not found in chart of accounts: %w", d.AccountNumber, ErrNotFound)
		}
	}
	return nil
}

// nextNumber generates a document number like CV-2026-000123, sequenced per
// voucher type and year.
func (s *VoucherService) nextNumber(ctx context.Context, voucherType string, date time.Time) (string, error) {
	count, err := s.repo.CountByTypeAndYear(ctx, voucherType, date.Year())
	if err != nil {
		return "", err
	}
	prefix := "JV"
	switch voucherType {
	case models.VoucherTypeCheck:
		prefix = "CV"
	case models.VoucherTypeOrderSlip:
		prefix = "COS"
	}
	return fmt.Sprintf("%s-%04d-%06d", prefix, date.Year(), count+1), nil
}

// RemindPendingApprovals notifies accountants about vouchers that are still
// waiting for approval. Intended to run from the scheduler.
func (s *VoucherService) RemindPendingApprovals(ctx context.Context) error {
	pending, err := s.repo.FindSubmitted(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	return s.notificationSvc.NotifyAccountants(ctx,
		"Vouchers pending approval",
		fmt.Sprintf("%d voucher(s) are waiting for approval", len(pending)),
		models.NotificationTypeVoucherSubmitted)
}

// CleanupStaleDrafts cancels drafts that have not been touched in maxAge.
func (s *VoucherService) CleanupStaleDrafts(ctx context.Context, maxAge time.Duration) error {
	stale, err := s.repo.FindStaleDrafts(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return err
	}
	for i := range stale {
		v := &stale[i]
		v.Status = models.VoucherStatusCanceled
		if err := s.repo.Update(ctx, v); err != nil {
			return err
		}
		s.auditSvc.Log(ctx, 0, "CANCEL", "Voucher", v.ID,
			fmt.Sprintf("Stale draft %s canceled automatically", v.Number), "", "")
	}
	return nil
}

func detailTotal(details []models.VoucherDetail) float64 {
	var total float64
	for _, d := range details {
		total += d.Debit
	}
	return total
}
