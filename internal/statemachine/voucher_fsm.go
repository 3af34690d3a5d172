package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/ledgerbooks/ledgerbooks-api/internal/models"
)

// VoucherFSM wraps a voucher header with its state machine. The transition
// table is the single source of truth for which status moves are legal;
// services never compare status strings directly.
type VoucherFSM struct {
	voucher *models.VoucherHeader
	fsm     *fsm.FSM
}

// NewVoucherFSM creates a new voucher state machine
func NewVoucherFSM(voucher *models.VoucherHeader) *VoucherFSM {
	vfsm := &VoucherFSM{
		voucher: voucher,
	}

	vfsm.fsm = fsm.NewFSM(
		voucher.Status,
		fsm.Events{
			// draft → submitted
			{Name: "submit", Src: []string{models.VoucherStatusDraft}, Dst: models.VoucherStatusSubmitted},

			// submitted → approved
			{Name: "approve", Src: []string{models.VoucherStatusSubmitted}, Dst: models.VoucherStatusApproved},

			// approved → posted
			{Name: "post", Src: []string{models.VoucherStatusApproved}, Dst: models.VoucherStatusPosted},

			// posted → approved (unpost)
			{Name: "unpost", Src: []string{models.VoucherStatusPosted}, Dst: models.VoucherStatusApproved},

			// posted → voided
			{Name: "void", Src: []string{models.VoucherStatusPosted}, Dst: models.VoucherStatusVoided},

			// draft/submitted/approved → canceled
			{Name: "cancel", Src: []string{models.VoucherStatusDraft, models.VoucherStatusSubmitted, models.VoucherStatusApproved}, Dst: models.VoucherStatusCanceled},

			// submitted/approved → draft (edit invalidates approvals)
			{Name: "reopen", Src: []string{models.VoucherStatusSubmitted, models.VoucherStatusApproved}, Dst: models.VoucherStatusDraft},
		},
		fsm.Callbacks{},
	)

	return vfsm
}

// Submit transitions the voucher to submitted state
func (v *VoucherFSM) Submit(ctx context.Context) error {
	if !v.voucher.MaySubmit() {
		return fmt.Errorf("voucher cannot be submitted in current state: %s", v.voucher.Status)
	}

	if err := v.fsm.Event(ctx, "submit"); err != nil {
		return fmt.Errorf("failed to submit voucher: %w", err)
	}

	v.voucher.Status = v.fsm.Current()
	return nil
}

// Approve transitions the voucher to approved state
func (v *VoucherFSM) Approve(ctx context.Context) error {
	if !v.voucher.MayApprove() {
		return fmt.Errorf("voucher cannot be approved in current state: %s", v.voucher.Status)
	}

	if err := v.fsm.Event(ctx, "approve"); err != nil {
		return fmt.Errorf("failed to approve voucher: %w", err)
	}

	v.voucher.Status = v.fsm.Current()
	return nil
}

// Post transitions the voucher to posted state
func (v *VoucherFSM) Post(ctx context.Context) error {
	if !v.voucher.MayPost() {
		return fmt.Errorf("voucher cannot be posted in current state: %s", v.voucher.Status)
	}

	if err := v.fsm.Event(ctx, "post"); err != nil {
		return fmt.Errorf("failed to post voucher: %w", err)
	}

	v.voucher.Status = v.fsm.Current()
	return nil
}

// Unpost transitions the voucher from posted back to approved
func (v *VoucherFSM) Unpost(ctx context.Context) error {
	if !v.voucher.MayUnpost() {
		return fmt.Errorf("voucher cannot be unposted in current state: %s", v.voucher.Status)
	}

	if err := v.fsm.Event(ctx, "unpost"); err != nil {
		return fmt.Errorf("failed to unpost voucher: %w", err)
	}

	v.voucher.Status = v.fsm.Current()
	return nil
}

// Void transitions the voucher to voided state
func (v *VoucherFSM) Void(ctx context.Context) error {
	if !v.voucher.MayVoid() {
		return fmt.Errorf("voucher cannot be voided in current state: %s", v.voucher.Status)
	}

	if err := v.fsm.Event(ctx, "void"); err != nil {
		return fmt.Errorf("failed to void voucher: %w", err)
	}

	v.voucher.Status = v.fsm.Current()
	return nil
}

// Cancel transitions the voucher to canceled state
func (v *VoucherFSM) Cancel(ctx context.Context) error {
	if !v.voucher.MayCancel() {
		return fmt.Errorf("voucher cannot be canceled in current state: %s", v.voucher.Status)
	}

	if err := v.fsm.Event(ctx, "cancel"); err != nil {
		return fmt.Errorf("failed to cancel voucher: %w", err)
	}

	v.voucher.Status = v.fsm.Current()
	return nil
}

// Reopen reverts a submitted or approved voucher to draft after an edit
func (v *VoucherFSM) Reopen(ctx context.Context) error {
	if err := v.fsm.Event(ctx, "reopen"); err != nil {
		return fmt.Errorf("failed to reopen voucher: %w", err)
	}

	v.voucher.Status = v.fsm.Current()
	return nil
}

// Current returns the current state
func (v *VoucherFSM) Current() string {
	return v.fsm.Current()
}

// Can checks if a transition is possible
func (v *VoucherFSM) Can(event string) bool {
	return v.fsm.Can(event)
}
