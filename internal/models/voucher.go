package models

import (
	"time"
)

// VoucherHeader represents an accounting document: a check voucher, a journal
// voucher or a customer order slip. Detail lines live in VoucherDetail and
// must balance (sum of debits == sum of credits) before the document can be
// posted to the general ledger.
type VoucherHeader struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Number      string    `gorm:"size:30;uniqueIndex;not null" json:"number"`
	VoucherType string    `gorm:"size:20;not null;index" json:"voucher_type"`
	Date        time.Time `gorm:"type:date;not null;index" json:"date"`
	// Counterparty reference: payee name for check vouchers, customer for
	// order slips. Free text plus optional sub-account link on the details.
	Payee       *string  `gorm:"size:150" json:"payee"`
	Particulars *string  `gorm:"type:text" json:"particulars"`
	Total       float64  `gorm:"type:decimal(15,2);not null" json:"total"`
	AmountPaid  float64  `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	Status      string   `gorm:"size:20;default:draft;not null;index" json:"status"`
	JournalKind *string  `gorm:"size:20;index" json:"journal_kind"` // accrual, amortization
	CheckNumber *string  `gorm:"size:30" json:"check_number"`
	BankID      *uint    `gorm:"index" json:"bank_id"`
	// Supporting document stored in local storage; only the key is persisted.
	AttachmentPath *string `gorm:"size:255" json:"-"`

	CreatedByUserID  uint       `gorm:"not null;index" json:"created_by_user_id"`
	ApprovedByUserID *uint      `gorm:"index" json:"approved_by_user_id"`
	ApprovedAt       *time.Time `json:"approved_at"`
	PostedByUserID   *uint      `gorm:"index" json:"posted_by_user_id"`
	PostedAt         *time.Time `json:"posted_at"`
	VoidedByUserID   *uint      `json:"voided_by_user_id"`
	VoidedAt         *time.Time `json:"voided_at"`
	CanceledByUserID *uint      `json:"canceled_by_user_id"`
	CanceledAt       *time.Time `json:"canceled_at"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Associations
	Details      []VoucherDetail      `gorm:"foreignKey:VoucherID" json:"details,omitempty"`
	CreatedBy    User                 `gorm:"foreignKey:CreatedByUserID" json:"created_by,omitempty"`
	ApprovedBy   *User                `gorm:"foreignKey:ApprovedByUserID" json:"approved_by,omitempty"`
	PostedBy     *User                `gorm:"foreignKey:PostedByUserID" json:"posted_by,omitempty"`
	Amortization *AmortizationSetting `gorm:"foreignKey:VoucherID" json:"amortization,omitempty"`
}

// TableName specifies the table name for VoucherHeader
func (VoucherHeader) TableName() string {
	return "voucher_headers"
}

// Voucher type constants
const (
	VoucherTypeCheck     = "check"
	VoucherTypeJournal   = "journal"
	VoucherTypeOrderSlip = "order_slip"
)

// Voucher status constants
const (
	VoucherStatusDraft     = "draft"
	VoucherStatusSubmitted = "submitted"
	VoucherStatusApproved  = "approved"
	VoucherStatusPosted    = "posted"
	VoucherStatusVoided    = "voided"
	VoucherStatusCanceled  = "canceled"
)

// Journal kind constants (journal vouchers only)
const (
	JournalKindAccrual      = "accrual"
	JournalKindAmortization = "amortization"
)

// MaySubmit returns true if the voucher can be sent for approval
func (v *VoucherHeader) MaySubmit() bool {
	return v.Status == VoucherStatusDraft
}

// MayApprove returns true if the voucher can be approved for posting
func (v *VoucherHeader) MayApprove() bool {
	return v.Status == VoucherStatusSubmitted
}

// MayPost returns true if the voucher can be posted to the general ledger
func (v *VoucherHeader) MayPost() bool {
	return v.Status == VoucherStatusApproved
}

// MayUnpost returns true if the posting can be reversed. Vouchers with any
// recorded payment stay posted until the payments are undone first.
func (v *VoucherHeader) MayUnpost() bool {
	if v.Status != VoucherStatusPosted {
		return false
	}
	if v.AmountPaid != 0 {
		return false
	}
	for _, d := range v.Details {
		if d.AmountPaid != 0 {
			return false
		}
	}
	return true
}

// MayVoid returns true if the voucher can be voided
func (v *VoucherHeader) MayVoid() bool {
	return v.Status == VoucherStatusPosted && v.MayUnpost()
}

// MayCancel returns true if the voucher can be canceled before posting
func (v *VoucherHeader) MayCancel() bool {
	return v.Status == VoucherStatusDraft ||
		v.Status == VoucherStatusSubmitted ||
		v.Status == VoucherStatusApproved
}

// MayEdit returns true if header or detail edits are allowed. Posted and
// terminal vouchers must be unposted/reopened through their own flows.
func (v *VoucherHeader) MayEdit() bool {
	return v.Status == VoucherStatusDraft ||
		v.Status == VoucherStatusSubmitted ||
		v.Status == VoucherStatusApproved
}

// IsAccrual returns true for accrual journal vouchers
func (v *VoucherHeader) IsAccrual() bool {
	return v.VoucherType == VoucherTypeJournal &&
		v.JournalKind != nil && *v.JournalKind == JournalKindAccrual
}

// IsAmortization returns true for amortization journal vouchers
func (v *VoucherHeader) IsAmortization() bool {
	return v.VoucherType == VoucherTypeJournal &&
		v.JournalKind != nil && *v.JournalKind == JournalKindAmortization
}

// TotalDebit sums the debit column of the loaded details
func (v *VoucherHeader) TotalDebit() float64 {
	var total float64
	for _, d := range v.Details {
		total += d.Debit
	}
	return total
}

// TotalCredit sums the credit column of the loaded details
func (v *VoucherHeader) TotalCredit() float64 {
	var total float64
	for _, d := range v.Details {
		total += d.Credit
	}
	return total
}

// VoucherResponse is the JSON response format for vouchers
type VoucherResponse struct {
	ID           uint                    `json:"id"`
	Number       string                  `json:"number"`
	VoucherType  string                  `json:"voucher_type"`
	Date         time.Time               `json:"date"`
	Payee        *string                 `json:"payee"`
	Particulars  *string                 `json:"particulars"`
	Total        float64                 `json:"total"`
	AmountPaid   float64                 `json:"amount_paid"`
	Status       string                  `json:"status"`
	JournalKind  *string                 `json:"journal_kind,omitempty"`
	CheckNumber  *string                 `json:"check_number,omitempty"`
	TotalDebit   float64                 `json:"total_debit"`
	TotalCredit  float64                 `json:"total_credit"`
	HasAttachment bool                   `json:"has_attachment"`
	CreatedBy    string                  `json:"created_by,omitempty"`
	ApprovedBy   string                  `json:"approved_by,omitempty"`
	PostedBy     string                  `json:"posted_by,omitempty"`
	ApprovedAt   *time.Time              `json:"approved_at"`
	PostedAt     *time.Time              `json:"posted_at"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
	Details      []VoucherDetailResponse `json:"details,omitempty"`
}

// ToResponse converts VoucherHeader to VoucherResponse
func (v *VoucherHeader) ToResponse() VoucherResponse {
	resp := VoucherResponse{
		ID:            v.ID,
		Number:        v.Number,
		VoucherType:   v.VoucherType,
		Date:          v.Date,
		Payee:         v.Payee,
		Particulars:   v.Particulars,
		Total:         v.Total,
		AmountPaid:    v.AmountPaid,
		Status:        v.Status,
		JournalKind:   v.JournalKind,
		CheckNumber:   v.CheckNumber,
		TotalDebit:    v.TotalDebit(),
		TotalCredit:   v.TotalCredit(),
		HasAttachment: v.AttachmentPath != nil && *v.AttachmentPath != "",
		ApprovedAt:    v.ApprovedAt,
		PostedAt:      v.PostedAt,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}

	if v.CreatedBy.ID != 0 {
		resp.CreatedBy = v.CreatedBy.FullName
	}
	if v.ApprovedBy != nil && v.ApprovedBy.ID != 0 {
		resp.ApprovedBy = v.ApprovedBy.FullName
	}
	if v.PostedBy != nil && v.PostedBy.ID != 0 {
		resp.PostedBy = v.PostedBy.FullName
	}

	for _, d := range v.Details {
		resp.Details = append(resp.Details, d.ToResponse())
	}

	return resp
}
