package models

import (
	"time"
)

// SubAccountKind tags the optional sub-account reference carried by a detail
// line. The id is kept even when the referenced record can no longer be
// resolved to a display name.
type SubAccountKind string

// Sub-account kind constants
const (
	SubAccountNone     SubAccountKind = ""
	SubAccountSupplier SubAccountKind = "supplier"
	SubAccountCustomer SubAccountKind = "customer"
	SubAccountEmployee SubAccountKind = "employee"
	SubAccountBank     SubAccountKind = "bank"
	SubAccountCompany  SubAccountKind = "company"
)

// Valid reports whether the kind is one of the known tags
func (k SubAccountKind) Valid() bool {
	switch k {
	case SubAccountNone, SubAccountSupplier, SubAccountCustomer,
		SubAccountEmployee, SubAccountBank, SubAccountCompany:
		return true
	}
	return false
}

// VoucherDetail is a single debit/credit line belonging to exactly one
// voucher header.
type VoucherDetail struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	VoucherID     uint           `gorm:"not null;index" json:"voucher_id"`
	AccountNumber string         `gorm:"size:20;not null;index" json:"account_number"`
	AccountName   string         `gorm:"size:150;not null" json:"account_name"`
	Debit         float64        `gorm:"type:decimal(15,2);default:0" json:"debit"`
	Credit        float64        `gorm:"type:decimal(15,2);default:0" json:"credit"`
	AmountPaid    float64        `gorm:"type:decimal(15,2);default:0" json:"amount_paid"`
	SubAccountKind SubAccountKind `gorm:"size:20" json:"sub_account_kind"`
	SubAccountID   *uint          `json:"sub_account_id"`
	// Resolved lazily; resolution failures leave the name null.
	SubAccountName *string   `gorm:"size:150" json:"sub_account_name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	Voucher *VoucherHeader `gorm:"foreignKey:VoucherID" json:"-"`
}

// TableName specifies the table name for VoucherDetail
func (VoucherDetail) TableName() string {
	return "voucher_details"
}

// HasSubAccount returns true when the line carries a sub-account reference
func (d *VoucherDetail) HasSubAccount() bool {
	return d.SubAccountKind != SubAccountNone && d.SubAccountID != nil
}

// VoucherDetailResponse is the JSON response format for detail lines
type VoucherDetailResponse struct {
	ID             uint    `json:"id"`
	VoucherID      uint    `json:"voucher_id"`
	AccountNumber  string  `json:"account_number"`
	AccountName    string  `json:"account_name"`
	Debit          float64 `json:"debit"`
	Credit         float64 `json:"credit"`
	AmountPaid     float64 `json:"amount_paid"`
	SubAccountKind string  `json:"sub_account_kind,omitempty"`
	SubAccountID   *uint   `json:"sub_account_id,omitempty"`
	SubAccountName *string `json:"sub_account_name,omitempty"`
}

// ToResponse converts VoucherDetail to VoucherDetailResponse
func (d *VoucherDetail) ToResponse() VoucherDetailResponse {
	return VoucherDetailResponse{
		ID:             d.ID,
		VoucherID:      d.VoucherID,
		AccountNumber:  d.AccountNumber,
		AccountName:    d.AccountName,
		Debit:          d.Debit,
		Credit:         d.Credit,
		AmountPaid:     d.AmountPaid,
		SubAccountKind: string(d.SubAccountKind),
		SubAccountID:   d.SubAccountID,
		SubAccountName: d.SubAccountName,
	}
}
