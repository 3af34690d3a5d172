package models

import (
	"time"
)

// GeneralLedgerEntry is an immutable ledger row created only by the posting
// engine, one per voucher detail line. Rows are never updated; unposting a
// voucher deletes every row sharing its Reference as a unit.
type GeneralLedgerEntry struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Date          time.Time      `gorm:"type:date;not null;index" json:"date"`
	Reference     string         `gorm:"size:30;not null;index" json:"reference"` // voucher number
	Description   string         `gorm:"size:255" json:"description"`
	AccountNumber string         `gorm:"size:20;not null;index" json:"account_number"`
	AccountName   string         `gorm:"size:150;not null" json:"account_name"`
	SubAccountKind SubAccountKind `gorm:"size:20" json:"sub_account_kind"`
	SubAccountID   *uint          `json:"sub_account_id"`
	SubAccountName *string        `gorm:"size:150" json:"sub_account_name"`
	Debit          float64        `gorm:"type:decimal(15,2);default:0" json:"debit"`
	Credit         float64        `gorm:"type:decimal(15,2);default:0" json:"credit"`
	Module         string         `gorm:"size:30;not null;index" json:"module"`
	CreatedAt      time.Time      `json:"created_at"`
}

// TableName specifies the table name for GeneralLedgerEntry
func (GeneralLedgerEntry) TableName() string {
	return "general_ledger_book"
}

// Ledger module tags
const (
	LedgerModuleCheckVoucher   = "check_voucher"
	LedgerModuleJournalVoucher = "journal_voucher"
	LedgerModuleOrderSlip      = "order_slip"
)

// LedgerModuleFor maps a voucher type to its ledger module tag
func LedgerModuleFor(voucherType string) string {
	switch voucherType {
	case VoucherTypeCheck:
		return LedgerModuleCheckVoucher
	case VoucherTypeOrderSlip:
		return LedgerModuleOrderSlip
	default:
		return LedgerModuleJournalVoucher
	}
}

// GeneralLedgerEntryResponse is the JSON response format for ledger rows
type GeneralLedgerEntryResponse struct {
	ID             uint      `json:"id"`
	Date           time.Time `json:"date"`
	Reference      string    `json:"reference"`
	Description    string    `json:"description"`
	AccountNumber  string    `json:"account_number"`
	AccountName    string    `json:"account_name"`
	SubAccountName *string   `json:"sub_account_name,omitempty"`
	Debit          float64   `json:"debit"`
	Credit         float64   `json:"credit"`
	Module         string    `json:"module"`
}

// ToResponse converts GeneralLedgerEntry to GeneralLedgerEntryResponse
func (e *GeneralLedgerEntry) ToResponse() GeneralLedgerEntryResponse {
	return GeneralLedgerEntryResponse{
		ID:             e.ID,
		Date:           e.Date,
		Reference:      e.Reference,
		Description:    e.Description,
		AccountNumber:  e.AccountNumber,
		AccountName:    e.AccountName,
		SubAccountName: e.SubAccountName,
		Debit:          e.Debit,
		Credit:         e.Credit,
		Module:         e.Module,
	}
}
