package models

import (
	"time"
)

// ChartOfAccount is a row of the chart of accounts. Detail lines reference
// accounts by number; posting refuses lines whose account no longer exists.
type ChartOfAccount struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AccountNumber string    `gorm:"size:20;uniqueIndex;not null" json:"account_number"`
	AccountName   string    `gorm:"size:150;not null" json:"account_name"`
	AccountType   string    `gorm:"size:20;not null;index" json:"account_type"`
	NormalBalance string    `gorm:"size:10;not null" json:"normal_balance"` // debit or credit
	Active        bool      `gorm:"default:true;index" json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for ChartOfAccount
func (ChartOfAccount) TableName() string {
	return "chart_of_accounts"
}

// Account type constants
const (
	AccountTypeAsset     = "asset"
	AccountTypeLiability = "liability"
	AccountTypeEquity    = "equity"
	AccountTypeRevenue   = "revenue"
	AccountTypeExpense   = "expense"
)

// Normal balance constants
const (
	NormalBalanceDebit  = "debit"
	NormalBalanceCredit = "credit"
)

// ValidAccountType reports whether t is one of the known account types
func ValidAccountType(t string) bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity,
		AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}
