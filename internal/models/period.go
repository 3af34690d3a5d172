package models

import (
	"fmt"
	"time"
)

// AccountingPeriod is one calendar month of the books. Closing a period is
// administrative: every mutation of a document dated inside a closed month is
// refused, without exception.
type AccountingPeriod struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Year           int        `gorm:"not null;uniqueIndex:idx_period_year_month" json:"year"`
	Month          int        `gorm:"not null;uniqueIndex:idx_period_year_month" json:"month"`
	Status         string     `gorm:"size:10;default:open;not null;index" json:"status"`
	ClosedByUserID *uint      `json:"closed_by_user_id"`
	ClosedAt       *time.Time `json:"closed_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Associations
	ClosedBy *User `gorm:"foreignKey:ClosedByUserID" json:"closed_by,omitempty"`
}

// TableName specifies the table name for AccountingPeriod
func (AccountingPeriod) TableName() string {
	return "accounting_periods"
}

// Period status constants
const (
	PeriodStatusOpen   = "open"
	PeriodStatusClosed = "closed"
)

// IsClosed returns true when the period has been administratively closed
func (p *AccountingPeriod) IsClosed() bool {
	return p.Status == PeriodStatusClosed
}

// Contains reports whether the date falls inside this period's month
func (p *AccountingPeriod) Contains(date time.Time) bool {
	return date.Year() == p.Year && int(date.Month()) == p.Month
}

// Label returns the period formatted as YYYY-MM
func (p *AccountingPeriod) Label() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// FirstDay returns the first day of the period month
func (p *AccountingPeriod) FirstDay() time.Time {
	return time.Date(p.Year, time.Month(p.Month), 1, 0, 0, 0, 0, time.UTC)
}
