package models

import (
	"time"
)

// AmortizationSetting drives the one-shot fan-out of follow-on journal
// vouchers when an amortization voucher is first posted. Once the future
// months have been generated the setting is consumed: remaining drops to 0
// and Active flips off.
type AmortizationSetting struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	VoucherID           uint      `gorm:"not null;uniqueIndex" json:"voucher_id"`
	StartDate           time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate             time.Time `gorm:"type:date;not null" json:"end_date"`
	OccurrenceTotal     int       `gorm:"not null" json:"occurrence_total"`
	OccurrenceRemaining int       `gorm:"not null" json:"occurrence_remaining"`
	Active              bool      `gorm:"default:true;index" json:"active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Associations
	Voucher *VoucherHeader `gorm:"foreignKey:VoucherID" json:"-"`
}

// TableName specifies the table name for AmortizationSetting
func (AmortizationSetting) TableName() string {
	return "amortization_settings"
}

// Consumed returns true once the fan-out has been generated
func (a *AmortizationSetting) Consumed() bool {
	return !a.Active && a.OccurrenceRemaining == 0
}
