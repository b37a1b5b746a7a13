package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContributionPlan is a tier of monthly contribution within a cooperative.
type ContributionPlan struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CooperativeID int64           `gorm:"not null;uniqueIndex:idx_plans_coop_name" json:"cooperative_id"`
	Name          string          `gorm:"size:100;not null;uniqueIndex:idx_plans_coop_name" json:"name"`
	MonthlyAmount decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"monthly_amount"`
	CreatedAt     time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ContributionPlan) TableName() string {
	return "contribution_plans"
}

// ContributionStatus represents the payment state of a monthly contribution
type ContributionStatus string

const (
	ContributionStatusPending ContributionStatus = "pending"
	ContributionStatusPaid    ContributionStatus = "paid"
)

// Contribution is one member's expected contribution for one period.
// The (membership_id, period) pair is unique so monthly generation can
// be rerun without creating duplicates.
type Contribution struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	MembershipID int64  `gorm:"not null;uniqueIndex:idx_contributions_membership_period" json:"membership_id"`
	// Period is the contribution month in YYYY-MM form.
	Period     string             `gorm:"size:7;not null;uniqueIndex:idx_contributions_membership_period" json:"period"`
	Amount     decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status     ContributionStatus `gorm:"size:20;default:'pending';index" json:"status"`
	PaymentRef *string            `gorm:"size:200" json:"payment_ref,omitempty"`
	PaidAt     *time.Time         `json:"paid_at,omitempty"`
	CreatedAt  time.Time          `gorm:"default:now()" json:"created_at"`
	UpdatedAt  time.Time          `gorm:"default:now()" json:"updated_at"`

	// Relations
	Membership *Membership `gorm:"foreignKey:MembershipID" json:"membership,omitempty"`
}

// TableName specifies the table name for GORM
func (Contribution) TableName() string {
	return "contributions"
}
