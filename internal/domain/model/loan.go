package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LoanStatus represents the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusApproved LoanStatus = "approved"
	LoanStatusRejected LoanStatus = "rejected"
	LoanStatusRepaid   LoanStatus = "repaid"
)

// Loan represents a member loan against their contribution history.
type Loan struct {
	ID            int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	CooperativeID int64           `gorm:"not null;index" json:"cooperative_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Purpose       string          `gorm:"size:255" json:"purpose,omitempty"`
	Status        LoanStatus      `gorm:"size:20;default:'pending';index" json:"status"`
	ReviewedBy    *uuid.UUID      `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time      `json:"reviewed_at,omitempty"`
	DisbursedRef  *string         `gorm:"size:200" json:"disbursed_ref,omitempty"`
	CreatedAt     time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Loan) TableName() string {
	return "loans"
}
