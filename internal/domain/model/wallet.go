package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet represents a provider-backed virtual account owned by a user.
// ExternalID is the provider-side wallet identifier reported back in
// webhook payloads as the customer id.
type Wallet struct {
	ID            int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	ExternalID    string    `gorm:"size:100;uniqueIndex;not null" json:"external_id"`
	AccountNumber string    `gorm:"size:32" json:"account_number"`
	AccountName   string    `gorm:"size:255" json:"account_name"`
	BankName      string    `gorm:"size:100" json:"bank_name"`
	// PendingBalance accumulates seller earnings held in escrow until
	// order funds are released for payout.
	PendingBalance decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"pending_balance"`
	CreatedAt      time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Wallet) TableName() string {
	return "wallets"
}
