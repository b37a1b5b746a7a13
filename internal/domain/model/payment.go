package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the status of a payment intent
type PaymentStatus string

const (
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusSuccessful PaymentStatus = "successful"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Payment represents a provider-initiated payment intent for an order or
// contribution. Status is only ever advanced by verification polling or
// webhook reconciliation, never by direct client mutation.
type Payment struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderID              *int64          `gorm:"index" json:"order_id,omitempty"`
	Amount               decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Currency             string          `gorm:"size:3;default:'NGN'" json:"currency"`
	TransactionReference string          `gorm:"size:200;uniqueIndex;not null" json:"transaction_reference"`
	RedirectURL          string          `gorm:"size:512" json:"redirect_url,omitempty"`
	Channel              string          `gorm:"size:50" json:"channel,omitempty"`
	Status               PaymentStatus   `gorm:"size:20;default:'pending';index" json:"status"`
	AmountAfterCharge    decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"amount_after_charge"`
	Charge               decimal.Decimal `gorm:"type:decimal(15,2);default:0" json:"charge"`
	RawResponse          JSONB           `gorm:"type:jsonb" json:"raw_response,omitempty"`
	CreatedAt            time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Payment) TableName() string {
	return "payments"
}
