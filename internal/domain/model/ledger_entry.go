package model

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerDirection represents the direction of a ledger entry
type LedgerDirection string

const (
	LedgerDirectionCredit LedgerDirection = "CREDIT"
	LedgerDirectionDebit  LedgerDirection = "DEBIT"
)

// Scan implements sql.Scanner interface
func (d *LedgerDirection) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*d = LedgerDirection(v)
	case []byte:
		*d = LedgerDirection(v)
	default:
		return nil
	}
	return nil
}

// Value implements driver.Valuer interface
func (d LedgerDirection) Value() (driver.Value, error) {
	return string(d), nil
}

// LedgerStatus represents the settlement status of a ledger entry.
// SUCCESS and FAILED are terminal for a given reference.
type LedgerStatus string

const (
	LedgerStatusPending LedgerStatus = "PENDING"
	LedgerStatusSuccess LedgerStatus = "SUCCESS"
	LedgerStatusFailed  LedgerStatus = "FAILED"
)

// Scan implements sql.Scanner interface
func (s *LedgerStatus) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		*s = LedgerStatus(v)
	case []byte:
		*s = LedgerStatus(v)
	default:
		*s = LedgerStatusPending
	}
	return nil
}

// Value implements driver.Valuer interface
func (s LedgerStatus) Value() (driver.Value, error) {
	return string(s), nil
}

// LedgerEntry is the durable record of a single wallet-affecting money
// movement. Reference is globally unique and serves as the idempotency
// key for webhook replays and duplicate payout submissions; the unique
// index is the correctness backstop, the application-level checks are
// advisory.
type LedgerEntry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	WalletID  int64     `gorm:"not null;index" json:"wallet_id"`
	Reference string    `gorm:"size:200;uniqueIndex;not null" json:"reference"`
	// MerchantRef is a secondary correlation key (e.g. an order id); the
	// provider may report either identifier first.
	MerchantRef        *string         `gorm:"size:200;index" json:"merchant_ref,omitempty"`
	Direction          LedgerDirection `gorm:"type:ledger_direction;not null" json:"direction"`
	Amount             decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Status             LedgerStatus    `gorm:"type:ledger_status;default:'PENDING';index" json:"status"`
	Channel            string          `gorm:"size:50" json:"channel"`
	BeneficiaryAccount *string         `gorm:"size:32" json:"beneficiary_account,omitempty"`
	Narration          string          `gorm:"size:255" json:"narration"`
	// RawWebhookPayload keeps the last provider payload that produced or
	// updated this entry, for audit and replay diagnosis.
	RawWebhookPayload JSONB      `gorm:"type:jsonb" json:"raw_webhook_payload,omitempty"`
	TransactionDate   *time.Time `json:"transaction_date,omitempty"`
	CreatedAt         time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// Terminal reports whether the entry has reached a final status.
func (e *LedgerEntry) Terminal() bool {
	return e.Status == LedgerStatusSuccess || e.Status == LedgerStatusFailed
}
