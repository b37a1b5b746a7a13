package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shop represents a seller storefront
type Shop struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OwnerID   uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Name      string    `gorm:"size:255;unique;not null" json:"name"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Shop) TableName() string {
	return "shops"
}

// Product represents a marketplace listing
type Product struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	ShopID    int64           `gorm:"not null;index" json:"shop_id"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"price"`
	Stock     int             `gorm:"default:0" json:"stock"`
	CreatedAt time.Time       `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time       `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Product) TableName() string {
	return "products"
}

// OrderPaymentStatus represents whether order funds have been collected.
// An order transitions to paid at most once.
type OrderPaymentStatus string

const (
	OrderPaymentUnpaid   OrderPaymentStatus = "unpaid"
	OrderPaymentPaid     OrderPaymentStatus = "paid"
	OrderPaymentRefunded OrderPaymentStatus = "refunded"
)

// OrderEscrowStatus represents the escrow state of collected funds
type OrderEscrowStatus string

const (
	OrderEscrowPending  OrderEscrowStatus = "pending"
	OrderEscrowHeld     OrderEscrowStatus = "held"
	OrderEscrowReleased OrderEscrowStatus = "released"
)

// OrderStatus represents the fulfilment state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusDisputed   OrderStatus = "disputed"
)

// Order represents a marketplace purchase
type Order struct {
	ID            int64              `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"buyer_id"`
	ShopID        int64              `gorm:"not null;index" json:"shop_id"`
	ProductID     int64              `gorm:"not null" json:"product_id"`
	Quantity      int                `gorm:"not null;default:1" json:"quantity"`
	Amount        decimal.Decimal    `gorm:"type:decimal(15,2);not null" json:"amount"`
	PaymentStatus OrderPaymentStatus `gorm:"size:20;default:'unpaid';index" json:"payment_status"`
	EscrowStatus  OrderEscrowStatus  `gorm:"size:20;default:'pending'" json:"escrow_status"`
	Status        OrderStatus        `gorm:"size:20;default:'pending';index" json:"status"`
	CreatedAt     time.Time          `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time          `gorm:"default:now()" json:"updated_at"`

	// Relations
	Shop    *Shop    `gorm:"foreignKey:ShopID" json:"shop,omitempty"`
	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// TableName specifies the table name for GORM
func (Order) TableName() string {
	return "orders"
}
