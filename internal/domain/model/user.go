package model

import (
	"time"

	"github.com/google/uuid"
)

// UserRole represents the platform-level role of a user
type UserRole string

const (
	UserRoleMember UserRole = "member"
	UserRoleAdmin  UserRole = "admin"
)

// User represents a registered platform user
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	FirstName    string    `gorm:"size:100;not null" json:"first_name"`
	LastName     string    `gorm:"size:100;not null" json:"last_name"`
	Email        string    `gorm:"size:255;unique;not null" json:"email"`
	Phone        string    `gorm:"size:32" json:"phone,omitempty"`
	PasswordHash string    `gorm:"not null" json:"-"`
	// PinHash is the bcrypt hash of the transaction PIN, set separately
	// from the login password.
	PinHash   *string   `json:"-"`
	Role      UserRole  `gorm:"size:20;default:'member';index" json:"role"`
	CreatedAt time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:now()" json:"updated_at"`

	// Relations
	Wallet *Wallet `gorm:"foreignKey:UserID" json:"wallet,omitempty"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
