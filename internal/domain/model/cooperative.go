package model

import (
	"time"

	"github.com/google/uuid"
)

// Cooperative represents a savings cooperative
type Cooperative struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;unique;not null" json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedBy   uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt   time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Cooperative) TableName() string {
	return "cooperatives"
}

// MembershipStatus represents the approval state of a membership
type MembershipStatus string

const (
	MembershipStatusPending MembershipStatus = "pending"
	MembershipStatusActive  MembershipStatus = "active"
)

// MembershipRole represents a member's role within a cooperative
type MembershipRole string

const (
	MembershipRoleMember MembershipRole = "member"
	MembershipRoleAdmin  MembershipRole = "admin"
)

// Membership links a user to a cooperative and to a contribution tier.
type Membership struct {
	ID            int64            `gorm:"primaryKey;autoIncrement;" json:"id"`
	CooperativeID int64            `gorm:"not null;uniqueIndex:idx_memberships_coop_user" json:"cooperative_id"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_coop_user" json:"user_id"`
	PlanID        *int64           `gorm:"index" json:"plan_id,omitempty"`
	Status        MembershipStatus `gorm:"size:20;default:'pending';index" json:"status"`
	Role          MembershipRole   `gorm:"size:20;default:'member'" json:"role"`
	JoinedAt      *time.Time       `json:"joined_at,omitempty"`
	CreatedAt     time.Time        `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time        `gorm:"default:now()" json:"updated_at"`

	// Relations
	Cooperative *Cooperative      `gorm:"foreignKey:CooperativeID" json:"cooperative,omitempty"`
	Plan        *ContributionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// TableName specifies the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}
