package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/fatflowers/gymgate/pkg/types"
)

// Membership is a member's paid-access grant. Billing owns Status and EndsAt;
// this service only reads them. Rows are never deleted; expired and canceled
// grants stay for history.
type Membership struct {
	ID        string                 `gorm:"column:id;type:uuid;primary_key" json:"id"`
	MemberID  string                 `gorm:"column:member_id;type:uuid;not null;index:idx_memberships_member_created,priority:1" json:"member_id"`
	CompanyID string                 `gorm:"column:company_id;type:varchar(64);not null;index" json:"company_id"`
	Status    types.MembershipStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// EndsAt is nullable; when set and in the past it overrides Status.
	EndsAt *time.Time `gorm:"column:ends_at;default:null" json:"ends_at"`
	// Extra stores plan details and billing annotations as JSON.
	Extra     datatypes.JSON `gorm:"column:extra;type:jsonb;default:'{}'" json:"extra"`
	CreatedAt time.Time      `gorm:"index:idx_memberships_member_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (Membership) TableName() string {
	return "membership"
}
