package models

import (
	"time"
)

// Member is the identity record, distinct from any Membership (paid access
// grant) the member holds. Tenant-scoped by CompanyID; every lookup must
// filter on it.
type Member struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	CompanyID string `gorm:"column:company_id;type:varchar(64);not null;index:idx_members_company" json:"company_id"`
	Name      string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Email     string `gorm:"column:email;type:varchar(255);not null" json:"email"`
	// Active gates the account itself, independent of membership status.
	Active bool `gorm:"column:active;not null;default:true" json:"active"`
	// BiometricToken is the opaque enrollment token matched by biometric
	// scanners. Nullable; unique when present.
	BiometricToken *string   `gorm:"column:biometric_token;type:varchar(128);uniqueIndex:ux_members_biometric" json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (Member) TableName() string {
	return "member"
}
