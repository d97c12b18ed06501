package models

import (
	"time"
)

// Device is a physical kiosk or scanner bound to exactly one company. Every
// visit it creates inherits that tenant via the membership lookup; a device
// can never read or write another tenant's data.
type Device struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	CompanyID string    `gorm:"column:company_id;type:varchar(64);not null;index" json:"company_id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Device) TableName() string {
	return "device"
}
