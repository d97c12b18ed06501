package models

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog records every gate decision, success or failure, for compliance.
// Writes are fire-and-forget; a failed audit insert never affects the
// decision that produced it.
type AuditLog struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	CompanyID string `gorm:"column:company_id;type:varchar(64);not null;index:idx_audit_company_created,priority:1" json:"company_id"`
	Action    string `gorm:"column:action;type:varchar(64);not null" json:"action"`
	Success   bool   `gorm:"column:success;not null" json:"success"`
	Code      string `gorm:"column:code;type:varchar(64)" json:"code"`
	Message   string `gorm:"column:message;type:varchar(512)" json:"message"`
	// Metadata holds decision context: device, member, visit ids and the like.
	Metadata  datatypes.JSON `gorm:"column:metadata;type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt time.Time      `gorm:"index:idx_audit_company_created,priority:2,sort:desc" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_log"
}
