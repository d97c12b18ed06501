package models

import (
	"time"
)

// Visit is one physical presence interval at a location. A visit with a nil
// CheckOut is "open": the member is considered currently present.
//
// The partial unique index on MembershipID enforces at most one open visit per
// membership at the database level. Two concurrent scans can therefore never
// both create an open visit; the loser surfaces gorm.ErrDuplicatedKey, which
// the ledger maps to ErrDuplicateOpenVisit.
type Visit struct {
	ID           string     `gorm:"column:id;type:uuid;primary_key" json:"id"`
	MembershipID string     `gorm:"column:membership_id;type:uuid;not null;index;uniqueIndex:ux_visits_open_membership,where:check_out IS NULL" json:"membership_id"`
	GymID        string     `gorm:"column:gym_id;type:varchar(64);not null;index" json:"gym_id"`
	DeviceID     string     `gorm:"column:device_id;type:uuid;not null" json:"device_id"`
	CheckIn      time.Time  `gorm:"column:check_in;not null" json:"check_in"`
	CheckOut     *time.Time `gorm:"column:check_out;default:null" json:"check_out"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Visit) TableName() string {
	return "visit"
}

// Open reports whether the visit has not been checked out yet.
func (v *Visit) Open() bool {
	return v != nil && v.CheckOut == nil
}
