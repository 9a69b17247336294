package models

import "time"

// RolePermission grants one submodule to one role. There is at most one
// row per (role, submodule); reassignment replaces the role's whole set.
type RolePermission struct {
	RoleID      string    `gorm:"primaryKey;size:64;column:role_id" json:"role_id"`
	SubmoduleID string    `gorm:"primaryKey;size:64;column:submodule_id" json:"submodule_id"`
	Granted     bool      `gorm:"not null" json:"granted"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides GORM's default pluralized table naming.
func (RolePermission) TableName() string {
	return "role_permissions"
}
