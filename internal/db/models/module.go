package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrInvalidSubmoduleName is returned when a submodule name is not "<resource>.<action>".
var ErrInvalidSubmoduleName = errors.New("submodule name must be <resource>.<action>")

// Module is a top-level functional area such as commerce or finance.
// Modules are seeded once and read-only at runtime.
type Module struct {
	ID          string      `gorm:"primaryKey;size:64" json:"id"`
	Name        string      `gorm:"uniqueIndex;size:100;not null" json:"module_name"`
	DisplayName string      `gorm:"size:100" json:"display_name"`
	Description string      `gorm:"size:255" json:"description"`
	Submodules  []Submodule `gorm:"foreignKey:ModuleID" json:"submodules,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TableName overrides GORM's default pluralized table naming.
func (Module) TableName() string {
	return "modules"
}

// Submodule is the finest permission unit, one (resource, action) pair.
type Submodule struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	ModuleID string `gorm:"size:64;not null;index" json:"module_id"`
	// Name is unique and always Resource + "." + Action, e.g. "customers.view".
	Name        string    `gorm:"uniqueIndex;size:150;not null" json:"submodule_name"`
	Resource    string    `gorm:"size:100;not null" json:"resource"`
	Action      string    `gorm:"size:50;not null" json:"action"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName overrides GORM's default pluralized table naming.
func (Submodule) TableName() string {
	return "submodules"
}

// SubmoduleName builds the composite capability name.
func SubmoduleName(resource, action string) string {
	return resource + "." + action
}

// BeforeCreate rejects names that do not match resource and action.
func (s *Submodule) BeforeCreate(_ *gorm.DB) error {
	if s.Resource == "" || s.Action == "" ||
		strings.Contains(s.Resource, ".") || strings.Contains(s.Action, ".") ||
		s.Name != SubmoduleName(s.Resource, s.Action) {
		return ErrInvalidSubmoduleName
	}

	return nil
}
