package models

import (
	"strings"
	"time"
)

// SubscriptionStatus is the billing state of an organization.
type SubscriptionStatus string

const (
	// SubscriptionTrial is the state of a freshly signed up organization.
	SubscriptionTrial SubscriptionStatus = "trial"
	// SubscriptionActive is a paying organization.
	SubscriptionActive SubscriptionStatus = "active"
	// SubscriptionExpired is a trial or paid period that ran out.
	SubscriptionExpired SubscriptionStatus = "expired"
	// SubscriptionCancelled is an organization that cancelled its plan.
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// NormalizeSubscriptionStatus lower-cases and trims s, an empty value reads as trial.
func NormalizeSubscriptionStatus(s string) SubscriptionStatus {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SubscriptionTrial
	}

	return SubscriptionStatus(s)
}

// Organization is a tenant. Organizations are never deleted, only deactivated.
type Organization struct {
	// ID is the unique organization identifier.
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// Name is the display name.
	Name string `gorm:"size:200;not null" json:"name"`
	// Active is false for soft-deactivated organizations.
	Active bool `gorm:"not null" json:"is_active"`
	// SubscriptionStatus is the live billing state, see SubscriptionStatus.
	SubscriptionStatus SubscriptionStatus `gorm:"size:32" json:"subscription_status"`
	// Plan is the billing plan identifier (e.g. "starter", "growth").
	Plan      string    `gorm:"size:64" json:"plan"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides GORM's default pluralized table naming.
func (Organization) TableName() string {
	return "organizations"
}

// Subscription returns the normalized subscription status.
func (o *Organization) Subscription() SubscriptionStatus {
	return NormalizeSubscriptionStatus(string(o.SubscriptionStatus))
}
