package models

import "time"

// RefreshToken tracks an issued refresh credential by its jti.
// Rows are never deleted, revocation keeps the audit trail.
type RefreshToken struct {
	// ID is the jti claim of the refresh token.
	ID     string `gorm:"primaryKey;size:64"`
	UserID string `gorm:"size:64;not null;index"`
	// Revoked is set on logout or when the token was rotated.
	Revoked   bool `gorm:"not null;default:false;index"`
	ExpiresAt time.Time
	RevokedAt *time.Time
	// ReplacedBy is the jti of the token issued when this one was rotated.
	ReplacedBy *string `gorm:"size:64"`
	CreatedAt  time.Time
}

// TableName overrides GORM's default pluralized table naming.
func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&Organization{},
		&Role{},
		&User{},
		&Module{},
		&Submodule{},
		&RolePermission{},
		&RefreshToken{},
	}
}
