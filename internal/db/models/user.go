package models

import (
	"errors"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ErrUserWithoutOrganization is returned when saving a tenant user without an organization.
var ErrUserWithoutOrganization = errors.New("only super admins may exist without an organization")

// dummyHash is verified against when no user matched, so a failed lookup
// costs the same as a wrong password.
var dummyHash = HashPassword("authgate-timing-equalizer") //nolint:gochecknoglobals

// User is an enterprise account bound to at most one organization.
// Super admins have no organization. Users are deactivated, not deleted.
type User struct {
	// ID is the unique user identifier.
	ID string `gorm:"primaryKey;size:64" json:"id"`
	// Email is unique and matched exactly as stored.
	Email string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	// PasswordHash is the Argon2id hash of the password.
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	// FullName is the display name.
	FullName string `gorm:"size:200" json:"full_name"`
	// RoleID references the assigned role, nil if none.
	RoleID *string `gorm:"size:64;index" json:"role_id"`
	// OrgID references the organization, nil only for super admins.
	OrgID *string `gorm:"size:64;index" json:"org_id"`
	// Active is false for deactivated accounts.
	Active bool `gorm:"not null" json:"is_active"`
	// IsSuperAdmin marks platform operators, they are not tenant scoped.
	IsSuperAdmin bool      `gorm:"not null;default:false" json:"is_super_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName overrides GORM's default pluralized table naming.
func (User) TableName() string {
	return "enterprise_users"
}

// BeforeCreate enforces that only super admins exist without an organization.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if !u.IsSuperAdmin && (u.OrgID == nil || *u.OrgID == "") {
		return ErrUserWithoutOrganization
	}

	return nil
}

// HashPassword hashes a plaintext password using the Argon2id algorithm
// with the default parameters.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the stored hash
// in constant time.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.PasswordHash)
	if err != nil {
		log.Error().Err(err).Str("user_id", u.ID).Msg("failed to verify password")
		return false
	}

	return match
}

// BurnPasswordCheck runs a verification against a fixed hash. Call it when
// no user was found so response timing does not reveal unknown emails.
func BurnPasswordCheck(password string) {
	_, _ = argon2id.ComparePasswordAndHash(password, dummyHash)
}
