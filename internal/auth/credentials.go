package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/db/controller/organization"
	"github.com/enterprise-suite/authgate/internal/db/models"
)

const whereID = "id = ?"

// LocalProvider verifies email and password credentials against the
// database and manages the account lifecycle.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local credential provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{db: db}
}

// Authenticate returns the user owning email if password matches.
// Emails are matched exactly as stored. Unknown email and wrong password
// both return ErrInvalidCredentials, an inactive account ErrAccountInactive.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		models.BurnPasswordCheck(password)
		log.Warn().Str("reason", "unknown_email").Msg("login rejected")

		return nil, ErrInvalidCredentials
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.VerifyPassword(password) {
		log.Warn().Str("user_id", user.ID).Str("reason", "wrong_password").Msg("login rejected")
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		log.Warn().Str("user_id", user.ID).Str("reason", "inactive").Msg("login rejected")
		return nil, ErrAccountInactive
	}

	return &user, nil
}

// NewUser describes an account to create.
type NewUser struct {
	Email        string
	Password     string
	FullName     string
	OrgID        *string
	RoleID       *string
	IsSuperAdmin bool
}

// CreateUser creates an active user. Tenant users need an organization.
func (p *LocalProvider) CreateUser(ctx context.Context, u NewUser) (*models.User, error) {
	email := strings.TrimSpace(u.Email)
	if email == "" || u.Password == "" {
		return nil, InvalidInput("email and password are required")
	}

	var count int64
	if err := p.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	if count > 0 {
		return nil, ErrEmailExists
	}

	user := models.User{
		ID:           "usr_" + uuid.NewString(),
		Email:        email,
		PasswordHash: models.HashPassword(u.Password),
		FullName:     u.FullName,
		OrgID:        u.OrgID,
		RoleID:       u.RoleID,
		Active:       true,
		IsSuperAdmin: u.IsSuperAdmin,
	}

	if err := p.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, models.ErrUserWithoutOrganization) {
			return nil, ErrNoOrganization
		}

		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUserByID retrieves a user by ID.
func (p *LocalProvider) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return loadUser(p.db.WithContext(ctx), userID)
}

// GetUserByEmail retrieves a user by exact email.
func (p *LocalProvider) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User

	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// ResetPassword replaces a user's password (admin function).
func (p *LocalProvider) ResetPassword(ctx context.Context, userID, newPassword string) error {
	if newPassword == "" {
		return InvalidInput("password is required")
	}

	if _, err := p.GetUserByID(ctx, userID); err != nil {
		return err
	}

	return p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("password_hash", models.HashPassword(newPassword)).Error
}

// ActivateUser activates a user account.
func (p *LocalProvider) ActivateUser(ctx context.Context, userID string) error {
	return p.setActive(ctx, userID, true)
}

// DeactivateUser deactivates a user account. Users are never deleted.
func (p *LocalProvider) DeactivateUser(ctx context.Context, userID string) error {
	return p.setActive(ctx, userID, false)
}

func (p *LocalProvider) setActive(ctx context.Context, userID string, active bool) error {
	if _, err := p.GetUserByID(ctx, userID); err != nil {
		return err
	}

	return p.db.WithContext(ctx).Model(&models.User{}).
		Where(whereID, userID).
		Update("active", active).Error
}

// ListUsers lists the users of an organization, every user for a nil orgID.
func (p *LocalProvider) ListUsers(ctx context.Context, orgID *string) ([]models.User, error) {
	var users []models.User

	query := p.db.WithContext(ctx).Model(&models.User{})
	if orgID != nil {
		query = query.Where("org_id = ?", *orgID)
	}

	if err := query.Order("email").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func loadUser(db *gorm.DB, userID string) (*models.User, error) {
	var user models.User

	err := db.Where(whereID, userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// loadOrganization maps a missing organization to ErrOrganizationInactive.
func loadOrganization(db *gorm.DB, orgID string) (*models.Organization, error) {
	org, err := organization.Get(db, orgID)
	if errors.Is(err, organization.ErrOrganizationNotFound) || errors.Is(err, organization.ErrIDEmpty) {
		return nil, ErrOrganizationInactive
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query organization: %w", err)
	}

	return org, nil
}
