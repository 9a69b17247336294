// Package organization provides lookups and billing/admin mutations for tenants.
// Organizations are never deleted, Deactivate only clears the active flag.
package organization

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/db/models"
)

const (
	idQueryPattern = "id = ?"
)

var (
	// ErrOrganizationNotFound is returned when an organization is not found.
	ErrOrganizationNotFound = errors.New("organization not found")
	// ErrOrganizationNameEmpty is returned when creating an organization without name.
	ErrOrganizationNameEmpty = errors.New("organization name cannot be empty")
	// ErrIDEmpty is returned when an empty organization id is passed.
	ErrIDEmpty = errors.New("organization id cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves an organization by id.
func Get(db *gorm.DB, id string) (*models.Organization, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if id == "" {
		return nil, ErrIDEmpty
	}

	var org models.Organization

	result := db.Where(idQueryPattern, id).First(&org)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}

		return nil, result.Error
	}

	return &org, nil
}

// List returns every organization ordered by name.
func List(db *gorm.DB) ([]models.Organization, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	orgs := []models.Organization{}
	if err := db.Order("name").Find(&orgs).Error; err != nil {
		return nil, err
	}

	return orgs, nil
}

// Create inserts a new active organization on the given plan.
// An empty status starts the organization on trial.
func Create(db *gorm.DB, name, plan string, status models.SubscriptionStatus) (*models.Organization, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrOrganizationNameEmpty
	}

	org := &models.Organization{
		ID:                 "org_" + uuid.NewString(),
		Name:               name,
		Active:             true,
		SubscriptionStatus: models.NormalizeSubscriptionStatus(string(status)),
		Plan:               plan,
	}

	if result := db.Create(org); result.Error != nil {
		return nil, result.Error
	}

	return org, nil
}

// SetSubscription stores a new live subscription status and, if not empty, plan.
// The tenant resolver picks the change up on the next request.
func SetSubscription(db *gorm.DB, id string, status models.SubscriptionStatus, plan string) (*models.Organization, error) {
	org, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"subscription_status": models.NormalizeSubscriptionStatus(string(status)),
	}
	if plan != "" {
		updates["plan"] = plan
	}

	if err = db.Model(org).Updates(updates).Error; err != nil {
		return nil, err
	}

	return Get(db, id)
}

// Deactivate soft-deactivates an organization.
func Deactivate(db *gorm.DB, id string) error {
	return setActive(db, id, false)
}

// Activate re-activates an organization.
func Activate(db *gorm.DB, id string) error {
	return setActive(db, id, true)
}

func setActive(db *gorm.DB, id string, active bool) error {
	// mysql reports changed rows only, so existence is checked up front
	if _, err := Get(db, id); err != nil {
		return err
	}

	return db.Model(&models.Organization{}).Where(idQueryPattern, id).Update("active", active).Error
}
