package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/db/models"
)

// Service is the RBAC engine: permission checks, role grants and role
// assignment. Every check reads the current database state.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Grant is one submodule granted to a role.
type Grant struct {
	SubmoduleID   string `json:"submodule_id"`
	SubmoduleName string `json:"submodule_name"`
	ModuleID      string `json:"module_id"`
	Granted       bool   `json:"granted"`
}

// CheckPermission reports whether userID may perform action on the
// resource named module. Any failure while checking denies.
func (s *Service) CheckPermission(ctx context.Context, userID, module, action string) (allowed bool) {
	permission := models.SubmoduleName(module, action)

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("user_id", userID).Str("permission", permission).
				Msg("permission check panicked")

			allowed = false
		}
	}()

	has, err := s.HasPermission(ctx, userID, permission)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("permission", permission).
			Msg("failed to check permission")

		return false
	}

	return has
}

// HasPermission checks a "<resource>.<action>" permission for userID.
// Super admins and org admins hold every permission, a user without role
// holds none. An unregistered permission is denied with a warning.
func (s *Service) HasPermission(ctx context.Context, userID, permission string) (bool, error) {
	db := s.db.WithContext(ctx)

	user, err := loadUser(db, userID)
	if errors.Is(err, ErrUserNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	if !user.Active {
		return false, nil
	}

	access := ResolveAccessLevel(user.IsSuperAdmin, user.RoleID)

	switch {
	case access.IsSuperAdmin():
		return true, nil
	case access.RoleID == "":
		return false, nil
	case access.BypassesPermissions():
		return true, nil
	}

	var sub models.Submodule

	err = db.Select("id").Where("name = ?", permission).Take(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		log.Warn().Str("user_id", userID).Str("permission", permission).
			Msg("permission check on unregistered submodule")

		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("failed to load submodule: %w", err)
	}

	var count int64

	err = db.Model(&models.RolePermission{}).
		Where("role_id = ? AND submodule_id = ? AND granted = ?", access.RoleID, sub.ID, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// HasAnyPermission checks if a user has at least one of the given permissions.
func (s *Service) HasAnyPermission(ctx context.Context, userID string, permissions []string) (bool, error) {
	for _, perm := range permissions {
		has, err := s.HasPermission(ctx, userID, perm)
		if err != nil {
			return false, err
		}

		if has {
			return true, nil
		}
	}

	return false, nil
}

// AssignPermissions replaces the grants of roleID with submoduleIDs.
// Either every id is granted or, on any unknown id, nothing changes.
// An empty list revokes all grants.
func (s *Service) AssignPermissions(ctx context.Context, roleID string, submoduleIDs []string) error {
	ids := dedupe(submoduleIDs)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadRole(tx, roleID); err != nil {
			return err
		}

		if len(ids) > 0 {
			var found int64
			if err := tx.Model(&models.Submodule{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
				return fmt.Errorf("failed to check submodules: %w", err)
			}

			if found != int64(len(ids)) {
				return ErrSubmoduleNotFound
			}
		}

		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to clear role permissions: %w", err)
		}

		if len(ids) == 0 {
			return nil
		}

		grants := make([]models.RolePermission, 0, len(ids))
		for _, id := range ids {
			grants = append(grants, models.RolePermission{RoleID: roleID, SubmoduleID: id, Granted: true})
		}

		if err := tx.Create(&grants).Error; err != nil {
			return fmt.Errorf("failed to grant permissions: %w", err)
		}

		return nil
	})
}

// RolePermissions lists the grants of roleID ordered by submodule name.
func (s *Service) RolePermissions(ctx context.Context, roleID string) ([]Grant, error) {
	db := s.db.WithContext(ctx)

	if _, err := loadRole(db, roleID); err != nil {
		return nil, err
	}

	grants := []Grant{}

	err := db.Table("role_permissions").
		Select("role_permissions.submodule_id, submodules.name AS submodule_name, "+
			"submodules.module_id, role_permissions.granted").
		Joins("JOIN submodules ON submodules.id = role_permissions.submodule_id").
		Where("role_permissions.role_id = ?", roleID).
		Order("submodules.name").
		Scan(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list role permissions: %w", err)
	}

	return grants, nil
}

// UserPermissions returns the effective permission names of userID.
func (s *Service) UserPermissions(ctx context.Context, userID string) ([]string, error) {
	db := s.db.WithContext(ctx)

	user, err := loadUser(db, userID)
	if err != nil {
		return nil, err
	}

	permissions := []string{}
	access := ResolveAccessLevel(user.IsSuperAdmin, user.RoleID)

	if access.BypassesPermissions() {
		err = db.Model(&models.Submodule{}).Order("name").Pluck("name", &permissions).Error
	} else if access.RoleID != "" {
		err = db.Table("submodules").
			Joins("JOIN role_permissions ON role_permissions.submodule_id = submodules.id").
			Where("role_permissions.role_id = ? AND role_permissions.granted = ?", access.RoleID, true).
			Order("submodules.name").
			Pluck("submodules.name", &permissions).Error
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	return permissions, nil
}

// CreateRole creates a custom role of orgID. A nil orgID creates a system role.
func (s *Service) CreateRole(ctx context.Context, orgID *string, name, description string) (*models.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, InvalidInput("role name is required")
	}

	db := s.db.WithContext(ctx)

	var count int64

	err := db.Model(&models.Role{}).
		Where("scope_key = ? AND name = ?", models.RoleScopeKey(orgID), name).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check role name: %w", err)
	}

	if count > 0 {
		return nil, ErrRoleNameExists
	}

	role := models.Role{
		ID:          "role_" + uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(description),
		OrgID:       orgID,
		IsSystem:    orgID == nil,
	}

	if err := db.Create(&role).Error; err != nil {
		return nil, fmt.Errorf("failed to create role: %w", err)
	}

	log.Info().Str("role_id", role.ID).Str("scope", role.ScopeKey).Msg("role created")

	return &role, nil
}

// GetRole returns roleID if it is visible to orgScope, nil meaning any organization.
func (s *Service) GetRole(ctx context.Context, orgScope *string, roleID string) (*models.Role, error) {
	role, err := loadRole(s.db.WithContext(ctx), roleID)
	if err != nil {
		return nil, err
	}

	if !role.VisibleTo(orgScope) {
		return nil, ErrRoleNotFound
	}

	return role, nil
}

// ListRoles returns the system roles and the custom roles of orgScope.
// A nil orgScope returns every role.
func (s *Service) ListRoles(ctx context.Context, orgScope *string) ([]models.Role, error) {
	roles := []models.Role{}

	query := s.db.WithContext(ctx).Model(&models.Role{})
	if orgScope != nil {
		query = query.Where("org_id IS NULL OR org_id = ?", *orgScope)
	}

	if err := query.Order("is_system DESC").Order("name").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}

	return roles, nil
}

// AssignRoleToUser sets the role of userID. The user must belong to
// orgScope (nil for super admins) and the role must be a system role or a
// custom role of the user's organization.
func (s *Service) AssignRoleToUser(ctx context.Context, orgScope *string, userID, roleID string) error {
	db := s.db.WithContext(ctx)

	user, err := loadUser(db, userID)
	if err != nil {
		return err
	}

	if orgScope != nil && (user.OrgID == nil || *user.OrgID != *orgScope) {
		return ErrUserNotFound
	}

	role, err := loadRole(db, roleID)
	if err != nil {
		return err
	}

	if !role.VisibleTo(user.OrgID) || (role.OrgID != nil && user.OrgID == nil) {
		return ErrRoleNotFound
	}

	if err := db.Model(&models.User{}).Where(whereID, userID).Update("role_id", roleID).Error; err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}

	log.Info().Str("user_id", userID).Str("role_id", roleID).Msg("role assigned")

	return nil
}

func loadRole(db *gorm.DB, roleID string) (*models.Role, error) {
	var role models.Role

	err := db.Where(whereID, roleID).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query role: %w", err)
	}

	return &role, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))

	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}

		seen[v] = struct{}{}
		out = append(out, v)
	}

	return out
}
