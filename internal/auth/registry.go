package auth

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/db/models"
)

// System role ids besides OrgAdminRoleID.
const (
	ManagerRoleID = "role_manager"
	StaffRoleID   = "role_staff"
	ViewerRoleID  = "role_viewer"
)

// systemRole is a bootstrap role and the grants it starts with.
type systemRole struct {
	ID          string
	Name        string
	Description string
	Grants      func(module, action string) bool
}

func systemRoles() []systemRole {
	return []systemRole{
		{
			ID: OrgAdminRoleID, Name: "org_admin",
			Description: "Full access within the organization",
			Grants:      func(string, string) bool { return true },
		},
		{
			ID: ManagerRoleID, Name: "manager",
			Description: "View, create and update across all modules",
			Grants: func(_, action string) bool {
				return action == ActionView || action == ActionCreate || action == ActionUpdate
			},
		},
		{
			ID: StaffRoleID, Name: "staff",
			Description: "View and create in commerce and crm",
			Grants: func(module, action string) bool {
				return (module == ModuleCommerce || module == ModuleCRM) &&
					(action == ActionView || action == ActionCreate)
			},
		},
		{
			ID: ViewerRoleID, Name: "viewer",
			Description: "Read-only access to all modules",
			Grants:      func(_, action string) bool { return action == ActionView },
		},
	}
}

// ModuleID returns the stable id of a catalog module.
func ModuleID(name string) string {
	return "mod_" + name
}

// SubmoduleID returns the stable id of a catalog submodule, for example
// sub_customers_view. The submodule name keeps the dotted form.
func SubmoduleID(resource, action string) string {
	return "sub_" + resource + "_" + action
}

// Bootstrap seeds the catalog and the system roles. It is safe to run on
// every start.
func (s *Service) Bootstrap(ctx context.Context) error {
	if err := s.InitializeModulesAndPermissions(ctx); err != nil {
		return err
	}

	return s.CreateSystemRoles(ctx)
}

// InitializeModulesAndPermissions inserts the catalog modules and
// submodules that do not exist yet, matched by name.
func (s *Service) InitializeModulesAndPermissions(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		submodules := 0

		for _, cm := range Catalog() {
			var module models.Module

			res := tx.Where("name = ?", cm.Name).
				Attrs(models.Module{
					ID:          ModuleID(cm.Name),
					Name:        cm.Name,
					DisplayName: cm.DisplayName,
					Description: cm.Description,
				}).
				FirstOrCreate(&module)
			if res.Error != nil {
				return fmt.Errorf("failed to create module %s: %w", cm.Name, res.Error)
			}

			for _, r := range cm.Resources {
				for _, action := range r.Actions {
					name := models.SubmoduleName(r.Name, action)

					var sub models.Submodule

					res = tx.Where("name = ?", name).
						Attrs(models.Submodule{
							ID:          SubmoduleID(r.Name, action),
							ModuleID:    module.ID,
							Name:        name,
							Resource:    r.Name,
							Action:      action,
							Description: action + " " + r.Name,
						}).
						FirstOrCreate(&sub)
					if res.Error != nil {
						return fmt.Errorf("failed to create submodule %s: %w", name, res.Error)
					}

					submodules++
				}
			}
		}

		log.Debug().Int("submodules", submodules).Msg("permission catalog initialized")

		return nil
	})
}

// CreateSystemRoles inserts the missing system roles with their default
// grants. Roles that already exist keep their grants.
func (s *Service) CreateSystemRoles(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var subs []struct {
			ID         string
			Action     string
			ModuleName string
		}

		err := tx.Table("submodules").
			Select("submodules.id, submodules.action, modules.name AS module_name").
			Joins("JOIN modules ON modules.id = submodules.module_id").
			Scan(&subs).Error
		if err != nil {
			return fmt.Errorf("failed to load submodules: %w", err)
		}

		for _, sr := range systemRoles() {
			var count int64
			if err := tx.Model(&models.Role{}).Where(whereID, sr.ID).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check role %s: %w", sr.ID, err)
			}

			if count > 0 {
				continue
			}

			role := models.Role{
				ID:          sr.ID,
				Name:        sr.Name,
				Description: sr.Description,
				IsSystem:    true,
			}

			if err := tx.Create(&role).Error; err != nil {
				return fmt.Errorf("failed to create role %s: %w", sr.ID, err)
			}

			grants := make([]models.RolePermission, 0, len(subs))

			for _, sub := range subs {
				if sr.Grants(sub.ModuleName, sub.Action) {
					grants = append(grants, models.RolePermission{RoleID: role.ID, SubmoduleID: sub.ID, Granted: true})
				}
			}

			if len(grants) > 0 {
				if err := tx.Create(&grants).Error; err != nil {
					return fmt.Errorf("failed to grant role %s: %w", sr.ID, err)
				}
			}

			log.Info().Str("role_id", role.ID).Int("grants", len(grants)).Msg("system role created")
		}

		return nil
	})
}

// ListModules returns the catalog with submodules, ordered by name.
func (s *Service) ListModules(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module

	err := s.db.WithContext(ctx).
		Preload("Submodules", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Order("name").
		Find(&modules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}

	return modules, nil
}
