// Package role provides the organization admin handlers for roles, their
// permission grants and the permission catalog.
package role

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/web/handler"
)

const (
	// Path is the base path for role management.
	Path = handler.OrgAdminPath + "/roles"
	// ModulesPath lists the permission catalog.
	ModulesPath = handler.OrgAdminPath + "/modules"

	// RouteCreate creates a custom role.
	RouteCreate = Path + "/create"
	// RoutePermissions reads and replaces the grants of a role.
	RoutePermissions = Path + "/:role_id/permissions"

	paramRoleID = "role_id"
)

// Service provides the role handlers.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app fiber.Router, env *handler.Env) error {
	if app == nil || env == nil {
		return handler.ErrNilEnv
	}

	s.env = env
	g := env.Guards

	app.Get(ModulesPath, append(g.OrgAdmin(), s.Modules)...)
	app.Get(Path, append(g.OrgAdmin(), s.List)...)
	app.Post(RouteCreate, append(g.OrgAdminWrite(), s.Create)...)
	app.Get(RoutePermissions, append(g.OrgAdmin(), s.Permissions)...)
	app.Post(RoutePermissions, append(g.OrgAdminWrite(), s.AssignPermissions)...)

	return nil
}

// Modules returns the catalog of modules and submodules.
func (s *Service) Modules(c *fiber.Ctx) error {
	modules, err := s.env.RBAC.ListModules(c.UserContext())
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"modules": modules})
}

// List returns the system roles and the roles of the caller's organization.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := s.env.RBAC.ListRoles(c.UserContext(), auth.OrgScope(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"roles": roles})
}

// Create creates a custom role in the caller's organization.
func (s *Service) Create(c *fiber.Ctx) error {
	p, err := handler.Principal(c)
	if err != nil {
		return err
	}

	var in createInput
	if err = s.env.Bind(c, &in); err != nil {
		return err
	}

	ctx := c.UserContext()

	orgID := auth.OrgScope(c)
	if p.IsSuperAdmin {
		orgID = in.OrgID

		if err = s.env.RequireOrganization(ctx, orgID); err != nil {
			return err
		}
	}

	role, err := s.env.RBAC.CreateRole(ctx, orgID, in.Name, in.Description)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(role)
}

// Permissions returns the grants of a role visible to the caller.
func (s *Service) Permissions(c *fiber.Ctx) error {
	ctx := c.UserContext()

	role, err := s.env.RBAC.GetRole(ctx, auth.OrgScope(c), c.Params(paramRoleID))
	if err != nil {
		return err
	}

	grants, err := s.env.RBAC.RolePermissions(ctx, role.ID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"role": role, "permissions": grants})
}

// AssignPermissions replaces the grants of a role. System roles are shared
// by every organization and only super admins may change them.
func (s *Service) AssignPermissions(c *fiber.Ctx) error {
	p, err := handler.Principal(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	role, err := s.env.RBAC.GetRole(ctx, auth.OrgScope(c), c.Params(paramRoleID))
	if err != nil {
		return err
	}

	if role.IsSystem && !p.IsSuperAdmin {
		log.Warn().Str("user_id", p.UserID).Str("role_id", role.ID).Msg("system role change rejected")
		return auth.ErrSystemRoleProtected
	}

	var in assignInput
	if err = s.env.Bind(c, &in); err != nil {
		return err
	}

	if err = s.env.RBAC.AssignPermissions(ctx, role.ID, in.SubmoduleIDs); err != nil {
		return err
	}

	grants, err := s.env.RBAC.RolePermissions(ctx, role.ID)
	if err != nil {
		return err
	}

	log.Info().Str("user_id", p.UserID).Str("role_id", role.ID).Int("grants", len(grants)).
		Msg("role permissions replaced")

	return c.JSON(fiber.Map{"role": role, "permissions": grants})
}
