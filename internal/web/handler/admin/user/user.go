// Package user provides the organization admin handlers for members:
// listing, invitation, role assignment and deactivation.
package user

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/db/models"
	"github.com/enterprise-suite/authgate/internal/web/handler"
)

const (
	// Path is the base path for user management.
	Path = handler.OrgAdminPath + "/users"

	// RouteRole assigns a role to a user.
	RouteRole = Path + "/:user_id/role"
	// RouteDeactivate deactivates a user.
	RouteDeactivate = Path + "/:user_id/deactivate"

	paramUserID = "user_id"
)

type inviteInput struct {
	Email    string  `json:"email"     validate:"required,email,max=255"`
	Password string  `json:"password"  validate:"required,min=8,max=1024"`
	FullName string  `json:"full_name" validate:"max=200"`
	RoleID   *string `json:"role_id"   validate:"omitempty,max=64"`
	// OrgID is the target organization for super admins, ignored otherwise.
	OrgID *string `json:"org_id" validate:"omitempty,max=64"`
}

type roleInput struct {
	RoleID string `json:"role_id" validate:"required,max=64"`
}

// Service provides the member handlers.
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

	app.Get(Path, append(g.OrgAdmin(), s.List)...)
	app.Post(Path, append(g.OrgAdminWrite(), s.Invite)...)
	app.Post(RouteRole, append(g.OrgAdminWrite(), s.AssignRole)...)
	app.Post(RouteDeactivate, append(g.OrgAdminWrite(), s.Deactivate)...)

	return nil
}

// List returns the members of the caller's organization.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := s.env.Users.ListUsers(c.UserContext(), auth.OrgScope(c))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"users": users})
}

// Invite creates an active member, optionally with a role.
func (s *Service) Invite(c *fiber.Ctx) error {
	p, err := handler.Principal(c)
	if err != nil {
		return err
	}

	var in inviteInput
	if err = s.env.Bind(c, &in); err != nil {
		return err
	}

	ctx := c.UserContext()

	orgID := auth.OrgScope(c)
	if p.IsSuperAdmin {
		orgID = in.OrgID
	}

	if orgID == nil {
		return auth.InvalidInput("org_id is required")
	}

	if p.IsSuperAdmin {
		if err = s.env.RequireOrganization(ctx, orgID); err != nil {
			return err
		}
	}

	if in.RoleID != nil {
		if _, err = s.env.RBAC.GetRole(ctx, orgID, *in.RoleID); err != nil {
			return err
		}
	}

	user, err := s.env.Users.CreateUser(ctx, auth.NewUser{
		Email:    in.Email,
		Password: in.Password,
		FullName: in.FullName,
		OrgID:    orgID,
		RoleID:   in.RoleID,
	})
	if err != nil {
		return err
	}

	log.Info().Str("user_id", p.UserID).Str("invited_user_id", user.ID).Str("org_id", *orgID).Msg("user invited")

	return c.Status(http.StatusCreated).JSON(user)
}

// AssignRole sets the role of a member.
func (s *Service) AssignRole(c *fiber.Ctx) error {
	var in roleInput
	if err := s.env.Bind(c, &in); err != nil {
		return err
	}

	ctx := c.UserContext()
	userID := c.Params(paramUserID)

	if err := s.env.RBAC.AssignRoleToUser(ctx, auth.OrgScope(c), userID, in.RoleID); err != nil {
		return err
	}

	user, err := s.env.Users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// Deactivate deactivates a member and revokes their refresh tokens.
// Users are never deleted.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	p, err := handler.Principal(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	user, err := s.member(c, c.Params(paramUserID))
	if err != nil {
		return err
	}

	if user.ID == p.UserID {
		return auth.InvalidInput("you can not deactivate yourself")
	}

	if err = s.env.Users.DeactivateUser(ctx, user.ID); err != nil {
		return err
	}

	if _, err = s.env.Tokens.RevokeAll(ctx, user.ID); err != nil {
		return err
	}

	log.Info().Str("user_id", p.UserID).Str("deactivated_user_id", user.ID).Msg("user deactivated")

	return c.JSON(fiber.Map{"message": "User deactivated", "user_id": user.ID})
}

// member loads userID if it belongs to the caller's organization.
func (s *Service) member(c *fiber.Ctx, userID string) (*models.User, error) {
	user, err := s.env.Users.GetUserByID(c.UserContext(), userID)
	if err != nil {
		return nil, err
	}

	scope := auth.OrgScope(c)
	if scope != nil && (user.OrgID == nil || *user.OrgID != *scope) {
		return nil, auth.ErrUserNotFound
	}

	return user, nil
}
