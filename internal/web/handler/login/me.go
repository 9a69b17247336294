package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/db/controller/organization"
	"github.com/enterprise-suite/authgate/internal/db/models"
	"github.com/enterprise-suite/authgate/internal/web/handler"
)

type meResponse struct {
	User               *models.User         `json:"user"`
	Organization       *models.Organization `json:"organization"`
	Role               *models.Role         `json:"role"`
	AccessLevel        string               `json:"access_level"`
	SubscriptionStatus string               `json:"subscription_status,omitempty"`
	Permissions        []string             `json:"permissions"`
}

// Me returns the caller with organization, role and effective permissions.
func (s *Service) Me(c *fiber.Ctx) error {
	p, err := handler.Principal(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()

	user, err := s.env.Users.GetUserByID(ctx, p.UserID)
	if err != nil {
		return err
	}

	out := meResponse{
		User:        user,
		AccessLevel: p.Access.String(),
	}

	if !p.IsSuperAdmin {
		out.SubscriptionStatus = string(p.SubscriptionStatus)
	}

	if user.OrgID != nil {
		out.Organization, err = organization.Get(s.env.DB.WithContext(ctx), *user.OrgID)
		if err != nil && !errors.Is(err, organization.ErrOrganizationNotFound) {
			return err
		}
	}

	if user.RoleID != nil {
		out.Role, err = s.env.RBAC.GetRole(ctx, nil, *user.RoleID)
		if err != nil && !errors.Is(err, auth.ErrRoleNotFound) {
			return err
		}
	}

	out.Permissions, err = s.env.RBAC.UserPermissions(ctx, user.ID)
	if err != nil {
		return err
	}

	return c.JSON(out)
}
