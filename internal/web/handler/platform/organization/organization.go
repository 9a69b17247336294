// Package organization provides the super admin handlers for tenants:
// onboarding, billing state and soft deactivation.
package organization

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/auth"
	orgctl "github.com/enterprise-suite/authgate/internal/db/controller/organization"
	"github.com/enterprise-suite/authgate/internal/db/models"
	"github.com/enterprise-suite/authgate/internal/web/handler"
)

const (
	// Path is the base path for organization management.
	Path = handler.PlatformPath + "/organizations"

	// RouteOrganization reads one organization.
	RouteOrganization = Path + "/:org_id"
	// RouteSubscription sets the live subscription state.
	RouteSubscription = RouteOrganization + "/subscription"
	// RouteDeactivate soft-deactivates an organization.
	RouteDeactivate = RouteOrganization + "/deactivate"
	// RouteActivate re-activates an organization.
	RouteActivate = RouteOrganization + "/activate"

	paramOrgID = "org_id"
)

type createInput struct {
	Name               string `json:"name"                validate:"required,max=200"`
	Plan               string `json:"plan"                validate:"max=64"`
	SubscriptionStatus string `json:"subscription_status" validate:"max=32"`
	// AdminEmail and AdminPassword create the first org admin when set.
	AdminEmail    string `json:"admin_email"    validate:"omitempty,email,max=255"`
	AdminPassword string `json:"admin_password" validate:"omitempty,min=8,max=1024"`
}

type subscriptionInput struct {
	SubscriptionStatus string `json:"subscription_status" validate:"required,max=32"`
	Plan               string `json:"plan"                validate:"max=64"`
}

type createResponse struct {
	Organization *models.Organization `json:"organization"`
	Admin        *models.User         `json:"admin,omitempty"`
}

// Service provides the organization handlers.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes, all of them require a super admin.
func (s *Service) Init(app fiber.Router, env *handler.Env) error {
	if app == nil || env == nil {
		return handler.ErrNilEnv
	}

	s.env = env
	guard := env.Guards.SuperAdmin()

	app.Get(Path, append(guard, s.List)...)
	app.Post(Path, append(guard, s.Create)...)
	app.Get(RouteOrganization, append(guard, s.Get)...)
	app.Post(RouteSubscription, append(guard, s.SetSubscription)...)
	app.Post(RouteDeactivate, append(guard, s.Deactivate)...)
	app.Post(RouteActivate, append(guard, s.Activate)...)

	return nil
}

func mapError(err error) error {
	if errors.Is(err, orgctl.ErrOrganizationNotFound) || errors.Is(err, orgctl.ErrIDEmpty) {
		return auth.ErrOrganizationNotFound
	}

	if errors.Is(err, orgctl.ErrOrganizationNameEmpty) {
		return auth.InvalidInput(err.Error())
	}

	return err
}

// List returns every organization.
func (s *Service) List(c *fiber.Ctx) error {
	orgs, err := orgctl.List(s.env.DB.WithContext(c.UserContext()))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"organizations": orgs})
}

// Create onboards an organization and, optionally, its first org admin.
// Both are created in one transaction.
func (s *Service) Create(c *fiber.Ctx) error {
	var in createInput
	if err := s.env.Bind(c, &in); err != nil {
		return err
	}

	if (in.AdminEmail == "") != (in.AdminPassword == "") {
		return auth.InvalidInput("admin_email and admin_password must be given together")
	}

	ctx := c.UserContext()

	var out createResponse

	err := s.env.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := orgctl.Create(tx, in.Name, in.Plan, models.SubscriptionStatus(in.SubscriptionStatus))
		if err != nil {
			return mapError(err)
		}

		out.Organization = org

		if in.AdminEmail == "" {
			return nil
		}

		out.Admin, err = auth.NewLocalProvider(tx).CreateUser(ctx, auth.NewUser{
			Email:    in.AdminEmail,
			Password: in.AdminPassword,
			OrgID:    &org.ID,
			RoleID:   ptr(auth.OrgAdminRoleID),
		})

		return err
	})
	if err != nil {
		return err
	}

	log.Info().Str("org_id", out.Organization.ID).Bool("with_admin", out.Admin != nil).Msg("organization created")

	return c.Status(http.StatusCreated).JSON(out)
}

// Get returns one organization.
func (s *Service) Get(c *fiber.Ctx) error {
	org, err := orgctl.Get(s.env.DB.WithContext(c.UserContext()), c.Params(paramOrgID))
	if err != nil {
		return mapError(err)
	}

	return c.JSON(org)
}

// SetSubscription stores the live billing state. Guards of the next
// request of any member see it.
func (s *Service) SetSubscription(c *fiber.Ctx) error {
	var in subscriptionInput
	if err := s.env.Bind(c, &in); err != nil {
		return err
	}

	status := models.NormalizeSubscriptionStatus(in.SubscriptionStatus)

	org, err := orgctl.SetSubscription(s.env.DB.WithContext(c.UserContext()), c.Params(paramOrgID), status, in.Plan)
	if err != nil {
		return mapError(err)
	}

	log.Info().Str("org_id", org.ID).Str("subscription_status", string(status)).Str("plan", org.Plan).
		Msg("subscription changed")

	return c.JSON(org)
}

// Deactivate soft-deactivates an organization, its members are rejected
// by the tenant resolver from the next request on.
func (s *Service) Deactivate(c *fiber.Ctx) error {
	return s.setActive(c, false)
}

// Activate re-activates an organization.
func (s *Service) Activate(c *fiber.Ctx) error {
	return s.setActive(c, true)
}

func (s *Service) setActive(c *fiber.Ctx, active bool) error {
	db := s.env.DB.WithContext(c.UserContext())
	id := c.Params(paramOrgID)

	toggle := orgctl.Deactivate
	if active {
		toggle = orgctl.Activate
	}

	if err := toggle(db, id); err != nil {
		return mapError(err)
	}

	org, err := orgctl.Get(db, id)
	if err != nil {
		return mapError(err)
	}

	log.Info().Str("org_id", org.ID).Bool("active", active).Msg("organization activation changed")

	return c.JSON(org)
}

func ptr(s string) *string {
	return &s
}
