// Package login provides the token endpoints: login, refresh and the
// profile of the authenticated user.
package login

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/db/controller/organization"
	"github.com/enterprise-suite/authgate/internal/db/models"
	"github.com/enterprise-suite/authgate/internal/web/handler"
	authmiddleware "github.com/enterprise-suite/authgate/internal/web/middleware/auth"
)

const (
	// Path is the path of the login endpoint.
	Path = handler.AuthPath + "/login"
	// RefreshPath is the path of the token rotation endpoint.
	RefreshPath = handler.AuthPath + "/refresh"
	// MePath is the path of the profile endpoint.
	MePath = handler.AuthPath + "/me"
)

// Service is the login handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the login handler.
var Handler = Service{}

// Init registers the routes.
func (s *Service) Init(app fiber.Router, env *handler.Env) error {
	if app == nil || env == nil {
		return handler.ErrNilEnv
	}

	s.env = env
	limit := authmiddleware.Limiter(env.Config.Webserver.LoginRateLimit, env.LimiterStorage)

	app.Post(Path, limit, s.Login)
	app.Post(RefreshPath, limit, s.Refresh)
	app.Get(MePath, append(env.Guards.Read(), s.Me)...)

	return nil
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=1024"`
}

type refreshInput struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type loginResponse struct {
	*auth.TokenPair
	User         *models.User         `json:"user"`
	Organization *models.Organization `json:"organization"`
}

// Login exchanges email and password for a token pair.
func (s *Service) Login(c *fiber.Ctx) error {
	var in loginInput
	if err := s.env.Bind(c, &in); err != nil {
		return err
	}

	ctx := c.UserContext()

	user, err := s.env.Users.Authenticate(ctx, in.Email, in.Password)
	if err != nil {
		return err
	}

	var org *models.Organization

	if !user.IsSuperAdmin {
		if user.OrgID == nil {
			return auth.ErrNoOrganization
		}

		org, err = organization.Get(s.env.DB.WithContext(ctx), *user.OrgID)
		if errors.Is(err, organization.ErrOrganizationNotFound) {
			return auth.ErrOrganizationInactive
		}

		if err != nil {
			return err
		}

		if !org.Active {
			log.Warn().Str("user_id", user.ID).Str("org_id", org.ID).Msg("login to inactive organization")
			return auth.ErrOrganizationInactive
		}
	}

	pair, err := s.env.Tokens.IssueTokens(ctx, user, org)
	if err != nil {
		return err
	}

	log.Info().Str("user_id", user.ID).Bool("is_super_admin", user.IsSuperAdmin).Msg("user logged in")

	return c.JSON(loginResponse{TokenPair: pair, User: user, Organization: org})
}

// Refresh rotates a refresh token.
func (s *Service) Refresh(c *fiber.Ctx) error {
	var in refreshInput
	if err := s.env.Bind(c, &in); err != nil {
		return err
	}

	pair, err := s.env.Tokens.Rotate(c.UserContext(), in.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(pair)
}
