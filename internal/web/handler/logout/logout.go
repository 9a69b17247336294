// Package logout revokes the refresh tokens of the caller.
package logout

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/enterprise-suite/authgate/internal/web/handler"
)

// Path is the path of the logout endpoint.
const Path = handler.AuthPath + "/logout"

// Service is the logout handler service.
type Service struct {
	handler.Service
	env *handler.Env
}

// Handler is the logout handler.
var Handler = Service{}

// Init registers the route. Logout only needs a valid access token, it
// stays available when the organization was deactivated.
func (s *Service) Init(app fiber.Router, env *handler.Env) error {
	if app == nil || env == nil {
		return handler.ErrNilEnv
	}

	s.env = env

	app.Post(Path, append(env.Guards.Authenticated(), s.Logout)...)

	return nil
}

// Logout revokes every refresh token of the caller. Access tokens expire
// on their own.
func (s *Service) Logout(c *fiber.Ctx) error {
	p, err := handler.Principal(c)
	if err != nil {
		return err
	}

	revoked, err := s.env.Tokens.RevokeAll(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}

	log.Info().Str("user_id", p.UserID).Int64("revoked", revoked).Msg("user logged out")

	return c.JSON(fiber.Map{
		"message": "Logged out successfully",
		"revoked": revoked,
	})
}
