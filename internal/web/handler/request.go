package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/db/controller/organization"
)

// Bind parses the JSON body into in and validates it. Failures are
// returned as 400 errors naming the offending fields.
func (e *Env) Bind(c *fiber.Ctx, in interface{}) error {
	if err := c.BodyParser(in); err != nil {
		return auth.InvalidInput("invalid request body")
	}

	if err := e.Validator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return auth.InvalidInput("invalid request body")
		}

		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}

		return auth.InvalidInput("invalid fields: " + strings.Join(fields, ", "))
	}

	return nil
}

// Principal returns the authenticated principal. Routes reaching a
// handler passed RequireToken, a missing principal is a wiring bug.
func Principal(c *fiber.Ctx) (*auth.Principal, error) {
	p := auth.PrincipalFromCtx(c)
	if p == nil {
		return nil, auth.ErrMissingToken
	}

	return p, nil
}

// RequireOrganization checks that a super admin's target organization
// exists. A nil orgID is left to the caller.
func (e *Env) RequireOrganization(ctx context.Context, orgID *string) error {
	if orgID == nil {
		return nil
	}

	_, err := organization.Get(e.DB.WithContext(ctx), *orgID)
	if errors.Is(err, organization.ErrOrganizationNotFound) || errors.Is(err, organization.ErrIDEmpty) {
		return auth.ErrOrganizationNotFound
	}

	return err
}
