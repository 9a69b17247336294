package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const principalKey = "authgate.principal"

// PrincipalFromCtx returns the principal stored by RequireToken, nil if none.
func PrincipalFromCtx(c *fiber.Ctx) *Principal {
	p, ok := c.Locals(principalKey).(*Principal)
	if !ok {
		return nil
	}

	return p
}

// UserIDFromCtx returns the authenticated user id or an empty string.
// It feeds the access log.
func UserIDFromCtx(c *fiber.Ctx) string {
	if p := PrincipalFromCtx(c); p != nil {
		return p.UserID
	}

	return ""
}

// OrgScope returns the organization filter for the request: nil for super
// admins, the caller's organization otherwise. Without a principal it
// returns a scope that matches no organization.
func OrgScope(c *fiber.Ctx) *string {
	p := PrincipalFromCtx(c)
	if p == nil {
		none := ""
		return &none
	}

	if p.IsSuperAdmin {
		return nil
	}

	if p.OrgID == nil {
		none := ""
		return &none
	}

	return p.OrgID
}

// WriteError responds with the JSON body of an *Error. Other errors are
// returned unchanged for the application error handler.
func WriteError(c *fiber.Ctx, err error) error {
	var authErr *Error
	if !errors.As(err, &authErr) {
		return err
	}

	return c.Status(authErr.Status).JSON(authErr.Payload())
}

func deny(c *fiber.Ctx, stage string, err error) error {
	var authErr *Error
	if errors.As(err, &authErr) {
		observe(stage, outcomeDenied)
		return WriteError(c, authErr)
	}

	observe(stage, outcomeError)

	return err
}

func allow(c *fiber.Ctx, stage string) error {
	observe(stage, outcomeAllowed)
	return c.Next()
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

// RequireToken authenticates the bearer access token and stores the principal.
func RequireToken(tokens *TokenService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := BearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return deny(c, stageToken, ErrMissingToken)
		}

		p, err := tokens.ParseAccess(token)
		if err != nil {
			log.Debug().Err(err).Str("path", c.Path()).Msg("access token rejected")
			return deny(c, stageToken, err)
		}

		c.Locals(principalKey, p)

		return allow(c, stageToken)
	}
}

// ResolveTenant replaces the token snapshot of the organization with live state.
func ResolveTenant(resolver *TenantResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromCtx(c)
		if p == nil {
			return deny(c, stageTenant, ErrMissingToken)
		}

		resolved, err := resolver.Resolve(c.UserContext(), *p)
		if err != nil {
			return deny(c, stageTenant, err)
		}

		c.Locals(principalKey, &resolved)

		return allow(c, stageTenant)
	}
}

// RequireActiveSubscription blocks organizations whose subscription does
// not allow feature access with 402.
func RequireActiveSubscription() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromCtx(c)
		if p == nil {
			return deny(c, stageSubscription, ErrMissingToken)
		}

		if err := RequireActive(*p); err != nil {
			return deny(c, stageSubscription, err)
		}

		return allow(c, stageSubscription)
	}
}

// RequirePermission requires the caller to hold action on resource module.
func RequirePermission(rbac *Service, module, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromCtx(c)
		if p == nil {
			return deny(c, stagePermission, ErrMissingToken)
		}

		if !rbac.CheckPermission(c.UserContext(), p.UserID, module, action) {
			log.Warn().Str("user_id", p.UserID).Str("permission", module+"."+action).
				Msg("User lacks required permission")

			return deny(c, stagePermission, ErrPermissionDenied)
		}

		return allow(c, stagePermission)
	}
}

// RequireAnyPermission requires at least one of the "<resource>.<action>" permissions.
func RequireAnyPermission(rbac *Service, permissions ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromCtx(c)
		if p == nil {
			return deny(c, stagePermission, ErrMissingToken)
		}

		has, err := rbac.HasAnyPermission(c.UserContext(), p.UserID, permissions)
		if err != nil {
			log.Error().Err(err).Str("user_id", p.UserID).Strs("permissions", permissions).
				Msg("Failed to check permissions")
		}

		if !has {
			return deny(c, stagePermission, ErrPermissionDenied)
		}

		return allow(c, stagePermission)
	}
}

// RequireOrgAdmin requires org admin or super admin access.
func RequireOrgAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromCtx(c)
		if p == nil {
			return deny(c, stageOrgAdmin, ErrMissingToken)
		}

		if !p.Access.CanAdministerOrg() {
			log.Warn().Str("user_id", p.UserID).Str("access", p.Access.String()).Msg("org admin required")
			return deny(c, stageOrgAdmin, ErrOrgAdminRequired)
		}

		return allow(c, stageOrgAdmin)
	}
}

// RequireSuperAdmin requires platform super admin access.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := PrincipalFromCtx(c)
		if p == nil {
			return deny(c, stageSuperAdmin, ErrMissingToken)
		}

		if !p.Access.IsSuperAdmin() {
			log.Warn().Str("user_id", p.UserID).Str("access", p.Access.String()).Msg("super admin required")
			return deny(c, stageSuperAdmin, ErrSuperAdminRequired)
		}

		return allow(c, stageSuperAdmin)
	}
}

// Guards composes the guard chains used by route registration, e.g.
//
//	app.Post("/invoices/:id/approve", append(g.Write(auth.ResourceInvoices, auth.ActionApprove), h)...)
type Guards struct {
	tokens  *TokenService
	tenants *TenantResolver
	rbac    *Service
}

// NewGuards creates a guard chain builder.
func NewGuards(tokens *TokenService, tenants *TenantResolver, rbac *Service) *Guards {
	return &Guards{tokens: tokens, tenants: tenants, rbac: rbac}
}

// Authenticated only verifies the access token.
func (g *Guards) Authenticated() []fiber.Handler {
	return []fiber.Handler{RequireToken(g.tokens)}
}

// Read authenticates and resolves the tenant. Reads stay available to
// organizations on any subscription.
func (g *Guards) Read() []fiber.Handler {
	return []fiber.Handler{RequireToken(g.tokens), ResolveTenant(g.tenants)}
}

// ReadWith is Read plus a permission check.
func (g *Guards) ReadWith(module, action string) []fiber.Handler {
	return append(g.Read(), RequirePermission(g.rbac, module, action))
}

// Write authenticates, resolves the tenant, requires an active
// subscription and checks the permission, in that order.
func (g *Guards) Write(module, action string) []fiber.Handler {
	return append(g.Read(), RequireActiveSubscription(), RequirePermission(g.rbac, module, action))
}

// OrgAdmin guards organization administration reads.
func (g *Guards) OrgAdmin() []fiber.Handler {
	return append(g.Read(), RequireOrgAdmin())
}

// OrgAdminWrite guards organization administration changes.
func (g *Guards) OrgAdminWrite() []fiber.Handler {
	return append(g.Read(), RequireActiveSubscription(), RequireOrgAdmin())
}

// SuperAdmin guards platform administration.
func (g *Guards) SuperAdmin() []fiber.Handler {
	return []fiber.Handler{RequireToken(g.tokens), RequireSuperAdmin()}
}
