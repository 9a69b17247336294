// Package auth implements authentication and multi-tenant authorization.
//
// A protected request passes an ordered guard chain:
//   - RequireToken verifies the bearer access token and stores a Principal
//   - ResolveTenant replaces the organization snapshot of the token with the
//     live organization (subscription status, plan, name)
//   - RequireActiveSubscription blocks trial, expired and cancelled
//     organizations with 402 UPGRADE_REQUIRED
//   - RequirePermission asks the RBAC engine whether the caller may perform
//     an action on a resource
//
// The first failing stage responds and later stages do not run. Guards
// composes the usual chains.
//
// # Tokens
//
// TokenService signs HS256 access and refresh tokens with separate secrets.
// Refresh tokens are recorded by jti, rotation revokes the presented token
// and links it to its successor in one transaction, so a refresh token can
// be exchanged only once.
//
// # Authorization model
//
// Modules group resources, each (resource, action) pair is a Submodule
// named "<resource>.<action>". Roles are granted submodules. System roles
// are shared by every organization, custom roles belong to one. Super
// admins and holders of the org admin role pass every permission check.
//
// Example usage:
//
//	svc := auth.NewService(db)
//	if err := svc.Bootstrap(ctx); err != nil {
//	    return err
//	}
//
//	g := auth.NewGuards(auth.NewTokenService(db, cfg.Auth), auth.NewTenantResolver(db), svc)
//	app.Post("/invoices/:id/approve", append(g.Write(auth.ResourceInvoices, auth.ActionApprove), handler)...)
package auth
