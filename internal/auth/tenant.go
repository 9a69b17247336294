package auth

import (
	"context"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// TenantResolver loads the live organization state of a principal.
type TenantResolver struct {
	db *gorm.DB
}

// NewTenantResolver creates a tenant resolver.
func NewTenantResolver(db *gorm.DB) *TenantResolver {
	return &TenantResolver{db: db}
}

// Resolve returns p with subscription status, plan and name taken from the
// stored organization, so billing changes apply without waiting for token
// expiry. Super admins pass through unchanged.
func (r *TenantResolver) Resolve(ctx context.Context, p Principal) (Principal, error) {
	if p.IsSuperAdmin {
		p.TenantResolved = true
		return p, nil
	}

	if p.OrgID == nil || *p.OrgID == "" {
		log.Warn().Str("user_id", p.UserID).Msg("user without organization")
		return p, ErrNoOrganization
	}

	org, err := loadOrganization(r.db.WithContext(ctx), *p.OrgID)
	if err != nil {
		return p, err
	}

	if !org.Active {
		log.Warn().Str("user_id", p.UserID).Str("org_id", org.ID).Msg("organization inactive")
		return p, ErrOrganizationInactive
	}

	p.SubscriptionStatus = org.Subscription()
	p.OrgPlan = org.Plan
	p.OrgName = org.Name
	p.TenantResolved = true

	return p, nil
}
