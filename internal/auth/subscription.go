package auth

import (
	"github.com/rs/zerolog/log"

	"github.com/enterprise-suite/authgate/internal/db/models"
)

// blockedSubscriptions lists the statuses denied by RequireActive.
// Statuses not listed here are allowed, including unknown values.
var blockedSubscriptions = map[models.SubscriptionStatus]struct{}{ //nolint:gochecknoglobals
	models.SubscriptionTrial:     {},
	models.SubscriptionExpired:   {},
	models.SubscriptionCancelled: {},
}

// SubscriptionBlocked reports whether status denies feature access.
func SubscriptionBlocked(status models.SubscriptionStatus) bool {
	_, blocked := blockedSubscriptions[models.NormalizeSubscriptionStatus(string(status))]
	return blocked
}

// RequireActive returns an UPGRADE_REQUIRED error when the organization of
// p may not use paid features. Super admins are never blocked.
func RequireActive(p Principal) error {
	if p.IsSuperAdmin {
		return nil
	}

	status := models.NormalizeSubscriptionStatus(string(p.SubscriptionStatus))
	if SubscriptionBlocked(status) {
		log.Warn().
			Str("user_id", p.UserID).
			Str("subscription_status", string(status)).
			Msg("subscription blocks access")

		return UpgradeRequired(string(status))
	}

	return nil
}
