package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/config"
	"github.com/enterprise-suite/authgate/internal/db/models"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	// TokenTypeBearer is the token_type returned to clients.
	TokenTypeBearer = "bearer"
)

// AccessClaims are carried by access tokens. They are a snapshot taken at
// issue time, the tenant resolver replaces the organization fields with
// live values on every request.
type AccessClaims struct {
	OrgID              *string `json:"org_id"`
	RoleID             *string `json:"role_id"`
	IsSuperAdmin       bool    `json:"is_super_admin"`
	SubscriptionStatus string  `json:"subscription_status"`
	OrgPlan            string  `json:"org_plan"`
	OrgName            string  `json:"org_name"`
	Type               string  `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens. The jti keys the
// refresh_tokens row.
type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenPair is returned on login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expires_in"`
}

// TokenService issues, parses, rotates and revokes HS256 signed tokens.
// Access and refresh tokens are signed with different secrets.
type TokenService struct {
	db            *gorm.DB
	accessSecret  []byte
	refreshSecret []byte
	issuer        string
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenService creates a token service from validated settings.
func NewTokenService(db *gorm.DB, cfg config.Auth) *TokenService {
	return &TokenService{
		db:            db,
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		issuer:        cfg.Issuer,
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		now:           time.Now,
	}
}

// IssueTokens signs a new token pair for user and records the refresh token.
// org is nil for super admins.
func (s *TokenService) IssueTokens(ctx context.Context, user *models.User, org *models.Organization) (*TokenPair, error) {
	return s.issue(s.db.WithContext(ctx), user, org, uuid.NewString())
}

func (s *TokenService) issue(db *gorm.DB, user *models.User, org *models.Organization, refreshID string) (*TokenPair, error) {
	now := s.now().UTC()
	p := PrincipalFromUser(user, org)

	access := AccessClaims{
		OrgID:              p.OrgID,
		RoleID:             p.RoleID,
		IsSuperAdmin:       p.IsSuperAdmin,
		SubscriptionStatus: string(p.SubscriptionStatus),
		OrgPlan:            p.OrgPlan,
		OrgName:            p.OrgName,
		Type:               tokenTypeAccess,
		RegisteredClaims:   s.registered(user.ID, uuid.NewString(), now, s.accessTTL),
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(s.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refresh := RefreshClaims{
		Type:             tokenTypeRefresh,
		RegisteredClaims: s.registered(user.ID, refreshID, now, s.refreshTTL),
	}

	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(s.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	row := models.RefreshToken{
		ID:        refreshID,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.refreshTTL),
	}

	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *TokenService) registered(subject, id string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    s.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        id,
	}
}

// ParseAccess verifies an access token and returns the claimed principal.
// The organization fields are not yet live, see TenantResolver.
func (s *TokenService) ParseAccess(token string) (*Principal, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.accessSecret); err != nil {
		return nil, err
	}

	if claims.Type != tokenTypeAccess || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	return &Principal{
		UserID:             claims.Subject,
		OrgID:              claims.OrgID,
		RoleID:             claims.RoleID,
		IsSuperAdmin:       claims.IsSuperAdmin,
		SubscriptionStatus: models.NormalizeSubscriptionStatus(claims.SubscriptionStatus),
		OrgPlan:            claims.OrgPlan,
		OrgName:            claims.OrgName,
		Access:             ResolveAccessLevel(claims.IsSuperAdmin, claims.RoleID),
	}, nil
}

func (s *TokenService) parseRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := s.parse(token, claims, s.refreshSecret); err != nil {
		return nil, err
	}

	if claims.Type != tokenTypeRefresh || claims.Subject == "" || claims.ID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenInvalid
	}

	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenInvalid
		}

		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err == nil {
		return nil
	}

	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrTokenExpired
	}

	return ErrTokenInvalid
}

// Rotate exchanges a refresh token for a new pair. The presented token is
// revoked and linked to its successor in the same transaction, a token
// that was already used returns ErrTokenRevoked.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row models.RefreshToken

		errRow := tx.Where(whereID, claims.ID).First(&row).Error
		if errors.Is(errRow, gorm.ErrRecordNotFound) {
			return ErrTokenRevoked
		}

		if errRow != nil {
			return fmt.Errorf("failed to query refresh token: %w", errRow)
		}

		if row.Revoked {
			log.Warn().Str("user_id", row.UserID).Str("jti", row.ID).Msg("revoked refresh token presented")
			return ErrTokenRevoked
		}

		if row.UserID != claims.Subject {
			return ErrTokenInvalid
		}

		user, errUser := loadUser(tx, row.UserID)
		if errors.Is(errUser, ErrUserNotFound) {
			return ErrTokenInvalid
		}

		if errUser != nil {
			return errUser
		}

		if !user.Active {
			return ErrTokenInvalid
		}

		var org *models.Organization

		if user.OrgID != nil && !user.IsSuperAdmin {
			org, errUser = loadOrganization(tx, *user.OrgID)
			if errUser != nil {
				return errUser
			}

			if !org.Active {
				return ErrOrganizationInactive
			}
		}

		nextID := uuid.NewString()
		now := s.now().UTC()

		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked = ?", row.ID, false).
			Updates(map[string]interface{}{
				"revoked":     true,
				"revoked_at":  now,
				"replaced_by": nextID,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to revoke refresh token: %w", res.Error)
		}

		if res.RowsAffected == 0 {
			return ErrTokenRevoked
		}

		pair, err = s.issue(tx, user, org, nextID)

		return err
	})
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// RevokeAll revokes every outstanding refresh token of userID and returns
// how many were revoked.
func (s *TokenService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Updates(map[string]interface{}{
			"revoked":    true,
			"revoked_at": s.now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to revoke refresh tokens: %w", res.Error)
	}

	return res.RowsAffected, nil
}
