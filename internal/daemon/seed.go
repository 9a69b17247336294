package daemon

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/config"
	"github.com/enterprise-suite/authgate/internal/uniuri"
)

// SeedResult reports what Seed did.
type SeedResult struct {
	Created  bool
	Email    string
	Password string // set only when it was generated
}

// Seed creates the platform super admin from the bootstrap settings if no
// user with that email exists. A generated password is logged once.
func Seed(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	res, err := SeedSuperAdmin(ctx, cfg, db)
	if err != nil {
		return err
	}

	if !res.Created {
		return nil
	}

	ev := log.Warn().Str("email", res.Email)
	if res.Password != "" {
		ev = ev.Str("password", res.Password)
	}

	ev.Msg("bootstrap super admin created, change the password after the first login")

	return nil
}

// SeedSuperAdmin is Seed without logging.
func SeedSuperAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) (SeedResult, error) {
	email := cfg.Bootstrap.SuperAdminEmail
	if email == "" {
		log.Debug().Msg("no bootstrap super admin configured")
		return SeedResult{}, nil
	}

	users := auth.NewLocalProvider(db)

	if _, err := users.GetUserByEmail(ctx, email); err == nil {
		return SeedResult{Email: email}, nil
	} else if !errors.Is(err, auth.ErrUserNotFound) {
		return SeedResult{}, fmt.Errorf("failed to look up bootstrap super admin: %w", err)
	}

	res := SeedResult{Created: true, Email: email}

	password := cfg.Bootstrap.SuperAdminPassword
	if password == "" {
		password = uniuri.Password()
		res.Password = password
	}

	if _, err := users.CreateUser(ctx, auth.NewUser{
		Email:        email,
		Password:     password,
		FullName:     "Platform Administrator",
		IsSuperAdmin: true,
	}); err != nil {
		return SeedResult{}, fmt.Errorf("failed to create bootstrap super admin: %w", err)
	}

	return res, nil
}
