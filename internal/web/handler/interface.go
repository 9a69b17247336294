package handler

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/config"
)

// Env bundles the shared dependencies of the handlers. One Env is built
// per process and passed to every handler service.
type Env struct {
	Config    *config.Config
	DB        *gorm.DB
	RBAC      *auth.Service
	Users     *auth.LocalProvider
	Tokens    *auth.TokenService
	Tenants   *auth.TenantResolver
	Guards    *auth.Guards
	Validator *validator.Validate

	// LimiterStorage holds the login limiter counters, nil keeps them in memory.
	LimiterStorage fiber.Storage
}

// NewEnv wires the auth services on top of db.
func NewEnv(cfg *config.Config, db *gorm.DB) *Env {
	rbac := auth.NewService(db)
	tokens := auth.NewTokenService(db, cfg.Auth)
	tenants := auth.NewTenantResolver(db)

	return &Env{
		Config:    cfg,
		DB:        db,
		RBAC:      rbac,
		Users:     auth.NewLocalProvider(db),
		Tokens:    tokens,
		Tenants:   tenants,
		Guards:    auth.NewGuards(tokens, tenants, rbac),
		Validator: newValidator(),
	}
}

// newValidator reports fields by their json name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app fiber.Router, env *Env) error
}
