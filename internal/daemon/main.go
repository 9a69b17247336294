// Package daemon wires the database, the authorization catalog and the
// web service into one process.
package daemon

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/config"
	"github.com/enterprise-suite/authgate/internal/db"
	"github.com/enterprise-suite/authgate/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the web service and blocks until it is shut down.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(":" + strconv.Itoa(d.cfg.Webserver.Port))
}

// New opens and migrates the database, bootstraps the permission catalog,
// the system roles and the platform super admin, then builds the web service.
func New(ctx context.Context, cfg *config.Config) (*Daemon, error) {
	if cfg == nil {
		return nil, config.ErrConfigNil
	}

	conn, err := Prepare(ctx, cfg)
	if err != nil {
		return nil, err
	}

	webService, err := web.New(cfg, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create web service: %w", err)
	}

	return &Daemon{
		cfg:        cfg,
		webService: webService,
	}, nil
}

// Prepare connects, migrates and seeds the database. It is safe to run on
// every start.
func Prepare(ctx context.Context, cfg *config.Config) (*gorm.DB, error) {
	conn, err := db.Open(cfg)
	if err != nil {
		return nil, err
	}

	if err = db.Migrate(conn); err != nil {
		return nil, err
	}

	if err = auth.NewService(conn).Bootstrap(ctx); err != nil {
		return nil, fmt.Errorf("failed to bootstrap permissions: %w", err)
	}

	if err = Seed(ctx, cfg, conn); err != nil {
		return nil, err
	}

	log.Info().Str("engine", cfg.DB.Engine).Msg("database ready")

	return conn, nil
}
