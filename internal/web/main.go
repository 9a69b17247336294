package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/enterprise-suite/authgate/internal/auth"
	"github.com/enterprise-suite/authgate/internal/config"
	accesslog "github.com/enterprise-suite/authgate/internal/logger/adapter/fiber"
	"github.com/enterprise-suite/authgate/internal/web/handler"
	"github.com/enterprise-suite/authgate/internal/web/handler/admin/role"
	"github.com/enterprise-suite/authgate/internal/web/handler/admin/user"
	"github.com/enterprise-suite/authgate/internal/web/handler/login"
	"github.com/enterprise-suite/authgate/internal/web/handler/logout"
	"github.com/enterprise-suite/authgate/internal/web/handler/platform/organization"
	authmiddleware "github.com/enterprise-suite/authgate/internal/web/middleware/auth"
)

const (
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
	// MetricsPath exposes the prometheus metrics.
	MetricsPath = "/metrics"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	Env          *handler.Env
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown

	if s.Env.LimiterStorage != nil {
		if err := s.Env.LimiterStorage.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close limiter storage")
		}
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive returns 200 while serving and 503 once shutdown started.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.Status(http.StatusServiceUnavailable).SendString("shutting down")
	}

	return c.SendString("OK")
}

// New creates the web service and registers every handler.
// The catalog and system roles must be bootstrapped before serving.
func New(cfg *config.Config, db *gorm.DB) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
			ErrorHandler:   handler.ErrorHandler,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	if cfg.Webserver.CleanPath {
		app.Use(cleanPath)
	}

	app.Use(accesslog.New(accesslog.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
		UserFunc:      auth.UserIDFromCtx,
	}))

	service := &Service{
		App:          app,
		Env:          handler.NewEnv(cfg, db),
		cfg:          cfg,
		fastShutDown: cfg.DevMode,
	}
	service.alive.Store(true)

	if cfg.Webserver.LimiterRedis != "" {
		storage, err := authmiddleware.NewRedisStorage(cfg.Webserver.LimiterRedis)
		if err != nil {
			return nil, err
		}

		service.Env.LimiterStorage = storage

		log.Info().Msg("login limiter counters shared through redis")
	}

	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	handlers := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&role.Handler,
		&user.Handler,
		&organization.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, service.Env); err != nil {
			return nil, err
		}
	}

	return service, nil
}

// cleanPath collapses duplicate slashes so //enterprise/auth/login routes.
func cleanPath(c *fiber.Ctx) error {
	p := c.Path()
	if strings.Contains(p, "//") {
		c.Path(path.Clean(p))
	}

	return c.Next()
}
