package config

import (
	"time"

	"github.com/enterprise-suite/authgate/internal/logger"
)

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Auth      Auth
	Bootstrap Bootstrap
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Auth holds the token signing settings.
type Auth struct {
	AccessSecret  string        // HMAC secret for access tokens
	RefreshSecret string        // HMAC secret for refresh tokens, must differ from AccessSecret
	Issuer        string        // iss claim
	AccessTTL     time.Duration // lifetime of access tokens
	RefreshTTL    time.Duration // lifetime of refresh tokens
}

// Bootstrap holds the platform super admin created by the seed command.
type Bootstrap struct {
	SuperAdminEmail    string
	SuperAdminPassword string // generated and logged once when empty
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
	LoginRateLimit int    // max login attempts per minute and IP, 0 disables the limiter
	LimiterRedis   string // redis url sharing limiter counters between replicas, empty keeps them in memory
}
