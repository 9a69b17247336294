// Package auth provides middleware for the public authentication endpoints.
//
// Login and refresh are reachable without a token, so they are throttled
// per client IP instead. Counters are kept in memory unless a redis storage
// from NewRedisStorage is passed, then every replica shares them.
//
// Usage:
//
//	router.Post("/login", authmiddleware.Limiter(cfg.Webserver.LoginRateLimit, nil), handler)
package auth
