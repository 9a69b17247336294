package config

import (
	"errors"
)

var (
	// ErrConfigNil error if a component is built without a config.
	ErrConfigNil = errors.New("config is nil")

	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrDBConnectionMissing error if neither db.dsn nor db.host are set.
	ErrDBConnectionMissing = errors.New("toml config db.dsn or db.host must be set")

	// ErrDBNameMissing error if db.name is empty.
	ErrDBNameMissing = errors.New("toml config db.name can not be empty")

	// ErrDBEngineUnsupported error if db.engine is not mysql, postgres or sqlite.
	ErrDBEngineUnsupported = errors.New("toml config db.engine must be mysql, postgres or sqlite")

	// ErrAccessSecretMissing error if auth.accessSecret is empty.
	ErrAccessSecretMissing = errors.New("toml config auth.accessSecret can not be empty")

	// ErrRefreshSecretMissing error if auth.refreshSecret is empty.
	ErrRefreshSecretMissing = errors.New("toml config auth.refreshSecret can not be empty")

	// ErrSecretsMustDiffer error if access and refresh secrets are equal.
	ErrSecretsMustDiffer = errors.New("auth.accessSecret and auth.refreshSecret must differ")
)
