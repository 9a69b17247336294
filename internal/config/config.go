// Package config handles input from etc/*.toml files and AUTHGATE_* environment variables.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix of environment variables overriding config keys,
	// e.g. AUTHGATE_AUTH_ACCESSSECRET overrides auth.accessSecret.
	EnvPrefix = "AUTHGATE"

	// EnvConfigJSON holds a JSON document merged over the file and env config.
	EnvConfigJSON = "AUTHGATE_CONFIG_JSON"

	defaultAccessTTL  = 30 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
	defaultIssuer     = "authgate"
	masked            = "********"
)

// ReadConfig from config file, environment and the JSON override.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigName("main")
	v.SetConfigType("toml")
	v.AddConfigPath(path)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		// a missing file is fine, everything can come from the environment
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "failed to read main config file")
		}
	}

	if err = v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode config")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

// setDefaults registers every key that may only be provided by the
// environment, viper ignores env vars for keys it has never seen.
func setDefaults(v *viper.Viper) {
	v.SetDefault("title", "authgate")
	v.SetDefault("db.engine", "mysql")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.host", "")
	v.SetDefault("db.port", 0)
	v.SetDefault("db.user", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "")
	v.SetDefault("db.extras", "")
	v.SetDefault("db.loglevel", "warn")
	v.SetDefault("auth.accesssecret", "")
	v.SetDefault("auth.refreshsecret", "")
	v.SetDefault("auth.issuer", defaultIssuer)
	v.SetDefault("auth.accessttl", defaultAccessTTL)
	v.SetDefault("auth.refreshttl", defaultRefreshTTL)
	v.SetDefault("bootstrap.superadminemail", "")
	v.SetDefault("bootstrap.superadminpassword", "")
	v.SetDefault("webserver.port", 0)
	v.SetDefault("webserver.url", "")
	v.SetDefault("webserver.shutdowntime", 5) //nolint:mnd
	v.SetDefault("webserver.loginratelimit", 0)
	v.SetDefault("webserver.limiterredis", "")
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read json config override")
	}

	return c, nil
}

// DumpConfig config as TOML String, secrets are masked.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(maskSecrets(*c)); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String, secrets are masked.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(maskSecrets(*c)); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

func maskSecrets(c Config) Config {
	if c.DB.Password != "" {
		c.DB.Password = masked
	}

	if c.DB.DSN != "" {
		c.DB.DSN = masked
	}

	if c.Auth.AccessSecret != "" {
		c.Auth.AccessSecret = masked
	}

	if c.Auth.RefreshSecret != "" {
		c.Auth.RefreshSecret = masked
	}

	if c.Bootstrap.SuperAdminPassword != "" {
		c.Bootstrap.SuperAdminPassword = masked
	}

	return c
}

// validate the settings needed to start the process.
// Missing database or signing settings are fatal, there are no soft defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	// validate webserver listening port
	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = 5 // set default of 5 seconds
	}

	switch c.DB.Engine {
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrDBEngineUnsupported, invalidErrMessage)
	}

	if c.DB.DSN == "" && c.DB.Host == "" {
		return errors.Wrap(ErrDBConnectionMissing, invalidErrMessage)
	}

	if c.DB.Name == "" {
		return errors.Wrap(ErrDBNameMissing, invalidErrMessage)
	}

	if c.Auth.AccessSecret == "" {
		return errors.Wrap(ErrAccessSecretMissing, invalidErrMessage)
	}

	if c.Auth.RefreshSecret == "" {
		return errors.Wrap(ErrRefreshSecretMissing, invalidErrMessage)
	}

	if c.Auth.AccessSecret == c.Auth.RefreshSecret {
		return errors.Wrap(ErrSecretsMustDiffer, invalidErrMessage)
	}

	if c.Auth.AccessTTL <= 0 {
		c.Auth.AccessTTL = defaultAccessTTL
	}

	if c.Auth.RefreshTTL <= 0 {
		c.Auth.RefreshTTL = defaultRefreshTTL
	}

	if c.Auth.Issuer == "" {
		c.Auth.Issuer = defaultIssuer
	}

	return nil
}
