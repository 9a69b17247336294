package config

// DB holds the database configuration settings.
type DB struct {
	Engine   string // mysql, postgres or sqlite
	DSN      string // full connection string, wins over the host based fields
	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	LogLevel string // gorm log level: silent, error, warn, info
}

const (
	// EngineMySQL selects the gorm mysql driver.
	EngineMySQL = "mysql"
	// EnginePostgres selects the gorm postgres driver.
	EnginePostgres = "postgres"
	// EngineSQLite selects the pure go sqlite driver, DB.Name is the file path.
	EngineSQLite = "sqlite"
)
