package db

import (
	"fmt"
	"net/url"
	"strings"

	"cardstorm-backend/internal/components/configutil"
)

const (
	DriverSqlite   = "sqlite"
	DriverLibsql   = "libsql"
	DriverPostgres = "postgres"
)

// Config selects and locates the store, the zero value is a sqlite
// database in the working directory.
type Config struct {
	Driver string `json:"driver"`
	// File is the sqlite database path, ":memory:" is accepted.
	File     string `json:"file"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	DBName   string `json:"dbname"`
	Username string `json:"username"`
	// Password doubles as the auth token for libsql.
	Password string `json:"password"`
	SSLMode  string `json:"sslmode"`
}

// ApplyEnv overrides the config with the CARDSTORM_DB_* environment variables.
func (c *Config) ApplyEnv() {
	configutil.EnvString(&c.Driver, "CARDSTORM_DB_DRIVER")
	configutil.EnvString(&c.File, "CARDSTORM_DB_FILE")
	configutil.EnvString(&c.Host, "CARDSTORM_DB_HOST")
	configutil.EnvInt(&c.Port, "CARDSTORM_DB_PORT")
	configutil.EnvString(&c.DBName, "CARDSTORM_DB_DBNAME")
	configutil.EnvString(&c.Username, "CARDSTORM_DB_USERNAME")
	configutil.EnvString(&c.Password, "CARDSTORM_DB_PASSWORD")
}

func (c Config) driver() string {
	if c.Driver == "" {
		return DriverSqlite
	}
	return strings.ToLower(c.Driver)
}

func (c Config) libsqlDSN() (string, error) {
	if c.Host == "" {
		return "", fmt.Errorf("libsql: host is required")
	}
	raw := c.Host
	if !strings.Contains(raw, "://") {
		raw = "libsql://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("libsql: parse host: %w", err)
	}
	if c.Password != "" {
		q := u.Query()
		q.Set("authToken", c.Password)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func (c Config) postgresDSN() (string, error) {
	if c.Host == "" {
		return "", fmt.Errorf("postgres: host is required")
	}
	host := c.Host
	if c.Port > 0 {
		host = fmt.Sprintf("%s:%d", c.Host, c.Port)
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   host,
		Path:   "/" + c.DBName,
	}
	if c.Username != "" {
		u.User = url.UserPassword(c.Username, c.Password)
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": {sslmode}}.Encode()
	return u.String(), nil
}
