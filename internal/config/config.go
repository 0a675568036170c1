package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap/zapcore"
	"golang.org/x/crypto/bcrypt"
)

const (
	ServiceName    = "warehouse"
	ServiceVersion = "0.1.0"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

const (
	LogsPath      = "/otlp/v1/logs"
	TracesPath    = "/otlp/v1/traces"
	ExportTimeout = 30 * time.Second
	MaxQueueSize  = 2048
)

// sqlitePragmas are applied per connection unless the DSN sets them already.
var sqlitePragmas = []string{"foreign_keys(1)", "busy_timeout(5000)"}

const (
	defaultDSN           = "warehouse:warehouse@tcp(localhost:3306)/warehouse_db"
	defaultMaxOpenConns  = 10
	defaultAdminUser     = "admin"
	defaultAdminPassword = "admin123"
)

type StoreConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type Config struct {
	Store             StoreConfig
	AdminUser         string
	AdminPasswordHash []byte
	OpTimeout         time.Duration
	LogLevel          zapcore.Level
	OtelEndpoint      string
	OtelAuthHeader    string
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Store: StoreConfig{
			Driver:          getenv("WAREHOUSE_DB_DRIVER", DriverMySQL),
			DSN:             getenv("WAREHOUSE_DB_DSN", defaultDSN),
			ConnMaxLifetime: 5 * time.Minute,
		},
		AdminUser:      getenv("WAREHOUSE_ADMIN_USER", defaultAdminUser),
		OtelEndpoint:   os.Getenv("OTEL_ENDPOINT"),
		OtelAuthHeader: os.Getenv("OTEL_AUTH_HEADER"),
	}

	var err error
	if config.Store.MaxOpenConns, err = getenvInt("WAREHOUSE_DB_MAX_OPEN_CONNS", defaultMaxOpenConns); err != nil {
		return nil, err
	}
	if config.OpTimeout, err = getenvDuration("WAREHOUSE_OP_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if config.LogLevel, err = zapcore.ParseLevel(getenv("WAREHOUSE_LOG_LEVEL", "warn")); err != nil {
		return nil, fmt.Errorf("WAREHOUSE_LOG_LEVEL: %w", err)
	}

	if hash := os.Getenv("WAREHOUSE_ADMIN_PASSWORD_HASH"); hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("WAREHOUSE_ADMIN_PASSWORD_HASH is not a bcrypt hash: %w", err)
		}
		config.AdminPasswordHash = []byte(hash)
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(defaultAdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash default admin password: %w", err)
		}
		config.AdminPasswordHash = hash
	}

	if err := config.Store.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (s StoreConfig) Validate() error {
	if s.Driver != DriverMySQL && s.Driver != DriverSQLite {
		return fmt.Errorf("unsupported database driver %q (want %s or %s)", s.Driver, DriverMySQL, DriverSQLite)
	}
	if s.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}
	if s.MaxOpenConns < 0 {
		return fmt.Errorf("max open connections must not be negative, got %d", s.MaxOpenConns)
	}
	return nil
}

// DataSourceName returns the DSN with the options the store relies on forced on.
func (s StoreConfig) DataSourceName() (string, error) {
	switch s.Driver {
	case DriverMySQL:
		cfg, err := mysql.ParseDSN(s.DSN)
		if err != nil {
			return "", fmt.Errorf("parse mysql dsn: %w", err)
		}
		cfg.ParseTime = true
		// updates that change no column still report the matched row
		cfg.ClientFoundRows = true
		return cfg.FormatDSN(), nil
	case DriverSQLite:
		dsn := s.DSN
		for _, pragma := range sqlitePragmas {
			name, _, _ := strings.Cut(pragma, "(")
			if strings.Contains(dsn, name) {
				continue
			}
			sep := "?"
			if strings.Contains(dsn, "?") {
				sep = "&"
			}
			dsn += sep + "_pragma=" + pragma
		}
		return dsn, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", s.Driver)
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
