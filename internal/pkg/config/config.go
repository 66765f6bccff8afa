package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	JWTSecret       string        `env:"JWT_SECRET"`
	BcryptCost      int           `env:"BCRYPT_COST,      default=10"`
	StoreDriver     string        `env:"STORE_DRIVER,     default=mongo"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Log    LogConfig
	Mongo  MongoConfig
	SQLite SQLiteConfig
	Redis  RedisConfig
}

type LogConfig struct {
	Level     string `env:"LOG_LEVEL,     default=info"`
	Pretty    bool   `env:"LOG_PRETTY,    default=false"`
	Requests  bool   `env:"LOG_REQUESTS,  default=false"`
	Responses bool   `env:"LOG_RESPONSES, default=false"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity"`
}

type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH, default=identity.db"`
}

type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED,  default=false"`
	Addr     string        `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,       default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL,      default=5m"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through the given lookuper and validates it.
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if cfg.IsProduction() {
		// log shippers expect JSON lines
		cfg.Log.Pretty = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreDriver {
	case DriverMongo, DriverSQLite, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("config: BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.StoreDriver == DriverSQLite && strings.TrimSpace(c.SQLite.Path) == "" {
		errs = append(errs, errors.New("config: SQLITE_PATH is required for the sqlite driver"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("config: SHUTDOWN_TIMEOUT must be positive"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}
