package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Catalog      CatalogConfig
	Orders       OrdersConfig
	Cart         CartConfig
	Payments     PaymentsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SOUQ_APP_ENV" required:"true"`
	LogLevel     string `envconfig:"SOUQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOUQ_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"SOUQ_LOG_FORMAT" default:"json"`
}

// ConsoleLogs reports whether logs should be written for humans instead of as JSON.
func (a AppConfig) ConsoleLogs() bool {
	return strings.EqualFold(a.LogFormat, "console")
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOUQ_DB_DSN"`
	Driver string `envconfig:"SOUQ_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOUQ_DB_HOST"`
	LegacyPort     int    `envconfig:"SOUQ_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOUQ_DB_USER"`
	LegacyPassword string `envconfig:"SOUQ_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOUQ_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOUQ_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SOUQ_SQLITE_PATH" default:"db.sqlite3"`

	MaxOpenConns    int           `envconfig:"SOUQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOUQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOUQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOUQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	// SlowQueryThreshold logs statements slower than this at warn level; zero disables it.
	SlowQueryThreshold time.Duration `envconfig:"SOUQ_DB_SLOW_QUERY_THRESHOLD" default:"500ms"`
}

// IsSQLite reports whether the configured driver targets SQLite.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(db.Driver, DBDriverSQLite)
}

// RedisConfig is optional: an empty URL and address disables the cart merge lock.
type RedisConfig struct {
	URL          string        `envconfig:"SOUQ_REDIS_URL"`
	Address      string        `envconfig:"SOUQ_REDIS_ADDR"`
	Password     string        `envconfig:"SOUQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOUQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOUQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOUQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOUQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOUQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOUQ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// Enabled reports whether a Redis endpoint was configured.
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SOUQ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SOUQ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SOUQ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SOUQ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SOUQ_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SOUQ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SOUQ_AUTO_MIGRATE" default:"false"`
	MergeLock   bool `envconfig:"SOUQ_FEATURE_CART_MERGE_LOCK" default:"true"`
}

type CatalogConfig struct {
	DefaultTaxRate           string `envconfig:"SOUQ_CATALOG_DEFAULT_TAX_RATE" default:"15"`
	DefaultLowStockThreshold int    `envconfig:"SOUQ_CATALOG_LOW_STOCK_THRESHOLD" default:"5"`
}

type OrdersConfig struct {
	NumberPrefix   string `envconfig:"SOUQ_ORDER_NUMBER_PREFIX" default:"ORD"`
	DefaultCountry string `envconfig:"SOUQ_DEFAULT_COUNTRY" default:"Saudi Arabia"`
}

type PaymentsConfig struct {
	Currency      string `envconfig:"SOUQ_PAYMENT_CURRENCY" default:"SAR"`
	SeedOnStartup bool   `envconfig:"SOUQ_SEED_PAYMENT_METHODS" default:"false"`
}

type CartConfig struct {
	MergeLockTTL time.Duration `envconfig:"SOUQ_CART_MERGE_LOCK_TTL" default:"10s"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
	}
	if db.IsSQLite() {
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
