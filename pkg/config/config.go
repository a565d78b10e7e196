package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Checkout      CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BLOOMHAUS_APP_ENV" required:"true"`
	Port         string `envconfig:"BLOOMHAUS_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BLOOMHAUS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BLOOMHAUS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BLOOMHAUS_DB_DSN"`
	Driver string `envconfig:"BLOOMHAUS_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BLOOMHAUS_DB_HOST"`
	LegacyPort     int    `envconfig:"BLOOMHAUS_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BLOOMHAUS_DB_USER"`
	LegacyPassword string `envconfig:"BLOOMHAUS_DB_PASSWORD"`
	LegacyName     string `envconfig:"BLOOMHAUS_DB_NAME"`
	LegacySSLMode  string `envconfig:"BLOOMHAUS_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BLOOMHAUS_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BLOOMHAUS_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BLOOMHAUS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BLOOMHAUS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("database DSN or host/user/name settings are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   d.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", d.LegacySSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"BLOOMHAUS_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BLOOMHAUS_REDIS_ADDR"`
	Password     string        `envconfig:"BLOOMHAUS_REDIS_PASSWORD"`
	DB           int           `envconfig:"BLOOMHAUS_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BLOOMHAUS_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BLOOMHAUS_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BLOOMHAUS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BLOOMHAUS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BLOOMHAUS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"BLOOMHAUS_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"BLOOMHAUS_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"BLOOMHAUS_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"BLOOMHAUS_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BLOOMHAUS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BLOOMHAUS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BLOOMHAUS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BLOOMHAUS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BLOOMHAUS_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"BLOOMHAUS_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"BLOOMHAUS_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"BLOOMHAUS_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BLOOMHAUS_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig carries the order pricing knobs applied at order creation.
type CheckoutConfig struct {
	ShippingFlatCents int `envconfig:"BLOOMHAUS_CHECKOUT_SHIPPING_FLAT_CENTS" default:"500"`
	TaxRateBps        int `envconfig:"BLOOMHAUS_CHECKOUT_TAX_RATE_BPS" default:"800"`
}
