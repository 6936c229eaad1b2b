package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Challenge     ChallengeConfig
	Allowlist     AllowlistConfig
	Sendgrid      SendgridConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"SUPPLYDESK_APP_ENV" required:"true"`
	Port         string `envconfig:"SUPPLYDESK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SUPPLYDESK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SUPPLYDESK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SUPPLYDESK_DB_DSN"`
	Driver string `envconfig:"SUPPLYDESK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SUPPLYDESK_DB_HOST"`
	LegacyPort     int    `envconfig:"SUPPLYDESK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SUPPLYDESK_DB_USER"`
	LegacyPassword string `envconfig:"SUPPLYDESK_DB_PASSWORD"`
	LegacyName     string `envconfig:"SUPPLYDESK_DB_NAME"`
	LegacySSLMode  string `envconfig:"SUPPLYDESK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SUPPLYDESK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SUPPLYDESK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SUPPLYDESK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SUPPLYDESK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SUPPLYDESK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SUPPLYDESK_REDIS_ADDR"`
	Password     string        `envconfig:"SUPPLYDESK_REDIS_PASSWORD"`
	DB           int           `envconfig:"SUPPLYDESK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SUPPLYDESK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SUPPLYDESK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SUPPLYDESK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SUPPLYDESK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SUPPLYDESK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SUPPLYDESK_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SUPPLYDESK_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SUPPLYDESK_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SUPPLYDESK_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SUPPLYDESK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SUPPLYDESK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SUPPLYDESK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SUPPLYDESK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SUPPLYDESK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow         time.Duration `envconfig:"SUPPLYDESK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit     int           `envconfig:"SUPPLYDESK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit        int           `envconfig:"SUPPLYDESK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	ChallengeWindow     time.Duration `envconfig:"SUPPLYDESK_AUTH_RATE_LIMIT_CHALLENGE_WINDOW" default:"5m"`
	ChallengeEmailLimit int           `envconfig:"SUPPLYDESK_AUTH_RATE_LIMIT_CHALLENGE_EMAIL_LIMIT" default:"3"`
	ChallengeIPLimit    int           `envconfig:"SUPPLYDESK_AUTH_RATE_LIMIT_CHALLENGE_IP_LIMIT" default:"20"`
}

type ChallengeConfig struct {
	CodeTTL time.Duration `envconfig:"SUPPLYDESK_CHALLENGE_CODE_TTL" default:"15m"`
}

type AllowlistConfig struct {
	CSVPath string `envconfig:"SUPPLYDESK_ALLOWLIST_CSV_PATH" default:"allowlist.csv"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"SUPPLYDESK_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"SUPPLYDESK_SENDGRID_FROM_EMAIL"`
	FromName    string `envconfig:"SUPPLYDESK_SENDGRID_FROM_NAME" default:"SupplyDesk"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SUPPLYDESK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
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
