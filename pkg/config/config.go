package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "COOPMERCADO"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv = "COOPMERCADO_APP_ENV"
	EnvDBDSN  = "COOPMERCADO_DB_DSN"
	EnvDBHost = "COOPMERCADO_DB_HOST"
	EnvDBUser = "COOPMERCADO_DB_USER"
	EnvDBName = "COOPMERCADO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Password PasswordConfig
	Cron     CronConfig
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
	Env          string `envconfig:"COOPMERCADO_APP_ENV" required:"true"`
	Port         string `envconfig:"COOPMERCADO_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"COOPMERCADO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COOPMERCADO_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"COOPMERCADO_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COOPMERCADO_DB_DSN"`
	Driver string `envconfig:"COOPMERCADO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COOPMERCADO_DB_HOST"`
	LegacyPort     int    `envconfig:"COOPMERCADO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COOPMERCADO_DB_USER"`
	LegacyPassword string `envconfig:"COOPMERCADO_DB_PASSWORD"`
	LegacyName     string `envconfig:"COOPMERCADO_DB_NAME"`
	LegacySSLMode  string `envconfig:"COOPMERCADO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COOPMERCADO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COOPMERCADO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COOPMERCADO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COOPMERCADO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COOPMERCADO_REDIS_URL" required:"true"`
	PoolSize     int           `envconfig:"COOPMERCADO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COOPMERCADO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COOPMERCADO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COOPMERCADO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COOPMERCADO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COOPMERCADO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COOPMERCADO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"COOPMERCADO_JWT_EXPIRATION_MINUTES" default:"60"`
	SessionTTLMinutes int    `envconfig:"COOPMERCADO_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the redis session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"COOPMERCADO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"COOPMERCADO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"COOPMERCADO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"COOPMERCADO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"COOPMERCADO_ARGON_KEY_LEN" default:"32"`
}

type CronConfig struct {
	QuoteExpiryEnabled bool          `envconfig:"COOPMERCADO_CRON_QUOTE_EXPIRY_ENABLED" default:"true"`
	LockTTL            time.Duration `envconfig:"COOPMERCADO_CRON_LOCK_TTL" default:"1h"`
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
