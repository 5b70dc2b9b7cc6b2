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

	EnvDBDSN  = "SOLEMATE_DB_DSN"
	EnvDBHost = "SOLEMATE_DB_HOST"
	EnvDBUser = "SOLEMATE_DB_USER"
	EnvDBName = "SOLEMATE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	RateLimit    RateLimitConfig
	Checkout     CheckoutConfig
	Notifier     NotifierConfig
	Outbox       OutboxConfig
	OpenAI       OpenAIConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"SOLEMATE_APP_ENV" required:"true"`
	Port         string `envconfig:"SOLEMATE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SOLEMATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SOLEMATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SOLEMATE_DB_DSN"`
	Driver string `envconfig:"SOLEMATE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SOLEMATE_DB_HOST"`
	LegacyPort     int    `envconfig:"SOLEMATE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SOLEMATE_DB_USER"`
	LegacyPassword string `envconfig:"SOLEMATE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SOLEMATE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SOLEMATE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SOLEMATE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SOLEMATE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SOLEMATE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SOLEMATE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SOLEMATE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SOLEMATE_REDIS_ADDR"`
	Password     string        `envconfig:"SOLEMATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SOLEMATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SOLEMATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SOLEMATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SOLEMATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SOLEMATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SOLEMATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"SOLEMATE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"SOLEMATE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"SOLEMATE_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"SOLEMATE_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SOLEMATE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SOLEMATE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SOLEMATE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SOLEMATE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SOLEMATE_ARGON_KEY_LEN" default:"32"`
}

// RateLimitConfig caps request volume. The general limit applies per
// authenticated user; the login/register limits guard credential endpoints
// per IP and per email.
type RateLimitConfig struct {
	RequestsPerWindow int           `envconfig:"SOLEMATE_RATE_LIMIT_REQUESTS" default:"120"`
	Window            time.Duration `envconfig:"SOLEMATE_RATE_LIMIT_WINDOW" default:"1m"`

	LoginWindow        time.Duration `envconfig:"SOLEMATE_LOGIN_RATE_WINDOW" default:"1m"`
	LoginIPLimit       int           `envconfig:"SOLEMATE_LOGIN_RATE_IP_LIMIT" default:"10"`
	LoginEmailLimit    int           `envconfig:"SOLEMATE_LOGIN_RATE_EMAIL_LIMIT" default:"5"`
	RegisterWindow     time.Duration `envconfig:"SOLEMATE_REGISTER_RATE_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"SOLEMATE_REGISTER_RATE_IP_LIMIT" default:"20"`
	RegisterEmailLimit int           `envconfig:"SOLEMATE_REGISTER_RATE_EMAIL_LIMIT" default:"3"`
}

// CheckoutConfig carries the manual UPI collection settings surfaced at checkout.
type CheckoutConfig struct {
	UPIPayeeVPA     string        `envconfig:"SOLEMATE_UPI_PAYEE_VPA" required:"true"`
	UPIPayeeName    string        `envconfig:"SOLEMATE_UPI_PAYEE_NAME" default:"SoleMate"`
	PaymentWindow   time.Duration `envconfig:"SOLEMATE_PAYMENT_WINDOW" default:"5m"`
	DefaultCurrency string        `envconfig:"SOLEMATE_CURRENCY" default:"INR"`
}

type NotifierConfig struct {
	WebhookURL string        `envconfig:"SOLEMATE_NOTIFIER_WEBHOOK_URL"`
	Timeout    time.Duration `envconfig:"SOLEMATE_NOTIFIER_TIMEOUT" default:"15s"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"SOLEMATE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"SOLEMATE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"SOLEMATE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type OpenAIConfig struct {
	APIKey      string        `envconfig:"SOLEMATE_OPENAI_API_KEY"`
	ChatModel   string        `envconfig:"SOLEMATE_OPENAI_CHAT_MODEL" default:"gpt-4o-mini"`
	VisionModel string        `envconfig:"SOLEMATE_OPENAI_VISION_MODEL" default:"gpt-4o"`
	Timeout     time.Duration `envconfig:"SOLEMATE_OPENAI_TIMEOUT" default:"60s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"SOLEMATE_AUTO_MIGRATE" default:"false"`
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
