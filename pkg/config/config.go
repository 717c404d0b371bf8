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
	Service       ServiceConfig
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Pricing       PricingConfig
	Guest         GuestConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Mail          MailConfig
	Maintenance   MaintenanceConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if _, err := cfg.App.Location(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PEP_APP_ENV" required:"true"`
	Port         string `envconfig:"PEP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PEP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PEP_LOG_WARN_STACK" default:"false"`
	Timezone     string `envconfig:"PEP_APP_TIMEZONE" default:"UTC"`
	CORSOrigins  string `envconfig:"PEP_CORS_ORIGINS" default:"http://localhost:5173"`
	// MetricsPort exposes /metrics from the background workers when set.
	MetricsPort string `envconfig:"PEP_METRICS_PORT"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

// Location resolves the restaurant time zone used for order numbering and reports.
func (a AppConfig) Location() (*time.Location, error) {
	name := strings.TrimSpace(a.Timezone)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", EnvAppTimezone, name, err)
	}
	return loc, nil
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	out := []string{}
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type ServiceConfig struct {
	Kind string `envconfig:"PEP_SERVICE_KIND" default:"api"`
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"PEP_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"PEP_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"PEP_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"PEP_HTTP_SHUTDOWN_TIMEOUT" default:"20s"`
}

type DBConfig struct {
	DSN    string `envconfig:"PEP_DB_DSN"`
	Driver string `envconfig:"PEP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PEP_DB_HOST"`
	LegacyPort     int    `envconfig:"PEP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PEP_DB_USER"`
	LegacyPassword string `envconfig:"PEP_DB_PASSWORD"`
	LegacyName     string `envconfig:"PEP_DB_NAME"`
	LegacySSLMode  string `envconfig:"PEP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PEP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PEP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PEP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PEP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PEP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PEP_REDIS_ADDR"`
	Password     string        `envconfig:"PEP_REDIS_PASSWORD"`
	DB           int           `envconfig:"PEP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PEP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PEP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PEP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PEP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PEP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PEP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PEP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PEP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PEP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PEP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PEP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PEP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PEP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PEP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"PEP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"PEP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"PEP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"PEP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"PEP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"PEP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PEP_AUTO_MIGRATE" default:"false"`
}

// PricingConfig holds the checkout charges applied on top of the cart total.
type PricingConfig struct {
	DeliveryFeeCents           int `envconfig:"PEP_DELIVERY_FEE_CENTS" default:"4000"`
	FreeDeliveryThresholdCents int `envconfig:"PEP_FREE_DELIVERY_THRESHOLD_CENTS" default:"50000"`
	TaxRateBps                 int `envconfig:"PEP_TAX_RATE_BPS" default:"500"`
}

type GuestConfig struct {
	SessionCacheTTL time.Duration `envconfig:"PEP_GUEST_SESSION_CACHE_TTL" default:"24h"`
}

type EventingConfig struct {
	ConsumerIdempotencyTTL time.Duration `envconfig:"PEP_EVENTING_IDEMPOTENCY_TTL" default:"168h"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"PEP_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"PEP_PUBSUB_ORDERS_TOPIC" default:"pep-order-events"`
	OrdersSubscription string `envconfig:"PEP_PUBSUB_ORDERS_SUBSCRIPTION" default:"pep-order-events-notifications"`
	// Endpoint points the client at an emulator (host:port); empty uses Google's endpoint.
	Endpoint string `envconfig:"PEP_PUBSUB_ENDPOINT"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PEP_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PEP_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PEP_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// MaintenanceConfig drives the cron-worker sweeps.
type MaintenanceConfig struct {
	Interval            time.Duration `envconfig:"PEP_MAINTENANCE_INTERVAL" default:"1h"`
	OutboxRetentionDays int           `envconfig:"PEP_OUTBOX_RETENTION_DAYS" default:"30"`
	GuestCartIdleDays   int           `envconfig:"PEP_GUEST_CART_IDLE_DAYS" default:"14"`
}

type MailConfig struct {
	SMTPHost        string `envconfig:"PEP_SMTP_HOST"`
	SMTPPort        int    `envconfig:"PEP_SMTP_PORT" default:"587"`
	SMTPUser        string `envconfig:"PEP_SMTP_USER"`
	SMTPPassword    string `envconfig:"PEP_SMTP_PASSWORD"`
	From            string `envconfig:"PEP_MAIL_FROM" default:"orders@pepdine.local"`
	RestaurantInbox string `envconfig:"PEP_MAIL_RESTAURANT_INBOX"`
}

// Enabled reports whether an SMTP relay is configured.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.SMTPHost) != ""
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
