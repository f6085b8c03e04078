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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Vision       VisionConfig
	Cron         CronConfig
	Idempotency  IdempotencyConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.FeatureFlags.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string        `envconfig:"SHELFLIFE_APP_ENV" required:"true"`
	Port         string        `envconfig:"SHELFLIFE_APP_PORT" required:"true"`
	LogLevel     string        `envconfig:"SHELFLIFE_LOG_LEVEL" default:"info"`
	LogFormat    string        `envconfig:"SHELFLIFE_LOG_FORMAT" default:"json"`
	LogWarnStack bool          `envconfig:"SHELFLIFE_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string        `envconfig:"SHELFLIFE_CORS_ORIGINS"`
	CORSMaxAge   time.Duration `envconfig:"SHELFLIFE_CORS_MAX_AGE" default:"5m"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	var out []string
	for _, origin := range strings.Split(a.CORSOrigins, ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

type ServiceConfig struct {
	Kind string `envconfig:"SHELFLIFE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"SHELFLIFE_DB_DSN"`
	Driver string `envconfig:"SHELFLIFE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SHELFLIFE_DB_HOST"`
	LegacyPort     int    `envconfig:"SHELFLIFE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SHELFLIFE_DB_USER"`
	LegacyPassword string `envconfig:"SHELFLIFE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SHELFLIFE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SHELFLIFE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SHELFLIFE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHELFLIFE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHELFLIFE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHELFLIFE_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	SlowQueryThreshold time.Duration `envconfig:"SHELFLIFE_DB_SLOW_QUERY_THRESHOLD" default:"250ms"`
	TxMaxAttempts      int           `envconfig:"SHELFLIFE_DB_TX_MAX_ATTEMPTS" default:"3"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SHELFLIFE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SHELFLIFE_REDIS_ADDR"`
	Password     string        `envconfig:"SHELFLIFE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHELFLIFE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHELFLIFE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHELFLIFE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHELFLIFE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHELFLIFE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHELFLIFE_REDIS_WRITE_TIMEOUT" default:"5s"`
	Namespace    string        `envconfig:"SHELFLIFE_REDIS_NAMESPACE" default:"shelflife"`
}

// JWTConfig describes how tokens minted by the identity provider are verified.
type JWTConfig struct {
	Secret   string        `envconfig:"SHELFLIFE_JWT_SECRET" required:"true"`
	Issuer   string        `envconfig:"SHELFLIFE_JWT_ISSUER" required:"true"`
	Audience string        `envconfig:"SHELFLIFE_JWT_AUDIENCE"`
	Leeway   time.Duration `envconfig:"SHELFLIFE_JWT_LEEWAY" default:"30s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate           bool   `envconfig:"SHELFLIFE_AUTO_MIGRATE" default:"false"`
	NotificationTransport string `envconfig:"SHELFLIFE_NOTIFICATION_TRANSPORT" default:"db"`
	AnalyticsSnapshot     bool   `envconfig:"SHELFLIFE_ANALYTICS_SNAPSHOT_ENABLED" default:"false"`
}

// UsePubSubNotifications reports whether notifications are fanned out through Pub/Sub.
func (f FeatureFlagsConfig) UsePubSubNotifications() bool {
	return strings.EqualFold(strings.TrimSpace(f.NotificationTransport), NotificationTransportPubSub)
}

func (f FeatureFlagsConfig) validate() error {
	switch strings.ToLower(strings.TrimSpace(f.NotificationTransport)) {
	case NotificationTransportDB, NotificationTransportPubSub:
		return nil
	default:
		return fmt.Errorf("%s must be %q or %q", EnvNotificationTransport, NotificationTransportDB, NotificationTransportPubSub)
	}
}

type GCPConfig struct {
	ProjectID              string `envconfig:"SHELFLIFE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"SHELFLIFE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"SHELFLIFE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string        `envconfig:"SHELFLIFE_PUBSUB_NOTIFICATION_TOPIC" default:"shelflife-notifications"`
	NotificationSubscription string        `envconfig:"SHELFLIFE_PUBSUB_NOTIFICATION_SUBSCRIPTION" default:"shelflife-notifications-sub"`
	DedupeTTL                time.Duration `envconfig:"SHELFLIFE_PUBSUB_DEDUPE_TTL" default:"72h"`
	MaxOutstanding           int           `envconfig:"SHELFLIFE_PUBSUB_MAX_OUTSTANDING" default:"100"`
}

type BigQueryConfig struct {
	Dataset       string `envconfig:"SHELFLIFE_BIGQUERY_DATASET" default:"shelflife"`
	SnapshotTable string `envconfig:"SHELFLIFE_BIGQUERY_SNAPSHOT_TABLE" default:"analytics_snapshots"`
}

// VisionConfig points at the OpenAI-compatible gateway used for label extraction.
type VisionConfig struct {
	BaseURL string        `envconfig:"SHELFLIFE_VISION_BASE_URL" default:"https://ai.gateway.lovable.dev/v1"`
	APIKey  string        `envconfig:"SHELFLIFE_VISION_API_KEY"`
	Model   string        `envconfig:"SHELFLIFE_VISION_MODEL" default:"google/gemini-2.5-flash"`
	Timeout time.Duration `envconfig:"SHELFLIFE_VISION_TIMEOUT" default:"30s"`
	// RateLimit caps scans per user per RateWindow; zero disables the limit.
	RateLimit  int           `envconfig:"SHELFLIFE_SCAN_RATE_LIMIT" default:"20"`
	RateWindow time.Duration `envconfig:"SHELFLIFE_SCAN_RATE_WINDOW" default:"1m"`
}

type CronConfig struct {
	LockTTL               time.Duration `envconfig:"SHELFLIFE_CRON_LOCK_TTL" default:"10m"`
	Interval              time.Duration `envconfig:"SHELFLIFE_CRON_INTERVAL" default:"1h"`
	JobTimeout            time.Duration `envconfig:"SHELFLIFE_CRON_JOB_TIMEOUT" default:"15m"`
	NotificationRetention time.Duration `envconfig:"SHELFLIFE_NOTIFICATION_RETENTION" default:"720h"`
	NotificationPurgeSize int           `envconfig:"SHELFLIFE_NOTIFICATION_PURGE_SIZE" default:"500"`
}

type IdempotencyConfig struct {
	CheckoutTTL time.Duration `envconfig:"SHELFLIFE_IDEMPOTENCY_CHECKOUT_TTL" default:"24h"`
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
