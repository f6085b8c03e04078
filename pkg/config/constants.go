package config

const (
	EnvPrefix = "SHELFLIFE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	NotificationTransportDB     = "db"
	NotificationTransportPubSub = "pubsub"
)

const (
	EnvAppEnv                = "SHELFLIFE_APP_ENV"
	EnvPort                  = "SHELFLIFE_APP_PORT"
	EnvDBDSN                 = "SHELFLIFE_DB_DSN"
	EnvDBHost                = "SHELFLIFE_DB_HOST"
	EnvDBUser                = "SHELFLIFE_DB_USER"
	EnvDBName                = "SHELFLIFE_DB_NAME"
	EnvDBPassword            = "SHELFLIFE_DB_PASSWORD"
	EnvRedisURL              = "SHELFLIFE_REDIS_URL"
	EnvJWTSecret             = "SHELFLIFE_JWT_SECRET"
	EnvJWTIssuer             = "SHELFLIFE_JWT_ISSUER"
	EnvNotificationTransport = "SHELFLIFE_NOTIFICATION_TRANSPORT"
	EnvVisionAPIKey          = "SHELFLIFE_VISION_API_KEY"
	EnvCronInterval          = "SHELFLIFE_CRON_INTERVAL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
