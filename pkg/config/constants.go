package config

const (
	EnvPrefix = "PEP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "PEP_APP_ENV"
	EnvPort                   = "PEP_APP_PORT"
	EnvAppTimezone            = "PEP_APP_TIMEZONE"
	EnvDBDSN                  = "PEP_DB_DSN"
	EnvDBHost                 = "PEP_DB_HOST"
	EnvDBUser                 = "PEP_DB_USER"
	EnvDBName                 = "PEP_DB_NAME"
	EnvRedisURL               = "PEP_REDIS_URL"
	EnvJWTSecret              = "PEP_JWT_SECRET"
	EnvJWTIssuer              = "PEP_JWT_ISSUER"
	EnvJWTExpMins             = "PEP_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PEP_REFRESH_TOKEN_TTL_MINUTES"
	EnvTaxRateBps             = "PEP_TAX_RATE_BPS"
	EnvPubSubOrdersTopic      = "PEP_PUBSUB_ORDERS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
