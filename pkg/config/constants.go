package config

// EnvPrefix is passed to envconfig; individual fields carry explicit names.
const EnvPrefix = "assetdesk"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "ASSETDESK_APP_ENV"
	EnvPort     = "ASSETDESK_APP_PORT"
	EnvDBDSN    = "ASSETDESK_DB_DSN"
	EnvDBHost   = "ASSETDESK_DB_HOST"
	EnvDBUser   = "ASSETDESK_DB_USER"
	EnvDBName   = "ASSETDESK_DB_NAME"
	EnvRedisURL = "ASSETDESK_REDIS_URL"

	EnvJWTSecret              = "ASSETDESK_JWT_SECRET"
	EnvJWTIssuer              = "ASSETDESK_JWT_ISSUER"
	EnvJWTExpMins             = "ASSETDESK_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "ASSETDESK_REFRESH_TOKEN_TTL_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
