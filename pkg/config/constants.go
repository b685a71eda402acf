package config

// EnvPrefix is empty because every variable carries the full ANNHA_ name in its tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "ANNHA_APP_ENV"
	EnvPort       = "ANNHA_APP_PORT"
	EnvDBDSN      = "ANNHA_DB_DSN"
	EnvDBHost     = "ANNHA_DB_HOST"
	EnvDBUser     = "ANNHA_DB_USER"
	EnvDBName     = "ANNHA_DB_NAME"
	EnvRedisURL   = "ANNHA_REDIS_URL"
	EnvJWTSecret  = "ANNHA_JWT_SECRET"
	EnvJWTIssuer  = "ANNHA_JWT_ISSUER"
	EnvJWTExpMins = "ANNHA_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
