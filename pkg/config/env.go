package config

// EnvPrefix is handed to envconfig; every field carries an explicit SOUQ_* name.
const EnvPrefix = "SOUQ"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "SOUQ_APP_ENV"
	EnvLogLevel = "SOUQ_LOG_LEVEL"

	EnvDBDSN    = "SOUQ_DB_DSN"
	EnvDBDriver = "SOUQ_DB_DRIVER"
	EnvDBHost   = "SOUQ_DB_HOST"
	EnvDBPort   = "SOUQ_DB_PORT"
	EnvDBUser   = "SOUQ_DB_USER"
	EnvDBPass   = "SOUQ_DB_PASSWORD"
	EnvDBName   = "SOUQ_DB_NAME"

	EnvRedisURL  = "SOUQ_REDIS_URL"
	EnvUseSQLite = "SOUQ_USE_SQLITE"
	EnvSQLite    = "SOUQ_SQLITE_PATH"

	EnvOrderNumberPrefix = "SOUQ_ORDER_NUMBER_PREFIX"
	EnvPaymentCurrency   = "SOUQ_PAYMENT_CURRENCY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
