package config

const (
	// EnvPrefix is passed to envconfig; individual fields carry fully
	// prefixed tags so this stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "SUPPLYDESK_DB_DSN"
	EnvDBHost = "SUPPLYDESK_DB_HOST"
	EnvDBUser = "SUPPLYDESK_DB_USER"
	EnvDBName = "SUPPLYDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
