package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyDevRegDBType string = "DEVREG_DB_TYPE"
	EnvKeyDevRegDbPath string = "DEVREG_DB_PATH"

	EnvKeyDevRegHttpHostPort string = "DEVREG_HTTP_HOST_PORT"

	EnvKeyDevRegJwtSecret   string = "DEVREG_JWT_SECRET"
	EnvKeyDevRegUpstreamURL string = "DEVREG_UPSTREAM_URL"

	EnvKeyDevRegDefaultRate  string = "DEVREG_DEFAULT_RATE"
	EnvKeyDevRegDefaultBurst string = "DEVREG_DEFAULT_BURST"

	LoggerNameRegistryCore  string = "registry_core"
	LoggerNameRestfulServer string = "restful_server"
	LoggerFieldCategory     string = "category"
	LoggerCategoryRegister  string = "register"
	LoggerCategoryGateway   string = "gateway"
)
