package config

type MongoConfigType struct {
	Uri    string `env:"MONGODB_URI,required"`
	DBName string `env:"MONGODB_DB_NAME,required"`
}

type MinioConfigType struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Bucket    string `env:"MINIO_BUCKET" envDefault:"tgwatch-artifacts"`
	Secure    bool   `env:"MINIO_SECURE" envDefault:"true"`
}

type TelegramConfigType struct {
	AppID        int    `env:"TG_APP_ID,required"`
	AppHash      string `env:"TG_APP_HASH,required"`
	TGSocksProxy string `env:"TG_SOCKS_PROXY"`
	BotToken     string `env:"BOT_TOKEN,required"`
	WebhookURL   string `env:"WEBHOOK_URL"`
}

type AuthConfigType struct {
	TokenSigningKey  string `env:"TOKEN_SIGNING_KEY,required"`
	TokenLifetimeMin int    `env:"TOKEN_LIFETIME_MINUTES" envDefault:"1440"`
	WebhookSecret    string `env:"WEBHOOK_SECRET,required"`
}

type HttpConfigType struct {
	ListenAddr   string   `env:"LISTEN_ADDR" envDefault:":8080"`
	CoresAllowed []string `env:"CORES_ALLOWED_ORIGINS"`
	Swagger      bool     `env:"SWAGGER" envDefault:"false"`
}

type RuntimeConfigType struct {
	LogLevel           string `env:"LOG_LEVEL" envDefault:"warning"`
	ArtifactRoot       string `env:"ARTIFACT_ROOT" envDefault:"artifacts"`
	HealthPollInterval int    `env:"HEALTH_POLL_SECONDS" envDefault:"30"`
}

type ConfigType struct {
	MongoDBConfig  MongoConfigType
	MinioConfig    MinioConfigType
	TelegramConfig TelegramConfigType
	AuthConfig     AuthConfigType
	HttpConfig     HttpConfigType
	RuntimeConfig  RuntimeConfigType
}
