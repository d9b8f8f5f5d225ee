package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	// 服务配置
	ServerPort  string `env:"SERVER_PORT" envDefault:"8890"`
	ServerHost  string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"duebell"`

	// PostgreSQL 配置
	PostgreSQLHost     string `env:"POSTGRESQL_HOST" envDefault:"localhost"`
	PostgreSQLPort     string `env:"POSTGRESQL_PORT" envDefault:"5432"`
	PostgreSQLUser     string `env:"POSTGRESQL_USER" envDefault:"postgres"`
	PostgreSQLPassword string `env:"POSTGRESQL_PASSWORD" envDefault:"postgres"`
	PostgreSQLDatabase string `env:"POSTGRESQL_DATABASE" envDefault:"duebell"`
	PostgreSQLSchema   string `env:"POSTGRESQL_SCHEMA" envDefault:"public"`
	PostgreSQLSSLMode  string `env:"POSTGRESQL_SSLMODE" envDefault:"disable"`
	PostgreSQLMaxIdle  int    `env:"POSTGRESQL_MAX_IDLE" envDefault:"10"`
	PostgreSQLMaxOpen  int    `env:"POSTGRESQL_MAX_OPEN" envDefault:"50"`

	// Redis 配置
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"dbell"`

	// RabbitMQ 配置
	RabbitMQAddr     string `env:"RABBITMQ_ADDR" envDefault:"localhost"`
	RabbitMQPort     string `env:"RABBITMQ_PORT" envDefault:"5672"`
	RabbitMQUsername string `env:"RABBITMQ_USERNAME" envDefault:"guest"`
	RabbitMQPassword string `env:"RABBITMQ_PASSWORD" envDefault:"guest"`
	RabbitMQVhost    string `env:"RABBITMQ_VHOST" envDefault:"/"`

	// Telegram 渠道配置
	// bot token 不放在这里，统一走 secrets provider 获取
	TelegramChatID    string `env:"TELEGRAM_CHAT_ID"`
	TelegramAPIBase   string `env:"TELEGRAM_API_BASE" envDefault:"https://api.telegram.org"`
	TelegramEnabled   bool   `env:"TELEGRAM_ENABLED" envDefault:"true"`
	TelegramTimeoutMS int    `env:"TELEGRAM_TIMEOUT_MS" envDefault:"10000"`

	// 邮件渠道配置（SMTP），密码同样走 secrets provider
	EmailEnabled bool   `env:"EMAIL_ENABLED" envDefault:"true"`
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	EmailFrom    string `env:"EMAIL_FROM"`
	EmailTo      string `env:"EMAIL_TO"`

	// Secrets provider 配置
	SecretsProvider  string `env:"SECRETS_PROVIDER" envDefault:"env"` // env, mock
	SecretsEnvPrefix string `env:"SECRETS_ENV_PREFIX" envDefault:"DUEBELL_SECRET_"`

	// Action Handler webhook 鉴权用的共享 token
	WebhookToken string `env:"WEBHOOK_TOKEN"`

	// 调度配置
	RunHour   int `env:"RUN_HOUR" envDefault:"0"`   // 每日运行的小时
	RunMinute int `env:"RUN_MINUTE" envDefault:"5"` // 每日运行的分钟

	// Snowflake ID 生成器配置
	SnowflakeMachineID  int64 `env:"SNOWFLAKE_MACHINE_ID" envDefault:"1"`
	SnowflakeDataCenter int64 `env:"SNOWFLAKE_DATACENTER_ID" envDefault:"1"`

	// 日志配置
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"stdout"`

	// 链路追踪配置
	TracingEnabled  bool   `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:"localhost:4317"`
}

func init() {

	if err := godotenv.Load(); err != nil {

		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.TelegramEnabled && Cfg.TelegramChatID == "" {
		log.Printf("WARN: TELEGRAM_CHAT_ID is not set, Telegram channel will be disabled")
	}

	if Cfg.EmailEnabled {
		if Cfg.SMTPHost == "" {
			log.Printf("WARN: SMTP_HOST is not set, email channel will be disabled")
		}
		if Cfg.EmailFrom == "" || Cfg.EmailTo == "" {
			log.Printf("WARN: EMAIL_FROM / EMAIL_TO not set, email channel may not work properly")
		}
	}

	if Cfg.WebhookToken == "" {
		log.Printf("WARN: WEBHOOK_TOKEN is not set, callback webhook will accept unauthenticated requests")
	}
}

func (c *Config) GetDSN() string {
	return "host=" + c.PostgreSQLHost +
		" port=" + c.PostgreSQLPort +
		" user=" + c.PostgreSQLUser +
		" password=" + c.PostgreSQLPassword +
		" dbname=" + c.PostgreSQLDatabase +
		" sslmode=" + c.PostgreSQLSSLMode +
		" search_path=" + c.PostgreSQLSchema
}

func (c *Config) GetRabbitMQURL() string {
	return "amqp://" + c.RabbitMQUsername + ":" + c.RabbitMQPassword + "@" + c.RabbitMQAddr + ":" + c.RabbitMQPort + c.RabbitMQVhost
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
