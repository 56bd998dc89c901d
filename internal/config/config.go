package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreTypePostgres = "postgres"
	StoreTypeSQLite   = "sqlite"
	StoreTypeMemory   = "memory"

	StorageModeLocal  = "local"
	StorageModeS3     = "s3"
	StorageModeMemory = "memory"
)

type Config struct {
	HTTPPort    string
	GRPCPort    string
	GatewayPort string

	DocumentStore  string
	DB             DBConfig
	MigrationsPath string
	SQLitePath     string

	RabbitMQ   RabbitMQConfig
	AuditQueue string

	JWTSecretKey string

	Storage StorageConfig

	DraftTTL time.Duration

	LogLevel  string
	LogFormat string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// URL - строка подключения для pgx и golang-migrate
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RabbitMQConfig struct {
	Host     string
	Port     string
	User     string
	Password string
}

// Enabled - аудит через очередь отключен, если хост не задан
func (c RabbitMQConfig) Enabled() bool {
	return c.Host != ""
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", c.User, c.Password, c.Host, c.Port)
}

type StorageConfig struct {
	Mode          string
	Path          string
	PublicBaseURL string
	S3            S3Config
}

type S3Config struct {
	Endpoint        string
	Region          string
	BucketName      string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Load читает конфигурацию из окружения; .env подхватывается, если он есть
func Load() (*Config, error) {
	_ = godotenv.Load()

	ttl, err := time.ParseDuration(GetEnvOrDefault("DRAFT_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DRAFT_TTL: %w", err)
	}

	cfg := &Config{
		HTTPPort:    GetEnvOrDefault("HTTP_PORT", "8080"),
		GRPCPort:    GetEnvOrDefault("GRPC_PORT", "9090"),
		GatewayPort: GetEnvOrDefault("GATEWAY_PORT", "8081"),

		DocumentStore: strings.ToLower(GetEnvOrDefault("DOCUMENT_STORE", StoreTypePostgres)),
		DB: DBConfig{
			Host:     GetEnvOrDefault("DB_HOST", "localhost"),
			Port:     GetEnvOrDefault("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  GetEnvOrDefault("DB_SSLMODE", "disable"),
		},
		MigrationsPath: GetEnvOrDefault("MIGRATIONS_PATH", "file://migrations"),
		SQLitePath:     GetEnvOrDefault("SQLITE_PATH", "haccp.db"),

		RabbitMQ: RabbitMQConfig{
			Host:     os.Getenv("RABBITMQ_HOST"),
			Port:     GetEnvOrDefault("RABBITMQ_PORT", "5672"),
			User:     GetEnvOrDefault("RABBITMQ_USER", "guest"),
			Password: GetEnvOrDefault("RABBITMQ_PASSWORD", "guest"),
		},
		AuditQueue: GetEnvOrDefault("AUDIT_QUEUE", "task_audit_queue"),

		JWTSecretKey: os.Getenv("JWT_SECRET_KEY"),

		Storage: StorageConfig{
			Mode:          strings.ToLower(GetEnvOrDefault("STORAGE_MODE", StorageModeLocal)),
			Path:          GetEnvOrDefault("STORAGE_PATH", "./uploads"),
			PublicBaseURL: GetEnvOrDefault("PUBLIC_BASE_URL", "http://localhost:8080/files"),
			S3: S3Config{
				Endpoint:        os.Getenv("S3_ENDPOINT"),
				Region:          GetEnvOrDefault("S3_REGION", "us-east-1"),
				BucketName:      os.Getenv("S3_BUCKET_NAME"),
				AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
				SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
				UseSSL:          GetEnvOrDefault("S3_USE_SSL", "true") == "true",
			},
		},

		DraftTTL: ttl,

		LogLevel:  GetEnvOrDefault("LOGGING_LEVEL", "INFO"),
		LogFormat: GetEnvOrDefault("LOG_FORMAT", "CONSOLE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DocumentStore {
	case StoreTypePostgres, StoreTypeSQLite, StoreTypeMemory:
	default:
		return fmt.Errorf("unsupported document store: %s (supported: postgres, sqlite, memory)", c.DocumentStore)
	}
	switch c.Storage.Mode {
	case StorageModeLocal, StorageModeMemory:
	case StorageModeS3:
		s3 := c.Storage.S3
		if s3.BucketName == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return fmt.Errorf("missing required S3 configuration: S3_BUCKET_NAME, S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY")
		}
	default:
		return fmt.Errorf("unsupported storage mode: %s (supported: local, s3, memory)", c.Storage.Mode)
	}
	if c.JWTSecretKey == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.DraftTTL <= 0 {
		return fmt.Errorf("DRAFT_TTL must be positive")
	}
	return nil
}

// GetEnvOrDefault возвращает значение переменной окружения или значение по умолчанию
func GetEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
