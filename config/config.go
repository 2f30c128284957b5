package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/Gobusters/ectoenv"
	migerrors "github.com/Greenstand/domain-migration-scripts/pkg/errors"
	"github.com/joho/godotenv"
)

const (
	OnRecordErrorContinue = "continue"
	OnRecordErrorAbort    = "abort"
)

type Config struct {
	AppName            string `env:"APP_NAME" env-default:"domain-migration" validate:"required"`
	LogLevel           string `env:"LOG_LEVEL" env-default:"info" validate:"oneof=debug info warn error"`
	PrettyLogs         bool   `env:"PRETTY_LOGS" env-default:"false"`
	Debug              bool   `env:"DEBUG" env-default:"false"`
	NodeLogLevel       string `env:"NODE_LOG_LEVEL"`
	StartupMaxAttempts int    `env:"STARTUP_MAX_ATTEMPTS" env-default:"5" validate:"min=1"`

	// Connection string; the scheme must be postgres:// or postgresql://
	DatabaseURL string `env:"DATABASE_URL" validate:"required,postgres_url"`
	// The streaming read and the record transaction each hold a connection
	DatabaseMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10" validate:"min=2"`
	DatabaseMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5" validate:"min=0"`
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`

	// Schema migrations applied by the schema command
	DatabaseMigrationFolderPath   string `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	DatabaseMigrationVersion      int    `env:"DB_MIGRATION_VERSION" env-default:"0" validate:"min=0"`
	DatabaseMigrationForce        int    `env:"DB_MIGRATION_FORCE" env-default:"0"`
	DatabaseMigrationAutoRollback bool   `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	Migration MigrationConfig
	Admin     AdminConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
	Tracing   TracingConfig
}

type MigrationConfig struct {
	// continue: log and skip a failed record. abort: stop the run on the first failure
	OnRecordError string `env:"ON_RECORD_ERROR" env-default:"continue" validate:"oneof=continue abort"`
	// Upper bound on rows per run, 0 for none
	BatchLimit int   `env:"MIGRATION_BATCH_LIMIT" env-default:"0" validate:"min=0"`
	ExcludeIDs []int `env:"MIGRATION_EXCLUDE_IDS"`
	// Placeholder device configuration for legacy trees, which predate device tracking
	LegacyDeviceConfigurationID string `env:"LEGACY_DEVICE_CONFIGURATION_ID" env-default:"3cd6ff18-b0a7-41f2-bda2-f73daf1d6674" validate:"uuid"`
	ProgressLogEveryPercent     int    `env:"PROGRESS_LOG_EVERY_PERCENT" env-default:"1" validate:"min=1,max=100"`
	// Optional YAML file overriding source and target table names
	TablesFile string `env:"TABLES_FILE"`
}

type AdminConfig struct {
	// 0 disables the admin server
	Port int `env:"ADMIN_PORT" env-default:"0" validate:"min=0,max=65535"`
}

type KafkaConfig struct {
	Enabled        bool     `env:"KAFKA_ENABLED" env-default:"false"`
	Brokers        []string `env:"KAFKA_BROKERS" env-default:"localhost:9092" validate:"required_if=Enabled true"`
	Topic          string   `env:"KAFKA_TOPIC" env-default:"migration-events" validate:"required_if=Enabled true"`
	Compression    string   `env:"KAFKA_COMPRESSION" env-default:"snappy" validate:"omitempty,oneof=none gzip snappy lz4 zstd"`
	BatchSize      int      `env:"KAFKA_BATCH_SIZE" env-default:"100" validate:"min=1"`
	BatchTimeoutMs int      `env:"KAFKA_BATCH_TIMEOUT_MS" env-default:"100" validate:"min=0"`
	RequiredAcks   int      `env:"KAFKA_REQUIRED_ACKS" env-default:"1" validate:"oneof=-1 0 1"`
}

type RedisConfig struct {
	Enabled  bool          `env:"REDIS_ENABLED" env-default:"false"`
	Host     string        `env:"REDIS_HOST" env-default:"localhost" validate:"required_if=Enabled true"`
	Port     int           `env:"REDIS_PORT" env-default:"6379" validate:"min=1,max=65535"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" env-default:"0" validate:"min=0"`
	LockTTL  time.Duration `env:"RUN_LOCK_TTL" env-default:"2m" validate:"min=1s"`
}

type TracingConfig struct {
	Enabled  bool   `env:"TRACING_ENABLED" env-default:"false"`
	Endpoint string `env:"OTLP_ENDPOINT" env-default:"localhost:4317" validate:"required_if=Enabled true"`
	Protocol string `env:"OTLP_PROTOCOL" env-default:"grpc" validate:"oneof=grpc http"`
	Insecure bool   `env:"OTLP_INSECURE" env-default:"true"`
}

// Load reads an optional .env file, binds the environment and validates the
// result. Every failure is a SetupError.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, migerrors.NewSetupError("config", err)
	}

	cfg := &Config{}
	if err := ectoenv.BindEnv(cfg); err != nil {
		return nil, migerrors.NewSetupError("config", err)
	}

	if cfg.NodeLogLevel == "debug" {
		cfg.Debug = true
	}

	if err := Validate(cfg); err != nil {
		return nil, migerrors.NewSetupError("config", err)
	}

	return cfg, nil
}

func (c *Config) AbortOnRecordError() bool {
	return c.Migration.OnRecordError == OnRecordErrorAbort
}
