package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NeuralTrust/SafeChat/pkg/domain"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Log        LogConfig        `mapstructure:"log"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Safety     SafetyConfig     `mapstructure:"safety"`
	Generation GenerationConfig `mapstructure:"generation"`
	Audit      AuditConfig      `mapstructure:"audit"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	MetricsPort  int           `mapstructure:"metrics_port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	BodyLimit    int           `mapstructure:"body_limit"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

type MetricsConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	EnableLatency bool `mapstructure:"enable_latency"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	Path         string `mapstructure:"path"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TLS      bool   `mapstructure:"tls"`
	// TLSInsecure disables certificate verification when TLS is on.
	TLSInsecure bool `mapstructure:"tls_insecure"`
}

type SafetyConfig struct {
	CatalogPath             string        `mapstructure:"catalog_path"`
	OutputBlockSeverity     string        `mapstructure:"output_block_severity"`
	NotificationDedupWindow time.Duration `mapstructure:"notification_dedup_window"`
	NotificationChannel     string        `mapstructure:"notification_channel"`
}

type GenerationConfig struct {
	// Provider is one of openai, anthropic, gemini, azure, bedrock, compat. Empty disables
	// the generative backend.
	Provider           string        `mapstructure:"provider"`
	Model              string        `mapstructure:"model"`
	APIKey             string        `mapstructure:"api_key"`
	BaseURL            string        `mapstructure:"base_url"`
	MaxTokens          int           `mapstructure:"max_tokens"`
	Temperature        float64       `mapstructure:"temperature"`
	Timeout            time.Duration `mapstructure:"timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout"`
	Azure              AzureConfig   `mapstructure:"azure"`
	AWS                AWSConfig     `mapstructure:"aws"`
}

type AzureConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIVersion  string `mapstructure:"api_version"`
	UseIdentity bool   `mapstructure:"use_identity"`
}

type AWSConfig struct {
	Region       string `mapstructure:"region"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	SessionToken string `mapstructure:"session_token"`
	UseRole      bool   `mapstructure:"use_role"`
	RoleARN      string `mapstructure:"role_arn"`
}

type AuditConfig struct {
	Workers      int           `mapstructure:"workers"`
	QueueSize    int           `mapstructure:"queue_size"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

var globalConfig Config

// ErrConfigFileNotFound is returned alongside a usable Config built from defaults and
// the environment.
var ErrConfigFileNotFound = errors.New("config file not found, using defaults and environment variables")

func Load(configPath string) error {
	cfg, err := load(configPath)
	if cfg != nil {
		globalConfig = *cfg
	}
	return err
}

func load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaultValues(v)

	var notFound error
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, domain.NewConfigurationError("config.yaml", err)
		}
		notFound = ErrConfigFileNotFound
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, domain.NewConfigurationError("config.yaml", fmt.Errorf("failed to unmarshal config: %w", err))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, notFound
}

func setDefaultValues(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.body_limit", 64*1024)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.enable_latency", true)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "safechat.log")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "safechat")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "")
	v.SetDefault("database.max_open_conns", 50)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.tls", false)
	v.SetDefault("redis.tls_insecure", false)

	v.SetDefault("safety.catalog_path", "")
	v.SetDefault("safety.output_block_severity", "medium")
	v.SetDefault("safety.notification_dedup_window", 10*time.Minute)
	v.SetDefault("safety.notification_channel", "guardian:notifications")

	v.SetDefault("generation.provider", "")
	v.SetDefault("generation.model", "")
	v.SetDefault("generation.api_key", "")
	v.SetDefault("generation.base_url", "")
	v.SetDefault("generation.max_tokens", 256)
	v.SetDefault("generation.temperature", 0.7)
	v.SetDefault("generation.timeout", 10*time.Second)
	v.SetDefault("generation.breaker_max_failures", 5)
	v.SetDefault("generation.breaker_open_timeout", 30*time.Second)
	v.SetDefault("generation.azure.endpoint", "")
	v.SetDefault("generation.azure.api_version", "2024-10-21")
	v.SetDefault("generation.azure.use_identity", false)
	v.SetDefault("generation.aws.region", "us-east-1")
	v.SetDefault("generation.aws.access_key", "")
	v.SetDefault("generation.aws.secret_key", "")
	v.SetDefault("generation.aws.session_token", "")
	v.SetDefault("generation.aws.use_role", false)
	v.SetDefault("generation.aws.role_arn", "")

	v.SetDefault("audit.workers", 4)
	v.SetDefault("audit.queue_size", 1000)
	v.SetDefault("audit.write_timeout", 5*time.Second)
}

func (c *Config) Validate() error {
	var problems []string
	if c.Server.Port <= 0 {
		problems = append(problems, "server.port must be positive")
	}
	switch c.Database.Driver {
	case "postgres":
	case "sqlite":
		if c.Database.Path == "" {
			problems = append(problems, "database.path is required for sqlite")
		}
	default:
		problems = append(problems, fmt.Sprintf("database.driver %q is not supported", c.Database.Driver))
	}
	switch strings.ToLower(c.Safety.OutputBlockSeverity) {
	case "low", "medium", "high":
	default:
		problems = append(problems, fmt.Sprintf("safety.output_block_severity %q is not a severity", c.Safety.OutputBlockSeverity))
	}
	if c.Generation.Timeout <= 0 {
		problems = append(problems, "generation.timeout must be positive")
	}
	if c.Audit.Workers <= 0 {
		problems = append(problems, "audit.workers must be positive")
	}
	if c.Audit.QueueSize <= 0 {
		problems = append(problems, "audit.queue_size must be positive")
	}
	if len(problems) > 0 {
		return domain.NewConfigurationError("config", errors.New(strings.Join(problems, "; ")))
	}
	return nil
}

func GetConfig() *Config {
	return &globalConfig
}
