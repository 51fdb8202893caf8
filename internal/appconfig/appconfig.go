package appconfig

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment override, e.g. HUSH_STORAGE_DRIVER.
const EnvPrefix = "HUSH"

// Config holds all configuration details
type Config struct {
	Host          string        `yaml:"host" envconfig:"HOST"`
	Port          int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	BasePath      string        `yaml:"basePath" envconfig:"BASE_PATH" validate:"required,startswith=/"`
	AllowedOrigin string        `yaml:"allowedOrigin" envconfig:"ALLOWED_ORIGIN"`
	LogLevel      string        `yaml:"logLevel" envconfig:"LOG_LEVEL"`
	Storage       StorageConfig `yaml:"storage"`
	Auth          AuthConfig    `yaml:"auth"`
	Valkey        ValkeyConfig  `yaml:"valkey"`
	Invite        InviteConfig  `yaml:"invite"`
}

// StorageConfig selects the group and message store
type StorageConfig struct {
	Driver        string `yaml:"driver" envconfig:"DRIVER" validate:"oneof=memory postgres mongo"`
	PostgresDSN   string `yaml:"postgresDSN" envconfig:"POSTGRES_DSN" validate:"required_if=Driver postgres"`
	MongoURI      string `yaml:"mongoURI" envconfig:"MONGO_URI" validate:"required_if=Driver mongo"`
	MongoDatabase string `yaml:"mongoDatabase" envconfig:"MONGO_DATABASE" validate:"required_if=Driver mongo"`
}

// AuthConfig holds the key bearer tokens are verified with
type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret" envconfig:"JWT_SECRET" validate:"required"`
}

// ValkeyConfig enables cross-instance inbox notifications when Addr is set
type ValkeyConfig struct {
	Addr string `yaml:"addr" envconfig:"ADDR"`
}

type InviteConfig struct {
	MaxAttempts int `yaml:"maxAttempts" envconfig:"MAX_ATTEMPTS" validate:"min=1"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Host:          "0.0.0.0",
		Port:          8080,
		BasePath:      "/api/v1",
		AllowedOrigin: "http://127.0.0.1:5173",
		LogLevel:      "warn",
		Storage: StorageConfig{
			Driver:        "memory",
			MongoDatabase: "hushgroup",
		},
		Invite: InviteConfig{MaxAttempts: 5},
	}
}

// LoadConfig builds the configuration from defaults, the optional YAML file at
// path and HUSH_* environment variables, in that order. A .env file in the
// working directory is loaded into the environment first if present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
