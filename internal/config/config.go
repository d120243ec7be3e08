package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings shared by the collector and the enforcer
type Config struct {
	Region   string `yaml:"region" validate:"required"`
	Bucket   string `yaml:"bucket" validate:"required"`
	TopicARN string `yaml:"topicArn" validate:"omitempty,startswith=arn:"`

	// Days a volume must stay unattached before deletion, and days a
	// pre-deletion snapshot is retained
	RetentionDays int `yaml:"retentionDays" validate:"min=1,max=3650"`

	UnattachedTagKey string `yaml:"unattachedTagKey" validate:"required"`
	DoNotDeleteValue string `yaml:"doNotDeleteValue" validate:"required"`
	SnapshotMarker   string `yaml:"snapshotMarker" validate:"required"`
	ManagedByValue   string `yaml:"managedByValue" validate:"required"`

	LegacyDescriptionMatch bool `yaml:"legacyDescriptionMatch"`
	RevalidateBeforeDelete bool `yaml:"revalidateBeforeDelete"`
	EstimateSavings        bool `yaml:"estimateSavings"`
	DryRun                 bool `yaml:"dryRun"`

	LogLevel  string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	LogFormat string `yaml:"logFormat" validate:"oneof=json logfmt terminal"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Region:                 "us-east-1",
		RetentionDays:          15,
		UnattachedTagKey:       "UnattachedSince",
		DoNotDeleteValue:       "do-not-delete",
		SnapshotMarker:         "Snapshot before deleting Volume",
		ManagedByValue:         "volreaper",
		LegacyDescriptionMatch: true,
		RevalidateBeforeDelete: true,
		EstimateSavings:        true,
		LogLevel:               "info",
		LogFormat:              "json",
	}
}

// Load builds the configuration from defaults, an optional YAML file at path
// and the environment (including a .env file if present), in that order.
func Load(path string) (*Config, error) {
	// Try to load .env file (fail silently if not present)
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read the config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse the config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Region = getEnv("VOLREAPER_REGION", getEnv("AWS_REGION", c.Region))
	c.Bucket = getEnv("VOLREAPER_BUCKET", getEnv("S3_BUCKET", c.Bucket))
	c.TopicARN = getEnv("VOLREAPER_TOPIC_ARN", getEnv("SNS_TOPIC_ARN", c.TopicARN))
	c.RetentionDays = getEnvInt("VOLREAPER_RETENTION_DAYS", c.RetentionDays)
	c.DoNotDeleteValue = getEnv("VOLREAPER_DO_NOT_DELETE_VALUE", c.DoNotDeleteValue)
	c.LegacyDescriptionMatch = getEnvBool("VOLREAPER_LEGACY_DESCRIPTION_MATCH", c.LegacyDescriptionMatch)
	c.RevalidateBeforeDelete = getEnvBool("VOLREAPER_REVALIDATE", c.RevalidateBeforeDelete)
	c.EstimateSavings = getEnvBool("VOLREAPER_ESTIMATE_SAVINGS", c.EstimateSavings)
	c.DryRun = getEnvBool("VOLREAPER_DRY_RUN", c.DryRun)
	c.LogLevel = getEnv("VOLREAPER_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("VOLREAPER_LOG_FORMAT", c.LogFormat)
}

// Validate checks the configuration for the collector
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateForEnforce additionally requires a topic unless running dry
func (c *Config) ValidateForEnforce() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TopicARN == "" && !c.DryRun {
		return fmt.Errorf("invalid configuration: topic ARN is required unless dry run is enabled")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
