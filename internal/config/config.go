package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Providers file: carrier catalogs, default session connect params
	// and instrumentation toggles, per provider.
	ProvidersFile string `envconfig:"PROVIDERS_FILE" default:"providers.yaml"`

	// Shippo
	ShippoAPIToken string `envconfig:"SHIPPO_API_TOKEN"`
	ShippoBaseURL  string `envconfig:"SHIPPO_BASE_URL" default:"https://api.goshippo.com"`
	ShippoEnabled  bool   `envconfig:"SHIPPO_ENABLED" default:"true"`
	ShippoUseMock  bool   `envconfig:"SHIPPO_USE_MOCK" default:"false"`

	// Mock provider, for local development without credentials.
	MockEnabled bool `envconfig:"MOCK_ENABLED" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:""`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"parcelbridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.1.0"`
}

// Load reads configuration from a .env file (when present) and the
// environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// LoadProviders reads the provider configuration tree from the
// configured YAML file. A missing file yields an empty tree; provider
// systems are then left unconfigured rather than failing startup.
func (c *Config) LoadProviders() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(c.ProvidersFile)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return v, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("reading providers file %s: %w", c.ProvidersFile, err)
	}
	return v, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("shippo.enabled", c.ShippoEnabled),
		attribute.Bool("mock.enabled", c.MockEnabled),
	}
}
