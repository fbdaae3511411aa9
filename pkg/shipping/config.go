package shipping

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// ProviderConfig is the declarative configuration of one shipping system:
// its carrier catalog, default session connection parameters and the
// instrumentation toggle.
type ProviderConfig struct {
	Instrumentation bool                `mapstructure:"instrumentation"`
	ConnectParams   ConnectParamsConfig `mapstructure:"default-session-connect-params"`
	Carriers        []CarrierConfig     `mapstructure:"carriers" validate:"unique=Name,dive"`
}

// ConnectParamsConfig holds default session connection parameters.
type ConnectParamsConfig struct {
	APIToken       string `mapstructure:"api-token"`
	BaseURL        string `mapstructure:"base-url"`
	TimeoutSeconds int    `mapstructure:"timeout-seconds"`
}

// CarrierConfig declares one carrier with its nested service and package
// collections. Service and package names must be unique within the
// carrier, carrier names unique within the provider.
type CarrierConfig struct {
	Type           string            `mapstructure:"type" validate:"required,oneof=usps fedex ups dhl_express"`
	Name           string            `mapstructure:"name" validate:"required"`
	LocalizedNames map[string]string `mapstructure:"localized-names"`
	TrackingURL    string            `mapstructure:"tracking-url"`
	Services       []ServiceConfig   `mapstructure:"services" validate:"unique=Name,dive"`
	Packages       []PackageConfig   `mapstructure:"packages" validate:"unique=Name,dive"`
}

// ServiceConfig declares one carrier service tier.
type ServiceConfig struct {
	Name             string `mapstructure:"name" validate:"required"`
	PriceCategory    string `mapstructure:"price-category" validate:"omitempty,oneof=economy standard premium"`
	IncludesSaturday bool   `mapstructure:"includes-saturday"`
	IncludesSunday   bool   `mapstructure:"includes-sunday"`
	Trackable        bool   `mapstructure:"trackable"`
	Insurable        bool   `mapstructure:"insurable"`
}

// PackageConfig declares one carrier packaging template.
type PackageConfig struct {
	Name          string  `mapstructure:"name" validate:"required"`
	Type          string  `mapstructure:"type" validate:"omitempty,oneof=box envelope tube soft_pack"`
	Length        float64 `mapstructure:"length"`
	Width         float64 `mapstructure:"width"`
	Height        float64 `mapstructure:"height"`
	DimensionUnit string  `mapstructure:"dimension-unit" validate:"omitempty,oneof=cm in ft mm m yd"`
	Weight        float64 `mapstructure:"weight"`
	WeightUnit    string  `mapstructure:"weight-unit" validate:"omitempty,oneof=g oz lb kg"`
}

// Params converts the configured defaults into runtime connection
// parameters, clamping the timeout to zero-or-positive.
func (c ConnectParamsConfig) Params() ConnectParams {
	timeout := c.TimeoutSeconds
	if timeout < 0 {
		timeout = 0
	}
	return ConnectParams{
		APIToken: c.APIToken,
		BaseURL:  c.BaseURL,
		Timeout:  time.Duration(timeout) * time.Second,
	}
}

// ResolveProviderSection walks the configuration tree for the shipping
// processing section, then the provider sub-section named after the
// system, falling back to an unnamed "provider" section. Returns nil when
// nothing matches; the system is then left unconfigured with no catalog.
func ResolveProviderSection(v *viper.Viper, systemName string) *viper.Viper {
	if v == nil {
		return nil
	}
	root := v.Sub("shipping")
	if root == nil {
		return nil
	}
	if section := root.Sub("providers." + strings.ToLower(systemName)); section != nil {
		return section
	}
	return root.Sub("provider")
}

// LoadProviderConfig binds and validates a resolved provider section.
func LoadProviderConfig(section *viper.Viper) (*ProviderConfig, error) {
	var cfg ProviderConfig
	if err := section.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("binding provider config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid provider config: %w", err)
	}
	return &cfg, nil
}
