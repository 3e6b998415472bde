package config

import "fmt"

// ObservabilityConfig controls the optional New Relic integration. The agent
// stays disabled when no license key is provided.
type ObservabilityConfig struct {
	LicenseKey  string `koanf:"license_key"`
	ServiceName string `koanf:"service_name"`
	Environment string `koanf:"environment"`
}

// DefaultObservabilityConfig returns a disabled configuration.
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{}
}

// Enabled reports whether an agent should be started.
func (o *ObservabilityConfig) Enabled() bool {
	return o != nil && o.LicenseKey != ""
}

// Validate checks internal consistency.
func (o *ObservabilityConfig) Validate() error {
	if o.Enabled() && o.ServiceName == "" {
		return fmt.Errorf("observability enabled without a service name")
	}
	return nil
}
