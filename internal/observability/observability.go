// Package observability wires the optional New Relic agent.
package observability

import (
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/crashgate-io/crashgate/internal/config"
)

// NewApplication starts a New Relic application for cfg, or returns nil when
// observability is disabled. Callers must treat a nil application as "off".
func NewApplication(cfg *config.ObservabilityConfig) (*newrelic.Application, error) {
	if !cfg.Enabled() {
		return nil, nil
	}
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		func(c *newrelic.Config) {
			c.Labels = map[string]string{"environment": cfg.Environment}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("new relic application: %w", err)
	}
	return app, nil
}
