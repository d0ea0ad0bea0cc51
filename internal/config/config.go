// Package config loads the color-service runtime configuration from the
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	apperrors "github.com/otherjamesbrown/color-service/internal/errors"
)

// HTTPPort is the fixed port the service listens on.
const HTTPPort = 3000

// Config represents the runtime configuration for color-service.
//
// HOSTNAME and NAMESPACE are not part of Config: they are resolved on every
// request by internal/identity.
type Config struct {
	ServiceName string `envconfig:"SERVICE_NAME" default:"color-service"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogOutput   string `envconfig:"LOG_OUTPUT" default:"stdout"`

	// HTTP server timeouts
	RequestTimeout    time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	ReadHeaderTimeout time.Duration `envconfig:"READ_HEADER_TIMEOUT" default:"2s"`
	ReadTimeout       time.Duration `envconfig:"READ_TIMEOUT" default:"5s"`
	WriteTimeout      time.Duration `envconfig:"WRITE_TIMEOUT" default:"10s"`
	IdleTimeout       time.Duration `envconfig:"IDLE_TIMEOUT" default:"60s"`

	// Telemetry. An empty endpoint disables trace export.
	TelemetryEndpoint string            `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	TelemetryProtocol string            `envconfig:"OTEL_EXPORTER_OTLP_PROTOCOL" default:"grpc"`
	TelemetryInsecure bool              `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	TelemetryHeaders  map[string]string `envconfig:"OTEL_EXPORTER_OTLP_HEADERS"`
}

// Address returns the listen address for the fixed port on all interfaces.
func (c *Config) Address() string {
	return fmt.Sprintf("0.0.0.0:%d", HTTPPort)
}

// TelemetryEnabled reports whether an OTLP endpoint was configured.
func (c *Config) TelemetryEnabled() bool {
	return strings.TrimSpace(c.TelemetryEndpoint) != ""
}

// Load reads environment variables into Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "process env", apperrors.WithCause(err))
	}
	cfg.TelemetryProtocol = strings.ToLower(strings.TrimSpace(cfg.TelemetryProtocol))
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.ServiceName) == "" {
		return apperrors.New(apperrors.CodeConfigInvalid, "SERVICE_NAME must be provided")
	}
	if cfg.TelemetryProtocol != "grpc" && cfg.TelemetryProtocol != "http" {
		return apperrors.New(apperrors.CodeConfigInvalid,
			fmt.Sprintf("unsupported OTLP protocol %q", cfg.TelemetryProtocol))
	}
	for name, d := range map[string]time.Duration{
		"REQUEST_TIMEOUT":     cfg.RequestTimeout,
		"READ_HEADER_TIMEOUT": cfg.ReadHeaderTimeout,
		"READ_TIMEOUT":        cfg.ReadTimeout,
		"WRITE_TIMEOUT":       cfg.WriteTimeout,
		"IDLE_TIMEOUT":        cfg.IdleTimeout,
	} {
		if d <= 0 {
			return apperrors.New(apperrors.CodeConfigInvalid, fmt.Sprintf("%s must be positive", name))
		}
	}
	return nil
}
