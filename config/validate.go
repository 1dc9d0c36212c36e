package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]struct{}{"debug": {}, "info": {}, "warn": {}, "error": {}}

// Validate checks a loaded configuration for values the node cannot run with.
func Validate(c *Config) error {
	if c == nil {
		return fmt.Errorf("config: nil")
	}
	if strings.TrimSpace(c.RPCAddress) == "" {
		return fmt.Errorf("rpc: RPCAddress is required")
	}
	switch c.StorageBackend {
	case BackendLevelDB, BackendBolt:
		if strings.TrimSpace(c.DataDir) == "" {
			return fmt.Errorf("storage: DataDir is required for %s", c.StorageBackend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage: unknown StorageBackend %q", c.StorageBackend)
	}
	if _, ok := validLogLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("logging: unknown LogLevel %q", c.LogLevel)
	}
	if c.RPCRateLimit < 0 || c.RPCRateBurst < 0 {
		return fmt.Errorf("rpc: rate limit and burst must not be negative")
	}
	if (c.Telemetry.Traces || c.Telemetry.Metrics) && strings.TrimSpace(c.Telemetry.Endpoint) == "" {
		return fmt.Errorf("telemetry: Endpoint is required when exporters are enabled")
	}
	return nil
}
