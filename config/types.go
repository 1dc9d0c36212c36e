package config

const (
	BackendLevelDB = "leveldb"
	BackendBolt    = "bolt"
	BackendMemory  = "memory"

	DefaultRPCRateLimit = 20.0
	DefaultRPCRateBurst = 40
)

// Telemetry configures the OTLP exporters. Export is off unless Endpoint is
// set and at least one of Traces or Metrics is enabled.
type Telemetry struct {
	ServiceName string            `toml:"ServiceName"`
	Endpoint    string            `toml:"Endpoint"`
	Insecure    bool              `toml:"Insecure"`
	Traces      bool              `toml:"Traces"`
	Metrics     bool              `toml:"Metrics"`
	Headers     map[string]string `toml:"Headers,omitempty"`
}

// Enabled reports whether any exporter should be started.
func (t Telemetry) Enabled() bool {
	return t.Endpoint != "" && (t.Traces || t.Metrics)
}
