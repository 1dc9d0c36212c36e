package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// EnvRPCToken overrides RPCAuthToken when set.
const EnvRPCToken = "CREATORFUND_RPC_TOKEN"

type Config struct {
	RPCAddress     string    `toml:"RPCAddress"`
	DataDir        string    `toml:"DataDir"`
	StorageBackend string    `toml:"StorageBackend"`
	GenesisFile    string    `toml:"GenesisFile"`
	Environment    string    `toml:"Environment"`
	LogFile        string    `toml:"LogFile"`
	LogLevel       string    `toml:"LogLevel"`
	RPCAuthToken   string    `toml:"RPCAuthToken"`
	RPCRateLimit   float64   `toml:"RPCRateLimit"`
	RPCRateBurst   int       `toml:"RPCRateBurst"`
	Telemetry      Telemetry `toml:"telemetry"`
}

// Load loads the configuration from the given path, writing a default file
// first when none exists.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg, err = createDefault(path)
		if err != nil {
			return nil, err
		}
	} else {
		meta, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("config file %s: unknown key %s", path, undecoded[0])
		}
	}

	if token := strings.TrimSpace(os.Getenv(EnvRPCToken)); token != "" {
		cfg.RPCAuthToken = token
	}
	cfg.applyDefaults()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns the configuration written for a fresh node.
func Default() *Config {
	cfg := &Config{
		RPCAddress:     "127.0.0.1:8899",
		DataDir:        "./creatorfund-data",
		StorageBackend: BackendLevelDB,
		GenesisFile:    "",
		Environment:    "dev",
		LogLevel:       "info",
	}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.StorageBackend) == "" {
		c.StorageBackend = BackendLevelDB
	}
	c.StorageBackend = strings.ToLower(strings.TrimSpace(c.StorageBackend))
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = "dev"
	}
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = "info"
	}
	if c.RPCRateLimit == 0 {
		c.RPCRateLimit = DefaultRPCRateLimit
	}
	if c.RPCRateBurst == 0 {
		c.RPCRateBurst = DefaultRPCRateBurst
	}
	if strings.TrimSpace(c.Telemetry.ServiceName) == "" {
		c.Telemetry.ServiceName = "creatorfundd"
	}
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	cfg := Default()
	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
