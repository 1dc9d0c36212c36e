package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
)

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageBackend != BackendLevelDB || cfg.RPCAddress == "" || cfg.DataDir == "" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	var persisted Config
	if _, err := toml.DecodeFile(path, &persisted); err != nil {
		t.Fatalf("decode persisted: %v", err)
	}
	if persisted.RPCAddress != cfg.RPCAddress {
		t.Fatalf("persisted RPCAddress %q, loaded %q", persisted.RPCAddress, cfg.RPCAddress)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.RPCRateBurst != DefaultRPCRateBurst {
		t.Fatalf("reload lost defaults: %+v", again)
	}
}

func TestLoadParsesSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `RPCAddress = "0.0.0.0:9000"
DataDir = "./data"
StorageBackend = "Bolt"
GenesisFile = "genesis.yaml"
Environment = "prod"
LogFile = "/var/log/creatorfundd.log"
LogLevel = "debug"
RPCAuthToken = "from-file"
RPCRateLimit = 5.5
RPCRateBurst = 11

[telemetry]
Endpoint = "otel-collector:4318"
Insecure = true
Traces = true
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.StorageBackend != BackendBolt {
		t.Fatalf("backend not normalized: %q", cfg.StorageBackend)
	}
	if cfg.GenesisFile != "genesis.yaml" || cfg.Environment != "prod" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.RPCRateLimit != 5.5 || cfg.RPCRateBurst != 11 || cfg.RPCAuthToken != "from-file" {
		t.Fatalf("unexpected rpc settings %+v", cfg)
	}
	if !cfg.Telemetry.Enabled() || !cfg.Telemetry.Insecure || cfg.Telemetry.Metrics {
		t.Fatalf("unexpected telemetry %+v", cfg.Telemetry)
	}
	if cfg.Telemetry.ServiceName != "creatorfundd" {
		t.Fatalf("service name default not applied: %q", cfg.Telemetry.ServiceName)
	}
}

func TestLoadTokenFromEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("RPCAddress = \":1\"\nStorageBackend = \"memory\"\nRPCAuthToken = \"file\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvRPCToken, "from-env")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.RPCAuthToken != "from-env" {
		t.Fatalf("env token not applied: %q", cfg.RPCAuthToken)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "RPCAddress = \":1\"\nBogus = 1\n",
		"unknown backend":   "RPCAddress = \":1\"\nStorageBackend = \"rocks\"\n",
		"bad level":         "RPCAddress = \":1\"\nStorageBackend = \"memory\"\nLogLevel = \"loud\"\n",
		"negative burst":    "RPCAddress = \":1\"\nStorageBackend = \"memory\"\nRPCRateBurst = -1\n",
		"exporter endpoint": "RPCAddress = \":1\"\nStorageBackend = \"memory\"\n[telemetry]\nTraces = true\n",
		"missing data dir":  "RPCAddress = \":1\"\nStorageBackend = \"leveldb\"\n",
	}
	for name, contents := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatalf("expected %s to be rejected", name)
			}
			if name == "unknown key" && !strings.Contains(err.Error(), "Bogus") {
				t.Fatalf("error does not name the key: %v", err)
			}
		})
	}
}
