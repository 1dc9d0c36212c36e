package main

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creatorfund/config"
	"creatorfund/core/events"
	"creatorfund/core/genesis"
	"creatorfund/core/state"
	"creatorfund/core/types"
	"creatorfund/crypto"
	"creatorfund/storage"
)

func testAddr(b byte) crypto.Address {
	return crypto.NewAddress(bytes.Repeat([]byte{b}, crypto.AddressLength))
}

func writeGenesis(t *testing.T, supply string) string {
	t.Helper()
	doc := `mints:
  - address: ` + testAddr(0x10).String() + `
    decimals: 9
    supply: ` + supply + `
creatorWallets:
  - creator: ` + testAddr(0x01).String() + `
    mint: ` + testAddr(0x10).String() + `
    vaultTokenAccount: ` + testAddr(0x30).String() + `
`
	path := filepath.Join(t.TempDir(), "genesis.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write genesis: %v", err)
	}
	return path
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnsureGenesisAppliesOnce(t *testing.T) {
	mgr := state.NewManager(storage.NewMemDB())
	path := writeGenesis(t, "1000")
	if err := ensureGenesis(mgr, path, quietLogger()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	if ok, _ := mgr.Exists(testAddr(0x10)); !ok {
		t.Fatalf("mint not provisioned")
	}
	if err := ensureGenesis(mgr, path, quietLogger()); err != nil {
		t.Fatalf("restart with the same genesis: %v", err)
	}
	other := writeGenesis(t, "2000")
	if err := ensureGenesis(mgr, other, quietLogger()); !errors.Is(err, errGenesisMismatch) {
		t.Fatalf("expected genesis mismatch, got %v", err)
	}
	if err := ensureGenesis(mgr, "", quietLogger()); err != nil {
		t.Fatalf("restart without genesis: %v", err)
	}
	if digest, _ := mgr.Meta(genesis.MetaDigest); digest == nil {
		t.Fatalf("digest not recorded")
	}
}

func TestOpenDatabaseBackends(t *testing.T) {
	for _, backend := range []string{config.BackendMemory, config.BackendBolt, config.BackendLevelDB} {
		cfg := config.Default()
		cfg.StorageBackend = backend
		cfg.DataDir = filepath.Join(t.TempDir(), backend)
		db, err := openDatabase(cfg)
		if err != nil {
			t.Fatalf("%s: %v", backend, err)
		}
		if err := db.Put([]byte("k"), []byte("v")); err != nil {
			t.Fatalf("%s put: %v", backend, err)
		}
		db.Close()
	}
	cfg := config.Default()
	cfg.StorageBackend = "cassandra"
	if _, err := openDatabase(cfg); err == nil {
		t.Fatalf("expected unknown backend to fail")
	}
}

func TestTelemetryConfigDefaults(t *testing.T) {
	cfg := config.Default()
	tc := telemetryConfig(cfg)
	if tc.ServiceName != serviceName || tc.Traces || tc.Metrics {
		t.Fatalf("unexpected telemetry config %+v", tc)
	}
	cfg.Telemetry.Traces = true
	if telemetryConfig(cfg).Traces {
		t.Fatalf("traces enabled without an endpoint")
	}
	cfg.Telemetry.Endpoint = "collector:4318"
	if !telemetryConfig(cfg).Traces {
		t.Fatalf("traces not enabled with an endpoint")
	}
}

func TestEventLoggerWritesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	eventLogger{logger: logger}.Emit(events.Wrap(&types.Event{
		Type:       "creatorfund.post.created",
		Attributes: map[string]string{"title": "hello"},
	}))
	out := buf.String()
	if !strings.Contains(out, `"type":"creatorfund.post.created"`) || !strings.Contains(out, `"title":"hello"`) {
		t.Fatalf("unexpected log line %s", out)
	}
}
