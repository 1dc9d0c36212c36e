package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"creatorfund/config"
	"creatorfund/core/events"
	"creatorfund/core/genesis"
	"creatorfund/core/runtime"
	"creatorfund/core/state"
	"creatorfund/native/creatorfund"
	"creatorfund/observability/logging"
	"creatorfund/observability/metrics"
	telemetry "creatorfund/observability/otel"
	"creatorfund/rpc"
	"creatorfund/storage"
)

const serviceName = "creatorfundd"

var errGenesisMismatch = errors.New("stored genesis digest does not match genesis file")

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	genesisFlag := flag.String("genesis", "", "Path to a genesis YAML file (overrides config GenesisFile)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.SetupWithOptions(serviceName, cfg.Environment, logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, strings.TrimSpace(*genesisFlag), logger); err != nil {
		logger.Error("creatorfundd stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, genesisOverride string, logger *slog.Logger) error {
	shutdown, err := telemetry.Init(ctx, telemetryConfig(cfg))
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	db, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	manager := state.NewManager(db)
	genesisPath := cfg.GenesisFile
	if genesisOverride != "" {
		genesisPath = genesisOverride
	}
	if err := ensureGenesis(manager, genesisPath, logger); err != nil {
		return err
	}

	rt := runtime.New(manager)
	rt.SetLogger(logger.With(slog.String("component", "runtime")))
	rt.SetEmitter(events.Fanout{metrics.EventCounter{}, eventLogger{logger: logger}})
	engine := creatorfund.NewEngine(rt)

	server := rpc.NewServer(engine, manager, rpc.ServerConfig{
		AuthToken: cfg.RPCAuthToken,
		RateLimit: cfg.RPCRateLimit,
		RateBurst: cfg.RPCRateBurst,
		Logger:    logger.With(slog.String("component", "rpc")),
	})
	listener, err := net.Listen("tcp", cfg.RPCAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.RPCAddress, err)
	}
	if cfg.RPCAuthToken == "" {
		logger.Warn("no RPC auth token configured; mutating calls will be refused")
	}
	return server.Serve(ctx, listener)
}

func telemetryConfig(cfg *config.Config) telemetry.Config {
	name := cfg.Telemetry.ServiceName
	if name == "" {
		name = serviceName
	}
	return telemetry.Config{
		ServiceName: name,
		Environment: cfg.Environment,
		Endpoint:    cfg.Telemetry.Endpoint,
		Insecure:    cfg.Telemetry.Insecure,
		Headers:     cfg.Telemetry.Headers,
		Traces:      cfg.Telemetry.Enabled() && cfg.Telemetry.Traces,
		Metrics:     cfg.Telemetry.Enabled() && cfg.Telemetry.Metrics,
	}
}

func openDatabase(cfg *config.Config) (storage.Database, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		return storage.NewMemDB(), nil
	case config.BackendBolt:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return storage.NewBoltDB(filepath.Join(cfg.DataDir, "creatorfund.db"))
	case config.BackendLevelDB, "":
		return storage.NewLevelDB(cfg.DataDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

// ensureGenesis applies the genesis file to an empty store. A store that was
// already provisioned must have been provisioned from the same document.
func ensureGenesis(manager *state.Manager, path string, logger *slog.Logger) error {
	stored, err := manager.Meta(genesis.MetaDigest)
	if err != nil {
		return fmt.Errorf("read genesis digest: %w", err)
	}
	path = strings.TrimSpace(path)
	if path == "" {
		if stored == nil {
			logger.Warn("starting without genesis; no creator wallets are provisioned")
		}
		return nil
	}
	spec, err := genesis.LoadGenesisSpec(path)
	if err != nil {
		return err
	}
	digest := spec.Digest()
	if stored != nil {
		if !bytes.Equal(stored, digest[:]) {
			return fmt.Errorf("%w: %s", errGenesisMismatch, path)
		}
		return nil
	}
	res, err := genesis.Apply(manager, spec)
	if err != nil {
		return fmt.Errorf("apply genesis: %w", err)
	}
	logger.Info("genesis applied",
		slog.Int("mints", res.Mints),
		slog.Int("token_accounts", res.TokenAccounts),
		slog.Int("creator_wallets", len(res.Wallets)))
	return nil
}

// eventLogger writes committed program events to the service log.
type eventLogger struct {
	logger *slog.Logger
}

func (l eventLogger) Emit(evt events.Event) {
	if l.logger == nil || evt == nil {
		return
	}
	payload, ok := evt.(events.Payload)
	if !ok || payload.Event() == nil {
		l.logger.Debug("event", slog.String("type", evt.EventType()))
		return
	}
	ev := payload.Event()
	attrs := make([]any, 0, len(ev.Attributes)+1)
	attrs = append(attrs, slog.String("type", ev.Type))
	for key, value := range ev.Attributes {
		attrs = append(attrs, slog.String(key, value))
	}
	l.logger.Info("event", attrs...)
}
