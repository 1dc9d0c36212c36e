// Package runtime is the host ledger runtime. It executes one program
// instruction at a time as an atomic, serializable transaction over the record
// store: every read, check and write made by the instruction commits together
// or not at all.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"creatorfund/core/events"
	"creatorfund/core/state"
	"creatorfund/core/types"
	"creatorfund/crypto"
	"creatorfund/observability/metrics"
)

var (
	errNilState       = errors.New("runtime: state not configured")
	errNilTransaction = errors.New("runtime: nil transaction")
	errNilHandler     = errors.New("runtime: nil handler")
	errNoProgram      = errors.New("runtime: transaction has no program id")
)

// AccountMeta declares an account a transaction will touch.
type AccountMeta struct {
	Address  crypto.Address
	Writable bool
}

// Writable declares a writable account.
func Writable(addr crypto.Address) AccountMeta { return AccountMeta{Address: addr, Writable: true} }

// ReadOnly declares a read-only account.
func ReadOnly(addr crypto.Address) AccountMeta { return AccountMeta{Address: addr} }

// Transaction describes one instruction submitted to the runtime. Signers are
// identities the host has already authenticated; they are implicitly declared
// as read-only accounts.
type Transaction struct {
	ProgramID   crypto.Address
	Instruction string
	Signers     []crypto.Address
	Accounts    []AccountMeta
}

// Handler is the program logic executed inside a transaction.
type Handler func(*Context) error

// Runtime executes transactions against a state manager.
type Runtime struct {
	state   *state.Manager
	locks   *lockTable
	emitter events.Emitter
	logger  *slog.Logger
	tracer  trace.Tracer

	// executed mirrors the prometheus transaction counter on the OTLP meter.
	executed metric.Int64Counter
	nowFn    func() int64
}

// New constructs a runtime over manager with default dependencies.
func New(manager *state.Manager) *Runtime {
	executed, err := otel.Meter("creatorfund/core/runtime").Int64Counter("creatorfund.runtime.transactions")
	if err != nil {
		executed = nil
	}
	return &Runtime{
		state:    manager,
		locks:    newLockTable(),
		emitter:  events.NoopEmitter{},
		logger:   slog.Default(),
		tracer:   otel.Tracer("creatorfund/core/runtime"),
		executed: executed,
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// State exposes the record store for read-only queries.
func (r *Runtime) State() *state.Manager { return r.state }

// SetEmitter configures where committed events are delivered.
func (r *Runtime) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetLogger configures the runtime logger.
func (r *Runtime) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	r.logger = logger
}

// SetNowFunc overrides the ledger clock for deterministic testing.
func (r *Runtime) SetNowFunc(now func() int64) {
	if now == nil {
		r.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	r.nowFn = now
}

func (r *Runtime) now() int64 {
	if r.nowFn == nil {
		return time.Now().Unix()
	}
	return r.nowFn()
}

func collectAccounts(tx *Transaction) map[crypto.Address]bool {
	accounts := make(map[crypto.Address]bool, len(tx.Accounts)+len(tx.Signers))
	for _, meta := range tx.Accounts {
		accounts[meta.Address] = accounts[meta.Address] || meta.Writable
	}
	for _, signer := range tx.Signers {
		if _, ok := accounts[signer]; !ok {
			accounts[signer] = false
		}
	}
	return accounts
}

// Execute runs handler as tx. The declared accounts are locked for the whole
// execution. On success the buffered writes are committed in one batch and the
// queued events are emitted; on failure nothing is written or emitted.
func (r *Runtime) Execute(ctx context.Context, tx *Transaction, handler Handler) (err error) {
	if r == nil || r.state == nil {
		return errNilState
	}
	if tx == nil {
		return errNilTransaction
	}
	if handler == nil {
		return errNilHandler
	}
	if tx.ProgramID.IsZero() {
		return errNoProgram
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := r.tracer.Start(ctx, "runtime.execute", trace.WithAttributes(
		attribute.String("instruction", tx.Instruction),
		attribute.String("program", tx.ProgramID.String()),
		attribute.Int("accounts", len(tx.Accounts)),
	))
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.Ledger().ObserveTransaction(tx.Instruction, outcome, time.Since(start))
		if r.executed != nil {
			r.executed.Add(ctx, 1, metric.WithAttributes(
				attribute.String("instruction", tx.Instruction),
				attribute.String("outcome", outcome)))
		}
		span.End()
	}()

	accounts := collectAccounts(tx)
	release := r.locks.acquire(accounts)
	defer release()

	signers := make(map[crypto.Address]struct{}, len(tx.Signers))
	for _, signer := range tx.Signers {
		signers[signer] = struct{}{}
	}
	pending := make([]*types.Event, 0, 2)
	txn := r.state.Begin()
	rc := &Context{
		txn:      txn,
		program:  tx.ProgramID,
		signers:  signers,
		accounts: accounts,
		now:      r.now(),
		events:   &pending,
	}

	if err := handler(rc); err != nil {
		txn.Discard()
		r.logger.Debug("transaction rejected",
			slog.String("instruction", tx.Instruction),
			slog.Any("error", err))
		return err
	}
	if err := txn.Commit(); err != nil {
		r.logger.Error("transaction commit failed",
			slog.String("instruction", tx.Instruction),
			slog.Any("error", err))
		return fmt.Errorf("runtime: %s: %w", tx.Instruction, err)
	}
	for _, evt := range pending {
		r.emitter.Emit(events.Wrap(evt))
	}
	r.logger.Debug("transaction committed",
		slog.String("instruction", tx.Instruction),
		slog.Int("events", len(pending)))
	return nil
}
