package runtime

import (
	"errors"
	"fmt"

	"creatorfund/core/state"
	"creatorfund/core/types"
	"creatorfund/crypto"
	"creatorfund/crypto/pda"
)

// MaxInvokeDepth bounds nested program invocations within one transaction.
const MaxInvokeDepth = 4

var (
	ErrAccountNotDeclared = errors.New("runtime: account not declared by transaction")
	ErrAccountReadOnly    = errors.New("runtime: account is not writable")
	ErrIllegalOwner       = errors.New("runtime: account owned by another program")
	ErrMissingSigner      = errors.New("runtime: missing required signature")
	ErrInvalidSignerSeeds = errors.New("runtime: signer seeds do not derive a program address")
	ErrInvokeDepth        = errors.New("runtime: invocation depth exceeded")
)

// Context is the view of the ledger handed to a program for one transaction.
// All reads and writes go through the transaction's record buffer and are
// limited to the accounts the transaction declared.
type Context struct {
	txn      *state.Txn
	program  crypto.Address
	signers  map[crypto.Address]struct{}
	accounts map[crypto.Address]bool
	now      int64
	events   *[]*types.Event
	depth    int
}

// ProgramID returns the program currently executing.
func (c *Context) ProgramID() crypto.Address { return c.program }

// Now returns the ledger clock, in unix seconds, for this transaction.
func (c *Context) Now() int64 { return c.now }

// IsSigner reports whether addr authorized the current invocation, either as a
// transaction signer or as a program address derived by the caller.
func (c *Context) IsSigner(addr crypto.Address) bool {
	_, ok := c.signers[addr]
	return ok
}

// RequireSigner fails with ErrMissingSigner unless addr signed.
func (c *Context) RequireSigner(addr crypto.Address) error {
	if !c.IsSigner(addr) {
		return fmt.Errorf("%w: %s", ErrMissingSigner, addr)
	}
	return nil
}

func (c *Context) declared(addr crypto.Address) error {
	if _, ok := c.accounts[addr]; !ok {
		return fmt.Errorf("%w: %s", ErrAccountNotDeclared, addr)
	}
	return nil
}

func (c *Context) writable(addr crypto.Address) error {
	if err := c.declared(addr); err != nil {
		return err
	}
	if !c.accounts[addr] {
		return fmt.Errorf("%w: %s", ErrAccountReadOnly, addr)
	}
	return nil
}

// Load returns the record at addr. The boolean is false when nothing is
// stored there yet.
func (c *Context) Load(addr crypto.Address) (*state.Record, bool, error) {
	if err := c.declared(addr); err != nil {
		return nil, false, err
	}
	return c.txn.Get(addr)
}

// Create allocates a record owned by the executing program. It fails with
// state.ErrAccountInUse when addr is occupied.
func (c *Context) Create(addr crypto.Address, data []byte) error {
	if err := c.writable(addr); err != nil {
		return err
	}
	return c.txn.Allocate(addr, &state.Record{Owner: c.program, Data: data})
}

// Store rewrites an existing record owned by the executing program.
func (c *Context) Store(addr crypto.Address, data []byte) error {
	if err := c.writable(addr); err != nil {
		return err
	}
	rec, ok, err := c.txn.Get(addr)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", state.ErrAccountNotFound, addr)
	}
	if rec.Owner != c.program {
		return fmt.Errorf("%w: %s owned by %s", ErrIllegalOwner, addr, rec.Owner)
	}
	return c.txn.Put(addr, &state.Record{Owner: c.program, Data: data})
}

// Emit queues an event. Queued events are delivered only if the transaction
// commits.
func (c *Context) Emit(evt *types.Event) {
	if evt == nil {
		return
	}
	*c.events = append(*c.events, evt.Clone())
}

// Invoke runs fn as program. The callee sees the same accounts and the
// caller's signers.
func (c *Context) Invoke(program crypto.Address, fn func(*Context) error) error {
	return c.InvokeSigned(program, nil, fn)
}

// InvokeSigned runs fn as program with extra signers. Each entry of
// signerSeeds is re-derived under the calling program id; the derived address
// is treated as having signed. No key is involved: the capability is the
// ability to reproduce the derivation.
func (c *Context) InvokeSigned(program crypto.Address, signerSeeds [][][]byte, fn func(*Context) error) error {
	if c.depth+1 > MaxInvokeDepth {
		return ErrInvokeDepth
	}
	signers := make(map[crypto.Address]struct{}, len(c.signers)+len(signerSeeds))
	for addr := range c.signers {
		signers[addr] = struct{}{}
	}
	for _, seeds := range signerSeeds {
		derived, err := pda.CreateProgramAddress(seeds, c.program)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSignerSeeds, err)
		}
		signers[derived] = struct{}{}
	}
	child := &Context{
		txn:      c.txn,
		program:  program,
		signers:  signers,
		accounts: c.accounts,
		now:      c.now,
		events:   c.events,
		depth:    c.depth + 1,
	}
	return fn(child)
}
