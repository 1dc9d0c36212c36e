package state

import (
	"fmt"
	"sort"

	"creatorfund/crypto"
	"creatorfund/storage"
)

// Txn buffers record writes made by a single operation. Reads see the
// transaction's own writes first and fall back to committed state. Nothing
// reaches storage until Commit, which writes every change in one batch.
//
// Txn is not safe for concurrent use.
type Txn struct {
	manager *Manager
	pending map[crypto.Address]*Record
	meta    map[string][]byte
	done    bool
}

// Get returns the record at addr as seen by this transaction.
func (t *Txn) Get(addr crypto.Address) (*Record, bool, error) {
	if t.done {
		return nil, false, ErrTxnClosed
	}
	if rec, ok := t.pending[addr]; ok {
		return rec.Clone(), true, nil
	}
	return t.manager.Record(addr)
}

// Allocate creates a record at addr, failing when the address is occupied.
func (t *Txn) Allocate(addr crypto.Address, rec *Record) error {
	if t.done {
		return ErrTxnClosed
	}
	if rec == nil {
		return errNilRecord
	}
	_, exists, err := t.Get(addr)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountInUse, addr)
	}
	t.pending[addr] = rec.Clone()
	return nil
}

// Put overwrites an existing record.
func (t *Txn) Put(addr crypto.Address, rec *Record) error {
	if t.done {
		return ErrTxnClosed
	}
	if rec == nil {
		return errNilRecord
	}
	_, exists, err := t.Get(addr)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	t.pending[addr] = rec.Clone()
	return nil
}

// SetMeta queues a metadata write.
func (t *Txn) SetMeta(name string, value []byte) error {
	if t.done {
		return ErrTxnClosed
	}
	t.meta[name] = append([]byte(nil), value...)
	return nil
}

// Dirty lists the addresses written by this transaction in address order.
func (t *Txn) Dirty() []crypto.Address {
	out := make([]crypto.Address, 0, len(t.pending))
	for addr := range t.pending {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out
}

// Commit writes all buffered changes atomically and closes the transaction.
func (t *Txn) Commit() error {
	if t.done {
		return ErrTxnClosed
	}
	t.done = true
	batch := storage.NewBatch()
	for _, addr := range t.Dirty() {
		encoded, err := encodeRecord(t.pending[addr])
		if err != nil {
			return fmt.Errorf("state: encode %s: %w", addr, err)
		}
		batch.Put(RecordKey(addr), encoded)
	}
	names := make([]string, 0, len(t.meta))
	for name := range t.meta {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		batch.Put(MetaKey(name), t.meta[name])
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := t.manager.db.Write(batch); err != nil {
		return fmt.Errorf("state: commit: %w", err)
	}
	return nil
}

// Discard drops all buffered changes. Calling it after Commit is a no-op.
func (t *Txn) Discard() {
	if t.done {
		return
	}
	t.done = true
	t.pending = nil
	t.meta = nil
}
