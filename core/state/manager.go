package state

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"creatorfund/crypto"
	"creatorfund/storage"
)

var (
	ErrAccountInUse    = errors.New("state: account already in use")
	ErrAccountNotFound = errors.New("state: account not found")
	ErrTxnClosed       = errors.New("state: transaction already finished")
	errNilRecord       = errors.New("state: nil record")
)

// Record is one addressed unit of persisted state. Owner is the program allowed
// to rewrite Data.
type Record struct {
	Owner crypto.Address
	Data  []byte
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	return &Record{Owner: r.Owner, Data: append([]byte(nil), r.Data...)}
}

// Manager is the record store backing the runtime. It reads committed records
// directly and hands out transactions for writes.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager over the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

// Database exposes the backing storage.
func (m *Manager) Database() storage.Database { return m.db }

// Record loads the committed record stored at addr.
func (m *Manager) Record(addr crypto.Address) (*Record, bool, error) {
	raw, err := m.db.Get(RecordKey(addr))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("state: read %s: %w", addr, err)
	}
	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, false, fmt.Errorf("state: decode %s: %w", addr, err)
	}
	return rec, true, nil
}

// Exists reports whether a committed record occupies addr.
func (m *Manager) Exists(addr crypto.Address) (bool, error) {
	return m.db.Has(RecordKey(addr))
}

// Meta reads a metadata value. Missing keys return nil without error.
func (m *Manager) Meta(name string) ([]byte, error) {
	raw, err := m.db.Get(MetaKey(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	return raw, err
}

// Begin opens a transaction that buffers writes until Commit.
func (m *Manager) Begin() *Txn {
	return &Txn{
		manager: m,
		pending: make(map[crypto.Address]*Record),
		meta:    make(map[string][]byte),
	}
}

func encodeRecord(rec *Record) ([]byte, error) {
	if rec == nil {
		return nil, errNilRecord
	}
	return rlp.EncodeToBytes(rec)
}

func decodeRecord(raw []byte) (*Record, error) {
	rec := new(Record)
	if err := rlp.DecodeBytes(raw, rec); err != nil {
		return nil, err
	}
	return rec, nil
}
