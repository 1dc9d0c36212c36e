package token

import (
	"creatorfund/core/state"
	"creatorfund/crypto"
)

// AllocateMint writes a new mint record owned by the token program. It is used
// by genesis provisioning, outside of any program instruction.
func AllocateMint(txn *state.Txn, addr crypto.Address, m *Mint) error {
	data, err := EncodeMint(m)
	if err != nil {
		return err
	}
	return txn.Allocate(addr, &state.Record{Owner: ProgramID, Data: data})
}

// AllocateAccount writes a new token account record owned by the token program.
func AllocateAccount(txn *state.Txn, addr crypto.Address, a *Account) error {
	data, err := EncodeAccount(a)
	if err != nil {
		return err
	}
	return txn.Allocate(addr, &state.Record{Owner: ProgramID, Data: data})
}

// ReadAccount loads a committed token account outside of a transaction.
func ReadAccount(m *state.Manager, addr crypto.Address) (*Account, error) {
	rec, ok, err := m.Record(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccountNotFound
	}
	if rec.Owner != ProgramID {
		return nil, ErrNotTokenAccount
	}
	return DecodeAccount(rec.Data)
}

// ReadMint loads a committed mint outside of a transaction.
func ReadMint(m *state.Manager, addr crypto.Address) (*Mint, error) {
	rec, ok, err := m.Record(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccountNotFound
	}
	if rec.Owner != ProgramID {
		return nil, ErrNotTokenAccount
	}
	return DecodeMint(rec.Data)
}
