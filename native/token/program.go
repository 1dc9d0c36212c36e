package token

import (
	"errors"
	"fmt"
	"math"

	"creatorfund/core/runtime"
	"creatorfund/core/state"
	"creatorfund/crypto"
)

var (
	ErrInsufficientFunds    = errors.New("token: insufficient funds")
	ErrMintMismatch         = errors.New("token: mint mismatch")
	ErrAuthorizationFailure = errors.New("token: authorization failure")
	ErrOverflow             = errors.New("token: balance overflow")
	ErrAccountNotFound      = errors.New("token: account not found")
	ErrNotTokenAccount      = errors.New("token: account not owned by token program")
)

// Transfer describes a checked transfer. Amount is in base units; Decimals
// must match the mint so a caller cannot misread the unit scale.
type Transfer struct {
	From      crypto.Address
	Mint      crypto.Address
	To        crypto.Address
	Authority crypto.Address
	Amount    uint64
	Decimals  uint8
}

func load(rc *runtime.Context, addr crypto.Address) (*state.Record, error) {
	rec, ok, err := rc.Load(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	if rec.Owner != ProgramID {
		return nil, fmt.Errorf("%w: %s", ErrNotTokenAccount, addr)
	}
	return rec, nil
}

// LoadMint reads a mint record through the transaction context.
func LoadMint(rc *runtime.Context, addr crypto.Address) (*Mint, error) {
	rec, err := load(rc, addr)
	if err != nil {
		return nil, err
	}
	return DecodeMint(rec.Data)
}

// LoadAccount reads a token account through the transaction context.
func LoadAccount(rc *runtime.Context, addr crypto.Address) (*Account, error) {
	rec, err := load(rc, addr)
	if err != nil {
		return nil, err
	}
	return DecodeAccount(rec.Data)
}

// TransferChecked moves t.Amount base units from t.From to t.To as the token
// program. t.Authority must own the source account and must have signed the
// invocation, either directly or as a program address derived from one of
// signerSeeds by the calling program.
func TransferChecked(rc *runtime.Context, t Transfer, signerSeeds ...[][]byte) error {
	return rc.InvokeSigned(ProgramID, signerSeeds, func(inner *runtime.Context) error {
		return transferChecked(inner, t)
	})
}

func transferChecked(rc *runtime.Context, t Transfer) error {
	mint, err := LoadMint(rc, t.Mint)
	if err != nil {
		return err
	}
	if mint.Decimals != t.Decimals {
		return fmt.Errorf("%w: decimals %d, mint has %d", ErrMintMismatch, t.Decimals, mint.Decimals)
	}
	from, err := LoadAccount(rc, t.From)
	if err != nil {
		return err
	}
	to, err := LoadAccount(rc, t.To)
	if err != nil {
		return err
	}
	if from.Mint != t.Mint || to.Mint != t.Mint {
		return ErrMintMismatch
	}
	if from.Owner != t.Authority {
		return fmt.Errorf("%w: %s does not own %s", ErrAuthorizationFailure, t.Authority, t.From)
	}
	if !rc.IsSigner(t.Authority) {
		return fmt.Errorf("%w: %s did not sign", ErrAuthorizationFailure, t.Authority)
	}
	if from.Amount < t.Amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, from.Amount, t.Amount)
	}
	if t.From == t.To {
		return nil
	}
	if to.Amount > math.MaxUint64-t.Amount {
		return ErrOverflow
	}
	from.Amount -= t.Amount
	to.Amount += t.Amount

	encodedFrom, err := EncodeAccount(from)
	if err != nil {
		return err
	}
	encodedTo, err := EncodeAccount(to)
	if err != nil {
		return err
	}
	if err := rc.Store(t.From, encodedFrom); err != nil {
		return err
	}
	return rc.Store(t.To, encodedTo)
}
