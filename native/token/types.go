package token

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"creatorfund/crypto"
)

// ProgramID owns every mint and token account.
var ProgramID = crypto.MustDecodeAddress("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

const (
	kindMint    byte = 1
	kindAccount byte = 2
)

var errWrongKind = errors.New("token: record kind mismatch")

// Mint describes a token type.
type Mint struct {
	Decimals      uint8          `json:"decimals"`
	Supply        uint64         `json:"supply"`
	MintAuthority crypto.Address `json:"mintAuthority"`
}

// Account holds a balance of one mint on behalf of Owner.
type Account struct {
	Mint   crypto.Address `json:"mint"`
	Owner  crypto.Address `json:"owner"`
	Amount uint64         `json:"amount"`
}

func encode(kind byte, v interface{}) ([]byte, error) {
	body, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, err
	}
	return append([]byte{kind}, body...), nil
}

func decode(kind byte, raw []byte, v interface{}) error {
	if len(raw) == 0 || raw[0] != kind {
		return errWrongKind
	}
	return rlp.DecodeBytes(raw[1:], v)
}

// EncodeMint serializes a mint record.
func EncodeMint(m *Mint) ([]byte, error) { return encode(kindMint, m) }

// DecodeMint parses a mint record.
func DecodeMint(raw []byte) (*Mint, error) {
	m := new(Mint)
	if err := decode(kindMint, raw, m); err != nil {
		return nil, fmt.Errorf("token: decode mint: %w", err)
	}
	return m, nil
}

// EncodeAccount serializes a token account record.
func EncodeAccount(a *Account) ([]byte, error) { return encode(kindAccount, a) }

// DecodeAccount parses a token account record.
func DecodeAccount(raw []byte) (*Account, error) {
	a := new(Account)
	if err := decode(kindAccount, raw, a); err != nil {
		return nil, fmt.Errorf("token: decode account: %w", err)
	}
	return a, nil
}
