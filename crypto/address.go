package crypto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// AddressLength is the byte length of every ledger identity.
const AddressLength = 32

// Address identifies an account on the ledger. Record addresses, token
// accounts, mints, programs and participants all share the same 32-byte space
// and are rendered as base58 strings.
type Address [AddressLength]byte

// ZeroAddress is the unset identity.
var ZeroAddress Address

// NewAddress copies b into an Address. It panics when b has the wrong length.
func NewAddress(b []byte) Address {
	if len(b) != AddressLength {
		panic(fmt.Sprintf("address must be %d bytes long, got %d", AddressLength, len(b)))
	}
	var out Address
	copy(out[:], b)
	return out
}

// DecodeAddress parses the base58 form of an address.
func DecodeAddress(s string) (Address, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Address{}, fmt.Errorf("address required")
	}
	decoded := base58.Decode(trimmed)
	if len(decoded) != AddressLength {
		return Address{}, fmt.Errorf("invalid address %q: decoded to %d bytes", trimmed, len(decoded))
	}
	return NewAddress(decoded), nil
}

// MustDecodeAddress is DecodeAddress for package-level constants.
func MustDecodeAddress(s string) Address {
	addr, err := DecodeAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressLength)
	copy(out, a[:])
	return out
}

// IsZero reports whether the address is unset.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// Compare orders addresses bytewise.
func (a Address) Compare(b Address) int {
	return bytes.Compare(a[:], b[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	decoded, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*a = decoded
	return nil
}

// MarshalJSON renders the address as a base58 string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts the base58 string form.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return a.UnmarshalText([]byte(s))
}
