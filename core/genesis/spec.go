package genesis

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"creatorfund/crypto"
)

// GenesisSpec is the provisioning file applied to an empty record store. It
// creates the token records the creator fund pays from and the creator
// wallets that bind each creator to a vault.
type GenesisSpec struct {
	Mints          []MintSpec          `yaml:"mints"`
	TokenAccounts  []TokenAccountSpec  `yaml:"tokenAccounts"`
	CreatorWallets []CreatorWalletSpec `yaml:"creatorWallets"`

	digest [32]byte
}

type MintSpec struct {
	Address       string `yaml:"address"`
	Decimals      uint8  `yaml:"decimals"`
	Supply        uint64 `yaml:"supply"`
	MintAuthority string `yaml:"mintAuthority,omitempty"`

	address       crypto.Address
	mintAuthority crypto.Address
}

type TokenAccountSpec struct {
	Address string `yaml:"address"`
	Mint    string `yaml:"mint"`
	Owner   string `yaml:"owner"`
	Amount  uint64 `yaml:"amount"`

	address crypto.Address
	mint    crypto.Address
	owner   crypto.Address
}

// CreatorWalletSpec provisions a creator wallet. When VaultTokenAccount is not
// listed under tokenAccounts an empty account owned by the derived vault
// authority is created for it.
type CreatorWalletSpec struct {
	Creator           string `yaml:"creator"`
	Mint              string `yaml:"mint"`
	VaultTokenAccount string `yaml:"vaultTokenAccount"`

	creator crypto.Address
	mint    crypto.Address
	vault   crypto.Address
}

// LoadGenesisSpec reads and validates a YAML genesis file.
func LoadGenesisSpec(path string) (*GenesisSpec, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("genesis spec path must be provided")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read genesis spec %q: %w", path, err)
	}
	spec, err := ParseGenesisSpec(raw)
	if err != nil {
		return nil, fmt.Errorf("genesis spec %q: %w", path, err)
	}
	return spec, nil
}

// ParseGenesisSpec decodes and validates a YAML genesis document. Unknown
// fields are rejected.
func ParseGenesisSpec(raw []byte) (*GenesisSpec, error) {
	var spec GenesisSpec
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, fmt.Errorf("invalid: %w", err)
	}
	spec.digest = sha256.Sum256(raw)
	return &spec, nil
}

// Digest is the sha256 of the document the spec was parsed from.
func (s *GenesisSpec) Digest() [32]byte { return s.digest }

func parseAddress(field, value string) (crypto.Address, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return crypto.Address{}, fmt.Errorf("%s is required", field)
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return crypto.Address{}, fmt.Errorf("%s: %w", field, err)
	}
	return addr, nil
}

func (s *GenesisSpec) validate() error {
	seen := make(map[crypto.Address]string)
	claim := func(addr crypto.Address, what string) error {
		if prev, ok := seen[addr]; ok {
			return fmt.Errorf("%s %s already used by %s", what, addr, prev)
		}
		seen[addr] = what
		return nil
	}

	mints := make(map[crypto.Address]*MintSpec, len(s.Mints))
	for i := range s.Mints {
		m := &s.Mints[i]
		addr, err := parseAddress(fmt.Sprintf("mints[%d].address", i), m.Address)
		if err != nil {
			return err
		}
		m.address = addr
		if strings.TrimSpace(m.MintAuthority) != "" {
			if m.mintAuthority, err = parseAddress(fmt.Sprintf("mints[%d].mintAuthority", i), m.MintAuthority); err != nil {
				return err
			}
		}
		if err := claim(addr, "mint"); err != nil {
			return err
		}
		mints[addr] = m
	}

	issued := make(map[crypto.Address]uint64, len(mints))
	for i := range s.TokenAccounts {
		a := &s.TokenAccounts[i]
		var err error
		if a.address, err = parseAddress(fmt.Sprintf("tokenAccounts[%d].address", i), a.Address); err != nil {
			return err
		}
		if a.mint, err = parseAddress(fmt.Sprintf("tokenAccounts[%d].mint", i), a.Mint); err != nil {
			return err
		}
		if a.owner, err = parseAddress(fmt.Sprintf("tokenAccounts[%d].owner", i), a.Owner); err != nil {
			return err
		}
		mint, ok := mints[a.mint]
		if !ok {
			return fmt.Errorf("tokenAccounts[%d]: unknown mint %s", i, a.mint)
		}
		if err := claim(a.address, "token account"); err != nil {
			return err
		}
		total := issued[a.mint] + a.Amount
		if total < issued[a.mint] || total > mint.Supply {
			return fmt.Errorf("tokenAccounts[%d]: balances of mint %s exceed supply %d", i, a.mint, mint.Supply)
		}
		issued[a.mint] = total
	}

	creators := make(map[crypto.Address]struct{}, len(s.CreatorWallets))
	for i := range s.CreatorWallets {
		w := &s.CreatorWallets[i]
		var err error
		if w.creator, err = parseAddress(fmt.Sprintf("creatorWallets[%d].creator", i), w.Creator); err != nil {
			return err
		}
		if w.mint, err = parseAddress(fmt.Sprintf("creatorWallets[%d].mint", i), w.Mint); err != nil {
			return err
		}
		if w.vault, err = parseAddress(fmt.Sprintf("creatorWallets[%d].vaultTokenAccount", i), w.VaultTokenAccount); err != nil {
			return err
		}
		if _, ok := mints[w.mint]; !ok {
			return fmt.Errorf("creatorWallets[%d]: unknown mint %s", i, w.mint)
		}
		if _, dup := creators[w.creator]; dup {
			return fmt.Errorf("creatorWallets[%d]: duplicate creator %s", i, w.creator)
		}
		creators[w.creator] = struct{}{}
		if what, ok := seen[w.vault]; ok && what != "token account" {
			return fmt.Errorf("creatorWallets[%d]: vault %s already used by %s", i, w.vault, what)
		}
	}
	return nil
}
