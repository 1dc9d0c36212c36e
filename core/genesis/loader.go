package genesis

import (
	"errors"
	"fmt"

	"creatorfund/core/state"
	"creatorfund/crypto"
	"creatorfund/native/creatorfund"
	"creatorfund/native/token"
)

// MetaDigest names the metadata entry holding the applied genesis digest.
const MetaDigest = "genesis/digest"

var (
	errNilSpec    = errors.New("genesis spec must not be nil")
	errNilManager = errors.New("state manager must not be nil")
)

// Wallet summarizes a provisioned creator wallet.
type Wallet struct {
	Creator        crypto.Address
	Address        crypto.Address
	VaultAuthority crypto.Address
	Record         *creatorfund.CreatorWallet
}

// Result reports what Apply wrote.
type Result struct {
	Mints         int
	TokenAccounts int
	Wallets       []Wallet
}

// Apply writes every record of spec in one committed transaction. Records
// already present make the whole application fail with state.ErrAccountInUse.
func Apply(manager *state.Manager, spec *GenesisSpec) (*Result, error) {
	if spec == nil {
		return nil, errNilSpec
	}
	if manager == nil {
		return nil, errNilManager
	}
	txn := manager.Begin()
	res, err := apply(txn, spec)
	if err != nil {
		txn.Discard()
		return nil, err
	}
	digest := spec.Digest()
	if err := txn.SetMeta(MetaDigest, digest[:]); err != nil {
		txn.Discard()
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, fmt.Errorf("commit genesis: %w", err)
	}
	return res, nil
}

func apply(txn *state.Txn, spec *GenesisSpec) (*Result, error) {
	res := &Result{}
	decimals := make(map[crypto.Address]uint8, len(spec.Mints))
	for _, m := range spec.Mints {
		mint := &token.Mint{Decimals: m.Decimals, Supply: m.Supply, MintAuthority: m.mintAuthority}
		if err := token.AllocateMint(txn, m.address, mint); err != nil {
			return nil, fmt.Errorf("mint %s: %w", m.address, err)
		}
		decimals[m.address] = m.Decimals
		res.Mints++
	}
	listed := make(map[crypto.Address]crypto.Address, len(spec.TokenAccounts))
	for _, a := range spec.TokenAccounts {
		acc := &token.Account{Mint: a.mint, Owner: a.owner, Amount: a.Amount}
		if err := token.AllocateAccount(txn, a.address, acc); err != nil {
			return nil, fmt.Errorf("token account %s: %w", a.address, err)
		}
		listed[a.address] = a.mint
		res.TokenAccounts++
	}
	for _, w := range spec.CreatorWallets {
		wallet, err := provisionWallet(txn, w, listed)
		if err != nil {
			return nil, fmt.Errorf("creator wallet %s: %w", w.creator, err)
		}
		res.Wallets = append(res.Wallets, *wallet)
	}
	return res, nil
}

func provisionWallet(txn *state.Txn, w CreatorWalletSpec, listed map[crypto.Address]crypto.Address) (*Wallet, error) {
	walletAddr, stateBump, err := creatorfund.CreatorWalletAddress(w.creator)
	if err != nil {
		return nil, err
	}
	vaultAuthority, walletBump, err := creatorfund.VaultAuthorityAddress(walletAddr)
	if err != nil {
		return nil, err
	}
	if mint, ok := listed[w.vault]; ok {
		if mint != w.mint {
			return nil, fmt.Errorf("vault %s holds mint %s, wallet uses %s", w.vault, mint, w.mint)
		}
	} else {
		vault := &token.Account{Mint: w.mint, Owner: vaultAuthority}
		if err := token.AllocateAccount(txn, w.vault, vault); err != nil {
			return nil, fmt.Errorf("vault %s: %w", w.vault, err)
		}
		listed[w.vault] = w.mint
	}
	record := &creatorfund.CreatorWallet{
		WalletBump:        walletBump,
		StateBump:         stateBump,
		Mint:              w.mint,
		VaultTokenAccount: w.vault,
	}
	encoded, err := creatorfund.EncodeCreatorWallet(record)
	if err != nil {
		return nil, err
	}
	if err := txn.Allocate(walletAddr, &state.Record{Owner: creatorfund.ProgramID, Data: encoded}); err != nil {
		return nil, err
	}
	return &Wallet{Creator: w.creator, Address: walletAddr, VaultAuthority: vaultAuthority, Record: record}, nil
}
