package creatorfund

import (
	"context"
	"testing"

	"creatorfund/core/events"
	"creatorfund/core/runtime"
	"creatorfund/core/state"
	"creatorfund/crypto"
	"creatorfund/native/token"
	"creatorfund/storage"
)

const (
	testDecimals   = 9
	testNow        = 1_700_000_000
	oneToken       = 1_000_000_000
	fundBalance    = 10 * CreatorFundReward
	vaultBalance   = 5 * oneToken
	tipperBalance  = 50 * oneToken
	testMintSupply = 1_000 * oneToken
)

func addr(last byte) crypto.Address {
	var out crypto.Address
	out[31] = last
	return out
}

func voterAddr(i int) crypto.Address {
	var out crypto.Address
	out[0] = 0x77
	out[30] = byte(i >> 8)
	out[31] = byte(i)
	return out
}

type fixture struct {
	engine   *Engine
	rt       *runtime.Runtime
	state    *state.Manager
	recorder *events.Recorder

	mint          crypto.Address
	author        crypto.Address
	fundAuthority crypto.Address
	fund          crypto.Address
	wallet        crypto.Address
	walletRecord  *CreatorWallet
	vaultAuth     crypto.Address
	vault         crypto.Address
	authorTokens  crypto.Address
	tipper        crypto.Address
	tipperTokens  crypto.Address
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mgr := state.NewManager(storage.NewMemDB())
	rt := runtime.New(mgr)
	rec := &events.Recorder{}
	rt.SetEmitter(rec)
	rt.SetNowFunc(func() int64 { return testNow })

	f := &fixture{
		engine:        NewEngine(rt),
		rt:            rt,
		state:         mgr,
		recorder:      rec,
		mint:          addr(0x10),
		author:        addr(0x01),
		fundAuthority: addr(0xF0),
		fund:          addr(0x20),
		vault:         addr(0x30),
		authorTokens:  addr(0x31),
		tipper:        addr(0x02),
		tipperTokens:  addr(0x40),
	}
	f.provisionCreator(t, f.author, f.vault, vaultBalance)

	txn := mgr.Begin()
	mustDo(t, token.AllocateMint(txn, f.mint, &token.Mint{Decimals: testDecimals, Supply: testMintSupply}))
	mustDo(t, token.AllocateAccount(txn, f.fund, &token.Account{Mint: f.mint, Owner: f.fundAuthority, Amount: fundBalance}))
	mustDo(t, token.AllocateAccount(txn, f.authorTokens, &token.Account{Mint: f.mint, Owner: f.author}))
	mustDo(t, token.AllocateAccount(txn, f.tipperTokens, &token.Account{Mint: f.mint, Owner: f.tipper, Amount: tipperBalance}))
	mustDo(t, txn.Commit())
	return f
}

// provisionCreator writes a creator wallet and its vault token account the way
// an external provisioning step would.
func (f *fixture) provisionCreator(t *testing.T, creator, vault crypto.Address, balance uint64) (crypto.Address, *CreatorWallet) {
	t.Helper()
	walletAddr, stateBump, err := CreatorWalletAddress(creator)
	mustDo(t, err)
	vaultAuth, walletBump, err := VaultAuthorityAddress(walletAddr)
	mustDo(t, err)
	wallet := &CreatorWallet{WalletBump: walletBump, StateBump: stateBump, Mint: f.mint, VaultTokenAccount: vault}
	f.writeWallet(t, walletAddr, wallet)

	txn := f.state.Begin()
	mustDo(t, token.AllocateAccount(txn, vault, &token.Account{Mint: f.mint, Owner: vaultAuth, Amount: balance}))
	mustDo(t, txn.Commit())
	if creator == f.author {
		f.wallet, f.walletRecord, f.vaultAuth = walletAddr, wallet, vaultAuth
	}
	return walletAddr, wallet
}

func (f *fixture) writeWallet(t *testing.T, at crypto.Address, wallet *CreatorWallet) {
	t.Helper()
	encoded, err := EncodeCreatorWallet(wallet)
	mustDo(t, err)
	txn := f.state.Begin()
	mustDo(t, txn.Allocate(at, &state.Record{Owner: ProgramID, Data: encoded}))
	mustDo(t, txn.Commit())
}

func (f *fixture) allocateTokenAccount(t *testing.T, at, mint, owner crypto.Address, amount uint64) {
	t.Helper()
	txn := f.state.Begin()
	mustDo(t, token.AllocateAccount(txn, at, &token.Account{Mint: mint, Owner: owner, Amount: amount}))
	mustDo(t, txn.Commit())
}

func (f *fixture) createPost(t *testing.T, author crypto.Address, title string) crypto.Address {
	t.Helper()
	postAddr, _, err := f.engine.CreatePost(context.Background(), author, CreatePostParams{Title: title, Content: "World"})
	if err != nil {
		t.Fatalf("create post %q: %v", title, err)
	}
	return postAddr
}

func (f *fixture) upvote(t *testing.T, post crypto.Address, voters int) {
	t.Helper()
	for i := 0; i < voters; i++ {
		if _, _, err := f.engine.CastVote(context.Background(), voterAddr(i), post, VoteTypeUpVote); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
	}
}

func (f *fixture) claimParams(post crypto.Address) ClaimRewardParams {
	return ClaimRewardParams{
		Post:                     post,
		FundTokenAccount:         f.fund,
		FundAuthority:            f.fundAuthority,
		CreatorWallet:            f.wallet,
		CreatorVaultTokenAccount: f.vault,
		Signers:                  []crypto.Address{f.fundAuthority},
	}
}

func (f *fixture) balance(t *testing.T, account crypto.Address) uint64 {
	t.Helper()
	acc, err := token.ReadAccount(f.state, account)
	if err != nil {
		t.Fatalf("read %s: %v", account, err)
	}
	return acc.Amount
}

func (f *fixture) post(t *testing.T, at crypto.Address) *Post {
	t.Helper()
	p, err := f.engine.Post(at)
	if err != nil {
		t.Fatalf("read post: %v", err)
	}
	return p
}

func mustDo(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
