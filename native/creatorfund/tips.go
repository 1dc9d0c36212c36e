package creatorfund

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"

	"creatorfund/core/runtime"
	"creatorfund/crypto"
	"creatorfund/crypto/pda"
	"creatorfund/native/token"
	"creatorfund/observability/metrics"
)

// TipParams describes a tip. Amount is in whole tokens and is scaled by the
// mint's decimals. CreatorPost is any post authored by the owner of To.
//
// AuthoritySeeds, when set, authorizes Authority as a derived identity rather
// than a signer. Only the seeds of the signer's own vault authority are
// accepted.
type TipParams struct {
	From           crypto.Address
	To             crypto.Address
	Mint           crypto.Address
	Authority      crypto.Address
	CreatorPost    crypto.Address
	Amount         uint64
	AuthoritySeeds [][]byte
}

// ScaleAmount converts whole tokens to base units for a mint with decimals.
func ScaleAmount(amount uint64, decimals uint8) (uint64, error) {
	factor := new(uint256.Int).Exp(uint256.NewInt(10), uint256.NewInt(uint64(decimals)))
	scaled, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(amount), factor)
	if overflow || !scaled.IsUint64() {
		return 0, ErrTipAmountOverflow
	}
	return scaled.Uint64(), nil
}

// Tip moves Amount tokens from one token account to a creator's account.
func (e *Engine) Tip(ctx context.Context, signer crypto.Address, params TipParams) (uint64, error) {
	if err := e.ready(); err != nil {
		return 0, err
	}
	if params.Amount == 0 {
		return 0, ErrInvalidTipAmount
	}
	if params.AuthoritySeeds != nil {
		if err := checkAuthoritySeeds(signer, params.Authority, params.AuthoritySeeds); err != nil {
			return 0, err
		}
	}
	var moved uint64
	tx := &runtime.Transaction{
		ProgramID:   ProgramID,
		Instruction: "tip",
		Signers:     []crypto.Address{signer},
		Accounts: []runtime.AccountMeta{
			runtime.Writable(params.From),
			runtime.Writable(params.To),
			runtime.ReadOnly(params.Mint),
			runtime.ReadOnly(params.CreatorPost),
			runtime.ReadOnly(params.Authority),
		},
	}
	err := e.exec.Execute(ctx, tx, func(rc *runtime.Context) error {
		amount, err := tip(rc, params)
		moved = amount
		return err
	})
	if err != nil {
		return 0, err
	}
	metrics.Ledger().ObserveTip(moved)
	return moved, nil
}

func checkAuthoritySeeds(signer, authority crypto.Address, seeds [][]byte) error {
	derived, err := pda.CreateProgramAddress(seeds, ProgramID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTipAuthorityMismatch, err)
	}
	wallet, _, err := CreatorWalletAddress(signer)
	if err != nil {
		return err
	}
	own, _, err := VaultAuthorityAddress(wallet)
	if err != nil {
		return err
	}
	if derived != own || derived != authority {
		return ErrTipAuthorityMismatch
	}
	return nil
}

func tip(rc *runtime.Context, params TipParams) (uint64, error) {
	from, err := token.LoadAccount(rc, params.From)
	if err != nil {
		return 0, err
	}
	to, err := token.LoadAccount(rc, params.To)
	if err != nil {
		return 0, err
	}
	if from.Owner != params.Authority {
		return 0, ErrTipAuthorityMismatch
	}
	if from.Mint != params.Mint || to.Mint != params.Mint {
		return 0, ErrTipMintMismatch
	}
	post, err := loadPost(rc, params.CreatorPost)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCreatorHasNoPosts, err)
	}
	if post.Author != to.Owner {
		return 0, ErrCreatorHasNoPosts
	}
	mint, err := token.LoadMint(rc, params.Mint)
	if err != nil {
		return 0, err
	}
	amount, err := ScaleAmount(params.Amount, mint.Decimals)
	if err != nil {
		return 0, err
	}
	transfer := token.Transfer{
		From:      params.From,
		Mint:      params.Mint,
		To:        params.To,
		Authority: params.Authority,
		Amount:    amount,
		Decimals:  mint.Decimals,
	}
	if params.AuthoritySeeds != nil {
		err = token.TransferChecked(rc, transfer, params.AuthoritySeeds)
	} else {
		err = token.TransferChecked(rc, transfer)
	}
	if err != nil {
		return 0, err
	}
	rc.Emit(TipSentEvent(params.From, params.To, to.Owner, params.CreatorPost, amount))
	return amount, nil
}
