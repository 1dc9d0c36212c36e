package creatorfund

import (
	"context"

	"creatorfund/core/runtime"
	"creatorfund/crypto"
	"creatorfund/crypto/pda"
	"creatorfund/native/token"
	"creatorfund/observability/metrics"
)

// ClaimRewardParams names the records a reward claim touches. CreatorWallet
// defaults to the caller's derived wallet address. Signers lists additional
// identities the host authenticated, typically FundAuthority when it is not
// the vault authority.
type ClaimRewardParams struct {
	Post                     crypto.Address
	FundTokenAccount         crypto.Address
	FundAuthority            crypto.Address
	CreatorWallet            crypto.Address
	CreatorVaultTokenAccount crypto.Address
	Signers                  []crypto.Address
}

// ClaimReward pays CreatorFundReward from the fund account into the author's
// vault once the post has reached the up-vote threshold, and marks the post
// rewarded. The payout and the flag commit together: a failed transfer leaves
// the post claimable.
func (e *Engine) ClaimReward(ctx context.Context, creator crypto.Address, params ClaimRewardParams) error {
	if err := e.ready(); err != nil {
		return err
	}
	walletAddr := params.CreatorWallet
	if walletAddr.IsZero() {
		derived, _, err := CreatorWalletAddress(creator)
		if err != nil {
			return err
		}
		walletAddr = derived
	}

	accounts := []runtime.AccountMeta{
		runtime.Writable(params.Post),
		runtime.Writable(params.FundTokenAccount),
		runtime.Writable(params.CreatorVaultTokenAccount),
		runtime.ReadOnly(params.FundAuthority),
		runtime.ReadOnly(walletAddr),
	}
	// Wallets are immutable once provisioned, so the committed copy names the
	// mint to declare. A missing wallet is reported by the handler in order.
	if wallet, err := e.CreatorWallet(walletAddr); err == nil {
		accounts = append(accounts, runtime.ReadOnly(wallet.Mint))
	}

	tx := &runtime.Transaction{
		ProgramID:   ProgramID,
		Instruction: "claim_reward",
		Signers:     append([]crypto.Address{creator}, params.Signers...),
		Accounts:    accounts,
	}
	err := e.exec.Execute(ctx, tx, func(rc *runtime.Context) error {
		return claimReward(rc, creator, walletAddr, params)
	})
	if err != nil {
		return err
	}
	metrics.Ledger().ObserveRewardClaimed(CreatorFundReward)
	return nil
}

func claimReward(rc *runtime.Context, creator, walletAddr crypto.Address, params ClaimRewardParams) error {
	post, err := loadPost(rc, params.Post)
	if err != nil {
		return err
	}
	if post.UpVotes < TargetNumberOfUpvotes {
		return ErrThresholdNotMet
	}
	if post.Author != creator {
		return ErrCreatorMismatch
	}
	if err := rc.RequireSigner(creator); err != nil {
		return err
	}
	if post.Rewarded {
		return ErrAlreadyRewarded
	}

	raw, err := loadProgramRecord(rc, walletAddr, ErrCreatorWalletNotFound)
	if err != nil {
		return err
	}
	wallet, err := decodeCreatorWallet(raw)
	if err != nil {
		return err
	}
	fund, err := token.LoadAccount(rc, params.FundTokenAccount)
	if err != nil {
		return err
	}
	vault, err := token.LoadAccount(rc, params.CreatorVaultTokenAccount)
	if err != nil {
		return err
	}
	if fund.Owner != params.FundAuthority {
		return ErrFundAuthorityMismatch
	}
	if params.CreatorVaultTokenAccount != wallet.VaultTokenAccount {
		return ErrVaultMismatch
	}
	// A self-transfer moves nothing, so the fund can never be the vault.
	if params.FundTokenAccount == params.CreatorVaultTokenAccount {
		return ErrVaultMismatch
	}
	if fund.Mint != wallet.Mint || vault.Mint != wallet.Mint {
		return ErrWalletMintMismatch
	}
	if !pda.Verify(walletAddr, walletSeeds(creator), wallet.StateBump, ProgramID) {
		return ErrInvalidWalletBump
	}
	vaultAuthority, err := pda.CreateProgramAddress(VaultSignerSeeds(walletAddr, wallet.WalletBump), ProgramID)
	if err != nil {
		return ErrInvalidWalletBump
	}

	mint, err := token.LoadMint(rc, wallet.Mint)
	if err != nil {
		return err
	}
	transfer := token.Transfer{
		From:      params.FundTokenAccount,
		Mint:      wallet.Mint,
		To:        params.CreatorVaultTokenAccount,
		Authority: params.FundAuthority,
		Amount:    CreatorFundReward,
		Decimals:  mint.Decimals,
	}
	if params.FundAuthority == vaultAuthority {
		err = token.TransferChecked(rc, transfer, VaultSignerSeeds(walletAddr, wallet.WalletBump))
	} else {
		err = token.TransferChecked(rc, transfer)
	}
	if err != nil {
		return err
	}

	post.Rewarded = true
	if err := storePost(rc, params.Post, post); err != nil {
		return err
	}
	rc.Emit(RewardClaimedEvent(params.Post, creator, params.CreatorVaultTokenAccount, CreatorFundReward))
	return nil
}
