package rpc

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"creatorfund/crypto"
	"creatorfund/native/creatorfund"
)

func voter(i int) crypto.Address {
	var out crypto.Address
	out[0] = 0x77
	out[30] = byte(i >> 8)
	out[31] = byte(i)
	return out
}

func createPost(t *testing.T, env *testEnv, title string) PostResult {
	t.Helper()
	_, resp := env.call(t, "creatorfund_createPost", createPostParams{
		Caller:  testAuthor.String(),
		Title:   title,
		Content: "hello",
	}, testToken)
	var post PostResult
	decodeResult(t, resp, &post)
	return post
}

func TestCreatePostVoteAndQuery(t *testing.T) {
	env := newTestEnv(t, ServerConfig{AuthToken: testToken})
	post := createPost(t, env, "first")

	expected, _, err := creatorfund.PostAddress("first", testAuthor)
	require.NoError(t, err)
	require.Equal(t, expected.String(), post.Address)

	_, resp := env.call(t, "creatorfund_vote", voteParams{
		Caller:   voter(1).String(),
		Post:     post.Address,
		VoteType: "UpVote",
	}, testToken)
	var vote VoteResult
	decodeResult(t, resp, &vote)
	require.Equal(t, "UpVote", vote.VoteType)

	_, resp = env.call(t, "creatorfund_vote", voteParams{
		Caller:   voter(1).String(),
		Post:     post.Address,
		VoteType: "down",
	}, testToken)
	require.Equal(t, mustCode(t, creatorfund.ErrAlreadyVoted), programCode(t, resp))

	_, resp = env.call(t, "creatorfund_getVote", getVoteParams{Voter: voter(1).String(), Post: post.Address}, "")
	var fetched VoteResult
	decodeResult(t, resp, &fetched)
	require.Equal(t, vote.Address, fetched.Address)

	rec, resp := env.call(t, "creatorfund_getVote", getVoteParams{Voter: voter(2).String(), Post: post.Address}, "")
	if rec.Code != http.StatusNotFound || resp.Error.Code != codeNotFound {
		t.Fatalf("expected missing vote to be not found, got %d %+v", rec.Code, resp.Error)
	}

	_, resp = env.call(t, "creatorfund_getPost", addressParams{Address: post.Address}, "")
	var current PostResult
	decodeResult(t, resp, &current)
	if current.UpVotes != 1 || current.DownVotes != 0 {
		t.Fatalf("unexpected counters %+v", current)
	}

	_, resp = env.call(t, "creatorfund_createPost", createPostParams{
		Caller:  testAuthor.String(),
		Title:   "first",
		Content: "again",
	}, testToken)
	require.Equal(t, mustCode(t, creatorfund.ErrPostAlreadyExists), programCode(t, resp))
}

func TestGetCreatorWallet(t *testing.T) {
	env := newTestEnv(t, ServerConfig{})
	_, resp := env.call(t, "creatorfund_getCreatorWallet", getCreatorWalletParams{Creator: testAuthor.String()}, "")
	var wallet CreatorWalletResult
	decodeResult(t, resp, &wallet)
	require.Equal(t, testVault.String(), wallet.VaultTokenAccount)
	require.Equal(t, testMint.String(), wallet.Mint)
	require.Equal(t, testVaultAuthority().String(), wallet.VaultAuthority)

	_, resp = env.call(t, "creatorfund_getCreatorWallet", getCreatorWalletParams{Creator: testTipper.String()}, "")
	require.Equal(t, mustCode(t, creatorfund.ErrCreatorWalletNotFound), programCode(t, resp))
}

func TestClaimRewardOverRPC(t *testing.T) {
	env := newTestEnv(t, ServerConfig{AuthToken: testToken})
	post := createPost(t, env, "popular")
	postAddr := crypto.MustDecodeAddress(post.Address)

	claim := claimRewardParams{
		Caller:                   testAuthor.String(),
		Post:                     post.Address,
		FundTokenAccount:         testFund.String(),
		FundAuthority:            testFundAuthority.String(),
		CreatorVaultTokenAccount: testVault.String(),
		Signers:                  []string{testFundAuthority.String()},
	}
	_, resp := env.call(t, "creatorfund_claimReward", claim, testToken)
	require.Equal(t, mustCode(t, creatorfund.ErrThresholdNotMet), programCode(t, resp))

	for i := 0; i < int(creatorfund.TargetNumberOfUpvotes); i++ {
		_, _, err := env.engine.CastVote(context.Background(), voter(i), postAddr, creatorfund.VoteTypeUpVote)
		require.NoError(t, err)
	}

	_, resp = env.call(t, "creatorfund_claimReward", claim, testToken)
	var result ClaimRewardResult
	decodeResult(t, resp, &result)
	require.True(t, result.Rewarded)
	require.Equal(t, "100000000", result.Amount)

	_, resp = env.call(t, "token_getAccount", addressParams{Address: testVault.String()}, "")
	var vault TokenAccountResult
	decodeResult(t, resp, &vault)
	require.Equal(t, "5100000000", vault.Amount)

	_, resp = env.call(t, "creatorfund_claimReward", claim, testToken)
	require.Equal(t, mustCode(t, creatorfund.ErrAlreadyRewarded), programCode(t, resp))

	_, resp = env.call(t, "creatorfund_getPost", addressParams{Address: post.Address}, "")
	var rewarded PostResult
	decodeResult(t, resp, &rewarded)
	require.Equal(t, "Rewarded", rewarded.RewardState)
}

func TestClaimRewardWithoutFundSignature(t *testing.T) {
	env := newTestEnv(t, ServerConfig{AuthToken: testToken})
	post := createPost(t, env, "unsigned")
	postAddr := crypto.MustDecodeAddress(post.Address)
	for i := 0; i < int(creatorfund.TargetNumberOfUpvotes); i++ {
		_, _, err := env.engine.CastVote(context.Background(), voter(i), postAddr, creatorfund.VoteTypeUpVote)
		require.NoError(t, err)
	}
	_, resp := env.call(t, "creatorfund_claimReward", claimRewardParams{
		Caller:                   testAuthor.String(),
		Post:                     post.Address,
		FundTokenAccount:         testFund.String(),
		FundAuthority:            testFundAuthority.String(),
		CreatorVaultTokenAccount: testVault.String(),
	}, testToken)
	require.NotNil(t, resp.Error)
	require.Equal(t, codeTransferFailed, resp.Error.Code)
}

func TestTipOverRPC(t *testing.T) {
	env := newTestEnv(t, ServerConfig{AuthToken: testToken})
	post := createPost(t, env, "tippable")

	_, resp := env.call(t, "creatorfund_tip", tipParams{
		Caller:      testTipper.String(),
		From:        testTipperTokens.String(),
		To:          testAuthorTokens.String(),
		Mint:        testMint.String(),
		CreatorPost: post.Address,
		Amount:      "2",
	}, testToken)
	var tip TipResult
	decodeResult(t, resp, &tip)
	require.Equal(t, "2000000000", tip.Amount)

	_, resp = env.call(t, "creatorfund_tip", tipParams{
		Caller:      testAuthor.String(),
		From:        testVault.String(),
		To:          testAuthorTokens.String(),
		Mint:        testMint.String(),
		CreatorPost: post.Address,
		Amount:      "1",
		FromVault:   true,
	}, testToken)
	decodeResult(t, resp, &tip)
	require.Equal(t, "1000000000", tip.Amount)

	_, resp = env.call(t, "token_getAccount", addressParams{Address: testAuthorTokens.String()}, "")
	var account TokenAccountResult
	decodeResult(t, resp, &account)
	require.Equal(t, "3000000000", account.Amount)

	_, resp = env.call(t, "creatorfund_tip", tipParams{
		Caller:      testTipper.String(),
		From:        testTipperTokens.String(),
		To:          testAuthorTokens.String(),
		Mint:        testMint.String(),
		CreatorPost: post.Address,
		Amount:      "0",
	}, testToken)
	require.Equal(t, mustCode(t, creatorfund.ErrInvalidTipAmount), programCode(t, resp))

	rec, resp := env.call(t, "creatorfund_tip", tipParams{
		Caller:      testTipper.String(),
		From:        testTipperTokens.String(),
		To:          testAuthorTokens.String(),
		Mint:        testMint.String(),
		CreatorPost: post.Address,
		Amount:      "-1",
	}, testToken)
	if rec.Code != http.StatusBadRequest || resp.Error.Code != codeInvalidParams {
		t.Fatalf("expected negative amount to be rejected, got %d %+v", rec.Code, resp.Error)
	}
}
