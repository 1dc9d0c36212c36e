package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"creatorfund/crypto"
	"creatorfund/native/creatorfund"
	"creatorfund/native/token"
)

type PostResult struct {
	Address     string `json:"address"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	Community   string `json:"community,omitempty"`
	UpVotes     uint64 `json:"upVotes"`
	DownVotes   uint64 `json:"downVotes"`
	CreatedAt   uint64 `json:"createdAt"`
	Rewarded    bool   `json:"rewarded"`
	RewardState string `json:"rewardState"`
	Bump        uint8  `json:"bump"`
}

type VoteResult struct {
	Address  string `json:"address"`
	Voter    string `json:"voter"`
	Post     string `json:"post"`
	VoteType string `json:"voteType"`
	Bump     uint8  `json:"bump"`
}

type CreatorWalletResult struct {
	Address           string `json:"address"`
	WalletBump        uint8  `json:"walletBump"`
	StateBump         uint8  `json:"stateBump"`
	Mint              string `json:"mint"`
	VaultTokenAccount string `json:"vaultTokenAccount"`
	VaultAuthority    string `json:"vaultAuthority"`
}

type ClaimRewardResult struct {
	Post     string `json:"post"`
	Rewarded bool   `json:"rewarded"`
	Amount   string `json:"amount"`
}

type TipResult struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type TokenAccountResult struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Amount  string `json:"amount"`
}

type MintResult struct {
	Address       string `json:"address"`
	Decimals      uint8  `json:"decimals"`
	Supply        string `json:"supply"`
	MintAuthority string `json:"mintAuthority,omitempty"`
}

func formatMint(addr crypto.Address, m *token.Mint) MintResult {
	res := MintResult{
		Address:  addr.String(),
		Decimals: m.Decimals,
		Supply:   strconv.FormatUint(m.Supply, 10),
	}
	if !m.MintAuthority.IsZero() {
		res.MintAuthority = m.MintAuthority.String()
	}
	return res
}

func formatPost(addr crypto.Address, p *creatorfund.Post) PostResult {
	res := PostResult{
		Address:     addr.String(),
		Title:       p.Title,
		Content:     p.Content,
		Author:      p.Author.String(),
		UpVotes:     p.UpVotes,
		DownVotes:   p.DownVotes,
		CreatedAt:   p.CreatedAt,
		Rewarded:    p.Rewarded,
		RewardState: p.RewardState().String(),
		Bump:        p.Bump,
	}
	if !p.Community.IsZero() {
		res.Community = p.Community.String()
	}
	return res
}

func formatVote(addr crypto.Address, v *creatorfund.Vote) VoteResult {
	return VoteResult{
		Address:  addr.String(),
		Voter:    v.Voter.String(),
		Post:     v.Post.String(),
		VoteType: v.VoteType.String(),
		Bump:     v.Bump,
	}
}

func formatTokenAccount(addr crypto.Address, a *token.Account) TokenAccountResult {
	return TokenAccountResult{
		Address: addr.String(),
		Mint:    a.Mint.String(),
		Owner:   a.Owner.String(),
		Amount:  strconv.FormatUint(a.Amount, 10),
	}
}

func decodeParams(raw json.RawMessage, out interface{}) *rpcFailure {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return invalidParams("invalid parameter object", err)
	}
	return nil
}

func parseAddress(field, value string) (crypto.Address, *rpcFailure) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return crypto.Address{}, invalidParams(fmt.Sprintf("%s is required", field), nil)
	}
	addr, err := crypto.DecodeAddress(trimmed)
	if err != nil {
		return crypto.Address{}, invalidParams(fmt.Sprintf("invalid %s address", field), err)
	}
	return addr, nil
}

func parseOptionalAddress(field, value string) (crypto.Address, *rpcFailure) {
	if strings.TrimSpace(value) == "" {
		return crypto.Address{}, nil
	}
	return parseAddress(field, value)
}

func parseAmount(value string) (uint64, *rpcFailure) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, invalidParams("amount is required", nil)
	}
	amount, err := strconv.ParseUint(trimmed, 10, 64)
	if err != nil {
		return 0, invalidParams("amount must be a non-negative integer", err)
	}
	return amount, nil
}
