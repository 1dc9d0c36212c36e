package rpc

import (
	"context"
	"encoding/json"
	"strconv"

	"creatorfund/crypto"
	"creatorfund/native/creatorfund"
)

type createPostParams struct {
	Caller    string `json:"caller"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Community string `json:"community,omitempty"`
}

type voteParams struct {
	Caller   string `json:"caller"`
	Post     string `json:"post"`
	VoteType string `json:"voteType"`
}

type claimRewardParams struct {
	Caller                   string   `json:"caller"`
	Post                     string   `json:"post"`
	FundTokenAccount         string   `json:"fundTokenAccount"`
	FundAuthority            string   `json:"fundAuthority"`
	CreatorWallet            string   `json:"creatorWallet,omitempty"`
	CreatorVaultTokenAccount string   `json:"creatorVaultTokenAccount"`
	Signers                  []string `json:"signers,omitempty"`
}

type tipParams struct {
	Caller      string `json:"caller"`
	From        string `json:"from"`
	To          string `json:"to"`
	Mint        string `json:"mint"`
	Authority   string `json:"authority,omitempty"`
	CreatorPost string `json:"creatorPost"`
	Amount      string `json:"amount"`
	// FromVault spends from the caller's creator vault; Authority is then the
	// caller's derived vault authority.
	FromVault bool `json:"fromVault,omitempty"`
}

type addressParams struct {
	Address string `json:"address,omitempty"`
}

type getVoteParams struct {
	Address string `json:"address,omitempty"`
	Voter   string `json:"voter,omitempty"`
	Post    string `json:"post,omitempty"`
}

type getCreatorWalletParams struct {
	Address string `json:"address,omitempty"`
	Creator string `json:"creator,omitempty"`
}

func (s *Server) handleCreatePost(ctx context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params createPostParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	caller, failure := parseAddress("caller", params.Caller)
	if failure != nil {
		return nil, failure
	}
	community, failure := parseOptionalAddress("community", params.Community)
	if failure != nil {
		return nil, failure
	}
	addr, post, err := s.engine.CreatePost(ctx, caller, creatorfund.CreatePostParams{
		Title:     params.Title,
		Content:   params.Content,
		Community: community,
	})
	if err != nil {
		return nil, failureFromError("failed to create post", err)
	}
	return formatPost(addr, post), nil
}

func (s *Server) handleVote(ctx context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params voteParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	caller, failure := parseAddress("caller", params.Caller)
	if failure != nil {
		return nil, failure
	}
	post, failure := parseAddress("post", params.Post)
	if failure != nil {
		return nil, failure
	}
	voteType, err := creatorfund.ParseVoteType(params.VoteType)
	if err != nil {
		return nil, failureFromError("invalid vote type", err)
	}
	addr, vote, err := s.engine.CastVote(ctx, caller, post, voteType)
	if err != nil {
		return nil, failureFromError("failed to cast vote", err)
	}
	return formatVote(addr, vote), nil
}

func (s *Server) handleClaimReward(ctx context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params claimRewardParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	caller, failure := parseAddress("caller", params.Caller)
	if failure != nil {
		return nil, failure
	}
	claim := creatorfund.ClaimRewardParams{}
	required := []struct {
		name  string
		value string
		out   *crypto.Address
	}{
		{"post", params.Post, &claim.Post},
		{"fundTokenAccount", params.FundTokenAccount, &claim.FundTokenAccount},
		{"fundAuthority", params.FundAuthority, &claim.FundAuthority},
		{"creatorVaultTokenAccount", params.CreatorVaultTokenAccount, &claim.CreatorVaultTokenAccount},
	}
	for _, field := range required {
		addr, failure := parseAddress(field.name, field.value)
		if failure != nil {
			return nil, failure
		}
		*field.out = addr
	}
	if claim.CreatorWallet, failure = parseOptionalAddress("creatorWallet", params.CreatorWallet); failure != nil {
		return nil, failure
	}
	for _, value := range params.Signers {
		signer, failure := parseAddress("signer", value)
		if failure != nil {
			return nil, failure
		}
		claim.Signers = append(claim.Signers, signer)
	}
	if err := s.engine.ClaimReward(ctx, caller, claim); err != nil {
		return nil, failureFromError("failed to claim reward", err)
	}
	return ClaimRewardResult{
		Post:     claim.Post.String(),
		Rewarded: true,
		Amount:   strconv.FormatUint(creatorfund.CreatorFundReward, 10),
	}, nil
}

func (s *Server) handleTip(ctx context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params tipParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	caller, failure := parseAddress("caller", params.Caller)
	if failure != nil {
		return nil, failure
	}
	from, failure := parseAddress("from", params.From)
	if failure != nil {
		return nil, failure
	}
	to, failure := parseAddress("to", params.To)
	if failure != nil {
		return nil, failure
	}
	mint, failure := parseAddress("mint", params.Mint)
	if failure != nil {
		return nil, failure
	}
	post, failure := parseAddress("creatorPost", params.CreatorPost)
	if failure != nil {
		return nil, failure
	}
	amount, failure := parseAmount(params.Amount)
	if failure != nil {
		return nil, failure
	}
	tip := creatorfund.TipParams{From: from, To: to, Mint: mint, CreatorPost: post, Amount: amount, Authority: caller}
	if params.FromVault {
		wallet, _, err := creatorfund.CreatorWalletAddress(caller)
		if err != nil {
			return nil, failureFromError("failed to derive creator wallet", err)
		}
		authority, bump, err := creatorfund.VaultAuthorityAddress(wallet)
		if err != nil {
			return nil, failureFromError("failed to derive vault authority", err)
		}
		tip.Authority = authority
		tip.AuthoritySeeds = creatorfund.VaultSignerSeeds(wallet, bump)
	} else if params.Authority != "" {
		authority, failure := parseAddress("authority", params.Authority)
		if failure != nil {
			return nil, failure
		}
		tip.Authority = authority
	}
	moved, err := s.engine.Tip(ctx, caller, tip)
	if err != nil {
		return nil, failureFromError("failed to tip", err)
	}
	return TipResult{From: from.String(), To: to.String(), Amount: strconv.FormatUint(moved, 10)}, nil
}

func (s *Server) handleGetPost(_ context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params addressParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	addr, failure := parseAddress("address", params.Address)
	if failure != nil {
		return nil, failure
	}
	post, err := s.engine.Post(addr)
	if err != nil {
		return nil, failureFromError("failed to load post", err)
	}
	return formatPost(addr, post), nil
}

func (s *Server) handleGetVote(_ context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params getVoteParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	addr, failure := parseOptionalAddress("address", params.Address)
	if failure != nil {
		return nil, failure
	}
	if addr.IsZero() {
		voter, failure := parseAddress("voter", params.Voter)
		if failure != nil {
			return nil, failure
		}
		post, failure := parseAddress("post", params.Post)
		if failure != nil {
			return nil, failure
		}
		derived, _, err := creatorfund.VoteAddress(voter, post)
		if err != nil {
			return nil, failureFromError("failed to derive vote address", err)
		}
		addr = derived
	}
	vote, err := s.engine.Vote(addr)
	if err != nil {
		return nil, failureFromError("failed to load vote", err)
	}
	return formatVote(addr, vote), nil
}

func (s *Server) handleGetCreatorWallet(_ context.Context, raw json.RawMessage) (interface{}, *rpcFailure) {
	var params getCreatorWalletParams
	if failure := decodeParams(raw, &params); failure != nil {
		return nil, failure
	}
	addr, failure := parseOptionalAddress("address", params.Address)
	if failure != nil {
		return nil, failure
	}
	if addr.IsZero() {
		creator, failure := parseAddress("creator", params.Creator)
		if failure != nil {
			return nil, failure
		}
		derived, _, err := creatorfund.CreatorWalletAddress(creator)
		if err != nil {
			return nil, failureFromError("failed to derive creator wallet", err)
		}
		addr = derived
	}
	wallet, err := s.engine.CreatorWallet(addr)
	if err != nil {
		return nil, failureFromError("failed to load creator wallet", err)
	}
	authority, _, err := creatorfund.VaultAuthorityAddress(addr)
	if err != nil {
		return nil, failureFromError("failed to derive vault authority", err)
	}
	return CreatorWalletResult{
		Address:           addr.String(),
		WalletBump:        wallet.WalletBump,
		StateBump:         wallet.StateBump,
		Mint:              wallet.Mint.String(),
		VaultTokenAccount: wallet.VaultTokenAccount.String(),
		VaultAuthority:    authority.String(),
	}, nil
}
