package creatorfund

import (
	"fmt"
	"strings"

	"creatorfund/crypto"
)

// VoteType is the direction of a vote.
type VoteType uint8

const (
	VoteTypeUpVote VoteType = iota
	VoteTypeDownVote
)

func (v VoteType) String() string {
	switch v {
	case VoteTypeUpVote:
		return "UpVote"
	case VoteTypeDownVote:
		return "DownVote"
	default:
		return fmt.Sprintf("VoteType(%d)", uint8(v))
	}
}

// Valid reports whether v is a known vote type.
func (v VoteType) Valid() bool {
	return v == VoteTypeUpVote || v == VoteTypeDownVote
}

// ParseVoteType accepts "up", "upvote", "down" and "downvote" in any case.
func ParseVoteType(s string) (VoteType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "upvote":
		return VoteTypeUpVote, nil
	case "down", "downvote":
		return VoteTypeDownVote, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidVoteType, s)
	}
}

// RewardState is the observable reward lifecycle of a post.
type RewardState uint8

const (
	RewardNotEligible RewardState = iota
	RewardEligible
	RewardRewarded
)

func (s RewardState) String() string {
	switch s {
	case RewardNotEligible:
		return "NotEligible"
	case RewardEligible:
		return "Eligible"
	case RewardRewarded:
		return "Rewarded"
	default:
		return fmt.Sprintf("RewardState(%d)", uint8(s))
	}
}

// Post is a short piece of content. One exists per (author, title).
type Post struct {
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Author    crypto.Address `json:"author"`
	Community crypto.Address `json:"community"`
	UpVotes   uint64         `json:"upVotes"`
	DownVotes uint64         `json:"downVotes"`
	CreatedAt uint64         `json:"createdAt"`
	Rewarded  bool           `json:"rewarded"`
	Bump      uint8          `json:"bump"`
}

// RewardState derives the reward lifecycle from the stored counters and flag.
// Eligible is never stored.
func (p *Post) RewardState() RewardState {
	switch {
	case p.Rewarded:
		return RewardRewarded
	case p.UpVotes >= TargetNumberOfUpvotes:
		return RewardEligible
	default:
		return RewardNotEligible
	}
}

// Vote records one participant's vote on one post. Immutable once created.
type Vote struct {
	Voter    crypto.Address `json:"voter"`
	Post     crypto.Address `json:"post"`
	VoteType VoteType       `json:"voteType"`
	Bump     uint8          `json:"bump"`
}

// CreatorWallet binds a creator to the token vault that receives rewards. It
// is provisioned outside this program and only read here.
type CreatorWallet struct {
	WalletBump        uint8          `json:"walletBump"`
	StateBump         uint8          `json:"stateBump"`
	Mint              crypto.Address `json:"mint"`
	VaultTokenAccount crypto.Address `json:"vaultTokenAccount"`
}
