package creatorfund

import (
	"strconv"

	"creatorfund/core/types"
	"creatorfund/crypto"
)

const (
	// EventTypePostCreated is emitted when an author publishes a post.
	EventTypePostCreated = "creatorfund.post.created"
	// EventTypeVoteCast is emitted when a participant votes on a post.
	EventTypeVoteCast = "creatorfund.vote.cast"
	// EventTypeRewardClaimed is emitted when an author collects the creator reward.
	EventTypeRewardClaimed = "creatorfund.reward.claimed"
	// EventTypeTipSent is emitted when a user tips a creator.
	EventTypeTipSent = "creatorfund.tip.sent"
)

// PostCreatedEvent returns the structured payload for a new post.
func PostCreatedEvent(post crypto.Address, p *Post) *types.Event {
	return &types.Event{
		Type: EventTypePostCreated,
		Attributes: map[string]string{
			"post":      post.String(),
			"author":    p.Author.String(),
			"title":     p.Title,
			"createdAt": strconv.FormatUint(p.CreatedAt, 10),
		},
	}
}

// VoteCastEvent returns the structured payload for a vote and the post's
// counters after it was applied.
func VoteCastEvent(vote crypto.Address, v *Vote, p *Post) *types.Event {
	return &types.Event{
		Type: EventTypeVoteCast,
		Attributes: map[string]string{
			"vote":      vote.String(),
			"post":      v.Post.String(),
			"voter":     v.Voter.String(),
			"voteType":  v.VoteType.String(),
			"upVotes":   strconv.FormatUint(p.UpVotes, 10),
			"downVotes": strconv.FormatUint(p.DownVotes, 10),
		},
	}
}

// RewardClaimedEvent captures a creator reward payout.
func RewardClaimedEvent(post, creator, vault crypto.Address, amount uint64) *types.Event {
	return &types.Event{
		Type: EventTypeRewardClaimed,
		Attributes: map[string]string{
			"post":    post.String(),
			"creator": creator.String(),
			"vault":   vault.String(),
			"amount":  strconv.FormatUint(amount, 10),
		},
	}
}

// TipSentEvent captures a tip. Amount is in base units.
func TipSentEvent(from, to, creator, post crypto.Address, amount uint64) *types.Event {
	return &types.Event{
		Type: EventTypeTipSent,
		Attributes: map[string]string{
			"from":    from.String(),
			"to":      to.String(),
			"creator": creator.String(),
			"post":    post.String(),
			"amount":  strconv.FormatUint(amount, 10),
		},
	}
}
