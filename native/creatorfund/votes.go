package creatorfund

import (
	"context"
	"errors"
	"math"

	"creatorfund/core/runtime"
	"creatorfund/core/state"
	"creatorfund/crypto"
	"creatorfund/observability/metrics"
)

// CastVote records voter's vote on post and bumps the matching counter. The
// vote record and the counter change commit together. A second vote by the
// same voter on the same post fails with ErrAlreadyVoted; there is no way to
// change or withdraw a vote.
func (e *Engine) CastVote(ctx context.Context, voter, post crypto.Address, voteType VoteType) (crypto.Address, *Vote, error) {
	if err := e.ready(); err != nil {
		return crypto.Address{}, nil, err
	}
	if !voteType.Valid() {
		return crypto.Address{}, nil, ErrInvalidVoteType
	}
	addr, bump, err := VoteAddress(voter, post)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	var cast *Vote
	tx := &runtime.Transaction{
		ProgramID:   ProgramID,
		Instruction: "vote",
		Signers:     []crypto.Address{voter},
		Accounts: []runtime.AccountMeta{
			runtime.Writable(post),
			runtime.Writable(addr),
		},
	}
	err = e.exec.Execute(ctx, tx, func(rc *runtime.Context) error {
		if err := rc.RequireSigner(voter); err != nil {
			return err
		}
		p, err := loadPost(rc, post)
		if err != nil {
			return err
		}
		vote := &Vote{Voter: voter, Post: post, VoteType: voteType, Bump: bump}
		encoded, err := encodeVote(vote)
		if err != nil {
			return err
		}
		if err := rc.Create(addr, encoded); err != nil {
			if errors.Is(err, state.ErrAccountInUse) {
				return ErrAlreadyVoted
			}
			return err
		}
		switch voteType {
		case VoteTypeUpVote:
			if p.UpVotes == math.MaxUint64 {
				return ErrVoteOverflow
			}
			p.UpVotes++
		case VoteTypeDownVote:
			if p.DownVotes == math.MaxUint64 {
				return ErrVoteOverflow
			}
			p.DownVotes++
		}
		if err := storePost(rc, post, p); err != nil {
			return err
		}
		rc.Emit(VoteCastEvent(addr, vote, p))
		cast = vote
		return nil
	})
	if err != nil {
		return crypto.Address{}, nil, err
	}
	metrics.Ledger().ObserveVote(voteType.String())
	return addr, cast, nil
}
