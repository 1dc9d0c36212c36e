// Package creatorfund implements the creator fund program: authors publish
// posts, participants vote on them, authors collect a fixed reward once a post
// reaches the up-vote threshold, and any author can be tipped.
//
// Every operation executes as one runtime transaction. Uniqueness of posts and
// votes comes from allocating at a derived address, payouts go through the
// token program's checked transfer, and nothing is held in process memory.
package creatorfund

import (
	"context"
	"errors"
	"fmt"

	"creatorfund/core/runtime"
	"creatorfund/core/state"
	"creatorfund/crypto"
)

var errNilRuntime = errors.New("creator fund: runtime not configured")

type executor interface {
	Execute(ctx context.Context, tx *runtime.Transaction, handler runtime.Handler) error
}

type recordReader interface {
	Record(addr crypto.Address) (*state.Record, bool, error)
}

// Engine submits creator fund instructions to the host runtime and answers
// queries against committed state.
type Engine struct {
	exec  executor
	state recordReader
}

// NewEngine constructs an engine executing on rt.
func NewEngine(rt *runtime.Runtime) *Engine {
	if rt == nil {
		return &Engine{}
	}
	return &Engine{exec: rt, state: rt.State()}
}

func (e *Engine) ready() error {
	if e == nil || e.exec == nil || e.state == nil {
		return errNilRuntime
	}
	return nil
}

// loadProgramRecord checks ownership before decoding: a record at a derived
// address that another program wrote is never interpreted as ours.
func loadProgramRecord(rc *runtime.Context, addr crypto.Address, missing error) ([]byte, error) {
	rec, ok, err := rc.Load(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", missing, addr)
	}
	if rec.Owner != ProgramID {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotOwned, addr)
	}
	return rec.Data, nil
}

func loadPost(rc *runtime.Context, addr crypto.Address) (*Post, error) {
	raw, err := loadProgramRecord(rc, addr, ErrPostNotFound)
	if err != nil {
		return nil, err
	}
	return decodePost(raw)
}

func storePost(rc *runtime.Context, addr crypto.Address, p *Post) error {
	encoded, err := encodePost(p)
	if err != nil {
		return err
	}
	return rc.Store(addr, encoded)
}

func (e *Engine) committed(addr crypto.Address, missing error) ([]byte, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	rec, ok, err := e.state.Record(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", missing, addr)
	}
	if rec.Owner != ProgramID {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotOwned, addr)
	}
	return rec.Data, nil
}

// Post returns the committed post at addr.
func (e *Engine) Post(addr crypto.Address) (*Post, error) {
	raw, err := e.committed(addr, ErrPostNotFound)
	if err != nil {
		return nil, err
	}
	return decodePost(raw)
}

// ErrVoteNotFound is returned by vote queries; it never fails an instruction.
var ErrVoteNotFound = errors.New("creator fund: vote not found")

// Vote returns the committed vote at addr.
func (e *Engine) Vote(addr crypto.Address) (*Vote, error) {
	raw, err := e.committed(addr, ErrVoteNotFound)
	if err != nil {
		return nil, err
	}
	return decodeVote(raw)
}

// HasVoted reports whether voter has a vote recorded on post.
func (e *Engine) HasVoted(voter, post crypto.Address) (bool, error) {
	addr, _, err := VoteAddress(voter, post)
	if err != nil {
		return false, err
	}
	_, err = e.Vote(addr)
	if errors.Is(err, ErrVoteNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CreatorWallet returns the committed wallet record at addr.
func (e *Engine) CreatorWallet(addr crypto.Address) (*CreatorWallet, error) {
	raw, err := e.committed(addr, ErrCreatorWalletNotFound)
	if err != nil {
		return nil, err
	}
	return decodeCreatorWallet(raw)
}
