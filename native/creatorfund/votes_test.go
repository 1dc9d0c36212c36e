package creatorfund

import (
	"context"
	"errors"
	"math"
	"testing"

	"creatorfund/core/runtime"
	"creatorfund/crypto"
)

func TestCastVoteRecordsVoteAndCounter(t *testing.T) {
	f := newFixture(t)
	post := f.createPost(t, f.author, "Hello")
	voter := voterAddr(1)

	voteAddr, vote, err := f.engine.CastVote(context.Background(), voter, post, VoteTypeDownVote)
	if err != nil {
		t.Fatalf("vote: %v", err)
	}
	expected, bump, err := VoteAddress(voter, post)
	mustDo(t, err)
	if voteAddr != expected || vote.Bump != bump {
		t.Fatalf("vote not at derived address")
	}
	stored, err := f.engine.Vote(voteAddr)
	if err != nil {
		t.Fatalf("read vote: %v", err)
	}
	if stored.Voter != voter || stored.Post != post || stored.VoteType != VoteTypeDownVote {
		t.Fatalf("unexpected vote %+v", stored)
	}
	p := f.post(t, post)
	if p.UpVotes != 0 || p.DownVotes != 1 {
		t.Fatalf("unexpected counters up=%d down=%d", p.UpVotes, p.DownVotes)
	}
	voted, err := f.engine.HasVoted(voter, post)
	if err != nil || !voted {
		t.Fatalf("HasVoted = %v, %v", voted, err)
	}
	voted, err = f.engine.HasVoted(voterAddr(2), post)
	if err != nil || voted {
		t.Fatalf("HasVoted for non-voter = %v, %v", voted, err)
	}
	evts := f.recorder.OfType(EventTypeVoteCast)
	if len(evts) != 1 || evts[0].Attributes["voteType"] != "DownVote" || evts[0].Attributes["downVotes"] != "1" {
		t.Fatalf("unexpected vote events %+v", evts)
	}
}

func TestCastVoteRejectsSecondVote(t *testing.T) {
	f := newFixture(t)
	post := f.createPost(t, f.author, "Hello")
	voter := voterAddr(1)
	if _, _, err := f.engine.CastVote(context.Background(), voter, post, VoteTypeUpVote); err != nil {
		t.Fatalf("first vote: %v", err)
	}
	for _, vt := range []VoteType{VoteTypeUpVote, VoteTypeDownVote} {
		if _, _, err := f.engine.CastVote(context.Background(), voter, post, vt); !errors.Is(err, ErrAlreadyVoted) {
			t.Fatalf("expected already voted for %s, got %v", vt, err)
		}
	}
	p := f.post(t, post)
	if p.UpVotes != 1 || p.DownVotes != 0 {
		t.Fatalf("failed votes changed counters: up=%d down=%d", p.UpVotes, p.DownVotes)
	}
	if n := len(f.recorder.OfType(EventTypeVoteCast)); n != 1 {
		t.Fatalf("expected one vote event, got %d", n)
	}
}

func TestCastVoteRequiresPost(t *testing.T) {
	f := newFixture(t)
	missing := addr(0x99)
	if _, _, err := f.engine.CastVote(context.Background(), voterAddr(1), missing, VoteTypeUpVote); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("expected post not found, got %v", err)
	}
	// A token account is a record, but not a post.
	if _, _, err := f.engine.CastVote(context.Background(), voterAddr(1), f.fund, VoteTypeUpVote); !errors.Is(err, ErrAccountNotOwned) {
		t.Fatalf("expected not owned, got %v", err)
	}
	// A creator wallet is ours, but not a post.
	if _, _, err := f.engine.CastVote(context.Background(), voterAddr(1), f.wallet, VoteTypeUpVote); !errors.Is(err, ErrAccountDiscriminatorMismatch) {
		t.Fatalf("expected discriminator mismatch, got %v", err)
	}
	voted, err := f.engine.HasVoted(voterAddr(1), missing)
	if err != nil || voted {
		t.Fatalf("failed vote left a record: %v %v", voted, err)
	}
}

func TestCastVoteRejectsUnknownType(t *testing.T) {
	f := newFixture(t)
	post := f.createPost(t, f.author, "Hello")
	if _, _, err := f.engine.CastVote(context.Background(), voterAddr(1), post, VoteType(7)); !errors.Is(err, ErrInvalidVoteType) {
		t.Fatalf("expected invalid vote type, got %v", err)
	}
}

func TestCastVoteOverflowLeavesNoVote(t *testing.T) {
	f := newFixture(t)
	post := f.createPost(t, f.author, "Hello")

	// Force the counter to its maximum through the program itself.
	p := f.post(t, post)
	p.UpVotes = math.MaxUint64
	tx := &runtime.Transaction{ProgramID: ProgramID, Instruction: "seed", Accounts: []runtime.AccountMeta{runtime.Writable(post)}}
	mustDo(t, f.rt.Execute(context.Background(), tx, func(rc *runtime.Context) error {
		return storePost(rc, post, p)
	}))

	voter := voterAddr(3)
	if _, _, err := f.engine.CastVote(context.Background(), voter, post, VoteTypeUpVote); !errors.Is(err, ErrVoteOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
	voted, err := f.engine.HasVoted(voter, post)
	if err != nil || voted {
		t.Fatalf("overflowed vote left an orphaned vote record")
	}
	// The other counter still accepts votes.
	if _, _, err := f.engine.CastVote(context.Background(), voter, post, VoteTypeDownVote); err != nil {
		t.Fatalf("down vote after failed up vote: %v", err)
	}
}

func TestVoteCountsMatchVoteRecords(t *testing.T) {
	f := newFixture(t)
	post := f.createPost(t, f.author, "Hello")
	var voters []crypto.Address
	for i := 0; i < 12; i++ {
		voter := voterAddr(i)
		vt := VoteTypeUpVote
		if i%3 == 0 {
			vt = VoteTypeDownVote
		}
		if _, _, err := f.engine.CastVote(context.Background(), voter, post, vt); err != nil {
			t.Fatalf("vote %d: %v", i, err)
		}
		// Replays must not move the counters.
		if _, _, err := f.engine.CastVote(context.Background(), voter, post, vt); !errors.Is(err, ErrAlreadyVoted) {
			t.Fatalf("replayed vote %d: expected ErrAlreadyVoted, got %v", i, err)
		}
		voters = append(voters, voter)
	}
	records := 0
	for _, voter := range voters {
		voted, err := f.engine.HasVoted(voter, post)
		mustDo(t, err)
		if voted {
			records++
		}
	}
	p := f.post(t, post)
	if p.UpVotes+p.DownVotes != uint64(records) {
		t.Fatalf("counters %d+%d disagree with %d vote records", p.UpVotes, p.DownVotes, records)
	}
	if p.UpVotes != 8 || p.DownVotes != 4 {
		t.Fatalf("unexpected split up=%d down=%d", p.UpVotes, p.DownVotes)
	}
}

func TestParseVoteType(t *testing.T) {
	for input, want := range map[string]VoteType{"up": VoteTypeUpVote, "UpVote": VoteTypeUpVote, " down ": VoteTypeDownVote, "downvote": VoteTypeDownVote} {
		got, err := ParseVoteType(input)
		if err != nil || got != want {
			t.Fatalf("ParseVoteType(%q) = %v, %v", input, got, err)
		}
	}
	if _, err := ParseVoteType("sideways"); !errors.Is(err, ErrInvalidVoteType) {
		t.Fatalf("expected invalid vote type, got %v", err)
	}
}
