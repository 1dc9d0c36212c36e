package creatorfund

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"creatorfund/crypto/pda"
)

func TestDerivedAddressesAreStable(t *testing.T) {
	author := addr(1)
	first, bump, err := PostAddress("Hello", author)
	mustDo(t, err)
	again, againBump, err := PostAddress("Hello", author)
	mustDo(t, err)
	if first != again || bump != againBump {
		t.Fatalf("post address not deterministic")
	}
	if !pda.Verify(first, postSeeds("Hello", author), bump, ProgramID) {
		t.Fatalf("post bump does not reproduce address")
	}
	other, _, err := PostAddress("Hello", addr(2))
	mustDo(t, err)
	if other == first {
		t.Fatalf("different authors share a post address")
	}
	// Titles longer than a seed are hashed first.
	if _, _, err := PostAddress(strings.Repeat("x", PostTitleMaxLen), author); err != nil {
		t.Fatalf("long title: %v", err)
	}
	vote, _, err := VoteAddress(author, first)
	mustDo(t, err)
	if vote == first {
		t.Fatalf("vote collides with post")
	}
}

func TestRecordDiscriminators(t *testing.T) {
	encoded, err := EncodeCreatorWallet(&CreatorWallet{WalletBump: 254, StateBump: 253, Mint: addr(3), VaultTokenAccount: addr(4)})
	mustDo(t, err)
	wallet, err := decodeCreatorWallet(encoded)
	mustDo(t, err)
	if wallet.WalletBump != 254 || wallet.StateBump != 253 || wallet.Mint != addr(3) || wallet.VaultTokenAccount != addr(4) {
		t.Fatalf("unexpected wallet %+v", wallet)
	}
	if _, err := decodePost(encoded); !errors.Is(err, ErrAccountDiscriminatorMismatch) {
		t.Fatalf("expected discriminator mismatch, got %v", err)
	}
	if _, err := decodeVote([]byte{1, 2}); !errors.Is(err, ErrAccountDiscriminatorMismatch) {
		t.Fatalf("expected discriminator mismatch on short record, got %v", err)
	}
}

func TestErrorCodes(t *testing.T) {
	cases := []struct {
		err  error
		want uint32
	}{
		{ErrPostTitleRequired, 6000},
		{ErrVoteOverflow, 6005},
		{ErrThresholdNotMet, 6007},
		{fmt.Errorf("wrapped: %w", ErrAlreadyRewarded), 6009},
		{ErrInvalidCreator, ErrorCodeBase + uint32(len(errorCodes)-1)},
	}
	for _, tc := range cases {
		got, ok := ErrorCode(tc.err)
		if !ok || got != tc.want {
			t.Fatalf("ErrorCode(%v) = %d, %v; want %d", tc.err, got, ok, tc.want)
		}
	}
	if _, ok := ErrorCode(errors.New("other")); ok {
		t.Fatalf("foreign error mapped to a program code")
	}
	for _, err := range []error{ErrThresholdNotMet, ErrCreatorMismatch, ErrAlreadyRewarded, ErrVaultMismatch, ErrInvalidWalletBump} {
		if !errors.Is(err, ErrInvalidCreator) {
			t.Fatalf("%v is not in the invalid creator family", err)
		}
	}
}
