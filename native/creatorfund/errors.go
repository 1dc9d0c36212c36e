package creatorfund

import (
	"errors"
	"fmt"
)

var (
	ErrPostTitleRequired   = errors.New("creator fund: post title is required")
	ErrPostTitleTooLong    = errors.New("creator fund: post title is too long")
	ErrPostContentRequired = errors.New("creator fund: post content is required")
	ErrPostContentTooLong  = errors.New("creator fund: post content is too long")
	ErrAlreadyVoted        = errors.New("creator fund: already voted on this post")
	ErrVoteOverflow        = errors.New("creator fund: vote count overflow")
	ErrInvalidCreator      = errors.New("creator fund: invalid creator")
	ErrCreatorHasNoPosts   = errors.New("creator fund: creator has no posts")

	// Reward settlement failures. All of them match ErrInvalidCreator.
	ErrThresholdNotMet       = fmt.Errorf("%w: up-vote threshold not met", ErrInvalidCreator)
	ErrCreatorMismatch       = fmt.Errorf("%w: caller is not the post author", ErrInvalidCreator)
	ErrAlreadyRewarded       = fmt.Errorf("%w: post already rewarded", ErrInvalidCreator)
	ErrFundAuthorityMismatch = fmt.Errorf("%w: fund account not owned by fund authority", ErrInvalidCreator)
	ErrVaultMismatch         = fmt.Errorf("%w: vault account does not match creator wallet", ErrInvalidCreator)
	ErrWalletMintMismatch    = fmt.Errorf("%w: token mint does not match creator wallet", ErrInvalidCreator)
	ErrInvalidWalletBump     = fmt.Errorf("%w: creator wallet bumps do not reproduce its addresses", ErrInvalidCreator)
	ErrCreatorWalletNotFound = fmt.Errorf("%w: creator wallet not provisioned", ErrInvalidCreator)

	ErrPostAlreadyExists            = errors.New("creator fund: post already exists")
	ErrPostNotFound                 = errors.New("creator fund: post not found")
	ErrAccountNotOwned              = errors.New("creator fund: account not owned by the creator fund program")
	ErrAccountDiscriminatorMismatch = errors.New("creator fund: account discriminator mismatch")
	ErrInvalidVoteType              = errors.New("creator fund: invalid vote type")
	ErrInvalidTipAmount             = errors.New("creator fund: tip amount must be positive")
	ErrTipAuthorityMismatch         = errors.New("creator fund: tip source not owned by authority")
	ErrTipMintMismatch              = errors.New("creator fund: tip token mint mismatch")
	ErrTipAmountOverflow            = errors.New("creator fund: tip amount overflows after decimal scaling")
)

// errorCodes lists program errors in code order starting at 6000. Specific
// errors precede ErrInvalidCreator so a wrapped reward failure reports its own
// code rather than the family's.
var errorCodes = []error{
	ErrPostTitleRequired,
	ErrPostTitleTooLong,
	ErrPostContentRequired,
	ErrPostContentTooLong,
	ErrAlreadyVoted,
	ErrVoteOverflow,
	ErrCreatorHasNoPosts,
	ErrThresholdNotMet,
	ErrCreatorMismatch,
	ErrAlreadyRewarded,
	ErrFundAuthorityMismatch,
	ErrVaultMismatch,
	ErrWalletMintMismatch,
	ErrInvalidWalletBump,
	ErrCreatorWalletNotFound,
	ErrPostAlreadyExists,
	ErrPostNotFound,
	ErrAccountNotOwned,
	ErrAccountDiscriminatorMismatch,
	ErrInvalidVoteType,
	ErrInvalidTipAmount,
	ErrTipAuthorityMismatch,
	ErrTipMintMismatch,
	ErrTipAmountOverflow,
	ErrInvalidCreator,
}

// ErrorCodeBase is the code assigned to the first program error.
const ErrorCodeBase = 6000

// ErrorCode returns the stable numeric code clients use to tell program
// failures apart.
func ErrorCode(err error) (uint32, bool) {
	if err == nil {
		return 0, false
	}
	for i, known := range errorCodes {
		if errors.Is(err, known) {
			return ErrorCodeBase + uint32(i), true
		}
	}
	return 0, false
}
