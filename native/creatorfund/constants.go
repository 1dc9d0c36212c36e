package creatorfund

import "creatorfund/crypto"

// ProgramID is the address the creator fund program runs under. Every record
// address below is derived from it.
var ProgramID = crypto.MustDecodeAddress("5fHuxe7VZB3APbJ5AV4jbcFea2gTBHVS8VVQfSu42jdS")

const (
	// TargetNumberOfUpvotes is the up-vote count that makes a post's author
	// eligible for the creator reward.
	TargetNumberOfUpvotes uint64 = 100
	// CreatorFundReward is the fixed reward in base units (0.1 of a nine
	// decimal token).
	CreatorFundReward uint64 = 100_000_000

	PostTitleMaxLen   = 100
	PostContentMaxLen = 280
)

const (
	PostSeed  = "post"
	VoteSeed  = "vote"
	StateSeed = "state"
	VaultSeed = "vault"
)
