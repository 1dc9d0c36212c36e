package creatorfund

import (
	"crypto/sha256"

	"creatorfund/crypto"
	"creatorfund/crypto/pda"
)

func postSeeds(title string, author crypto.Address) [][]byte {
	// Titles can exceed the 32-byte seed limit, so the seed is their digest.
	digest := sha256.Sum256([]byte(title))
	return [][]byte{[]byte(PostSeed), digest[:], author.Bytes()}
}

func voteSeeds(voter, post crypto.Address) [][]byte {
	return [][]byte{[]byte(VoteSeed), voter.Bytes(), post.Bytes()}
}

func walletSeeds(creator crypto.Address) [][]byte {
	return [][]byte{[]byte(StateSeed), creator.Bytes()}
}

func vaultSeeds(wallet crypto.Address) [][]byte {
	return [][]byte{[]byte(VaultSeed), wallet.Bytes()}
}

func withBump(seeds [][]byte, bump uint8) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}

// PostAddress derives the address of the post titled title by author.
func PostAddress(title string, author crypto.Address) (crypto.Address, uint8, error) {
	return pda.FindProgramAddress(postSeeds(title, author), ProgramID)
}

// VoteAddress derives the address of voter's vote on post.
func VoteAddress(voter, post crypto.Address) (crypto.Address, uint8, error) {
	return pda.FindProgramAddress(voteSeeds(voter, post), ProgramID)
}

// CreatorWalletAddress derives the wallet state address of creator.
func CreatorWalletAddress(creator crypto.Address) (crypto.Address, uint8, error) {
	return pda.FindProgramAddress(walletSeeds(creator), ProgramID)
}

// VaultAuthorityAddress derives the signing identity of a creator wallet's
// vault. It has no key; the program proves it by re-deriving it.
func VaultAuthorityAddress(wallet crypto.Address) (crypto.Address, uint8, error) {
	return pda.FindProgramAddress(vaultSeeds(wallet), ProgramID)
}

// VaultSignerSeeds returns the seeds that authorize the vault authority of
// wallet in a signed invocation.
func VaultSignerSeeds(wallet crypto.Address, bump uint8) [][]byte {
	return withBump(vaultSeeds(wallet), bump)
}
