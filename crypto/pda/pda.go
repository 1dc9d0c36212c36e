// Package pda derives program addresses: deterministic account identities
// computed from seeds and a program id that have no corresponding private key.
// The derivation matches the host ledger bit for bit, so any party holding the
// same seeds can recompute and verify an address.
package pda

import (
	"crypto/sha256"
	"errors"

	"filippo.io/edwards25519"

	"creatorfund/crypto"
)

const (
	// MaxSeeds bounds the number of seeds per derivation, bump included.
	MaxSeeds = 16
	// MaxSeedLength bounds the byte length of a single seed.
	MaxSeedLength = 32
)

const marker = "ProgramDerivedAddress"

var (
	ErrMaxSeedLengthExceeded = errors.New("pda: seed exceeds maximum length")
	ErrTooManySeeds          = errors.New("pda: too many seeds")
	ErrInvalidSeeds          = errors.New("pda: seeds produce an on-curve address")
	ErrNoViableBump          = errors.New("pda: unable to find a viable bump")
)

// IsOnCurve reports whether b decodes to a point on the ed25519 curve, i.e.
// whether the identity could have a private key.
func IsOnCurve(b []byte) bool {
	if len(b) != crypto.AddressLength {
		return false
	}
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// CreateProgramAddress hashes seeds with the program id. Seeds that land on the
// curve are rejected.
func CreateProgramAddress(seeds [][]byte, programID crypto.Address) (crypto.Address, error) {
	if len(seeds) > MaxSeeds {
		return crypto.Address{}, ErrTooManySeeds
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return crypto.Address{}, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(marker))
	digest := h.Sum(nil)
	if IsOnCurve(digest) {
		return crypto.Address{}, ErrInvalidSeeds
	}
	return crypto.NewAddress(digest), nil
}

// FindProgramAddress searches bumps from 255 downward and returns the first
// off-curve address together with the bump that produced it.
func FindProgramAddress(seeds [][]byte, programID crypto.Address) (crypto.Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return crypto.Address{}, 0, ErrTooManySeeds
	}
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	bump := []byte{0}
	withBump[len(seeds)] = bump
	for b := 255; b >= 0; b-- {
		bump[0] = uint8(b)
		addr, err := CreateProgramAddress(withBump, programID)
		if err == nil {
			return addr, uint8(b), nil
		}
		if !errors.Is(err, ErrInvalidSeeds) {
			return crypto.Address{}, 0, err
		}
	}
	return crypto.Address{}, 0, ErrNoViableBump
}

// Verify recomputes the address for seeds plus bump and reports whether it
// equals expected.
func Verify(expected crypto.Address, seeds [][]byte, bump uint8, programID crypto.Address) bool {
	withBump := make([][]byte, 0, len(seeds)+1)
	withBump = append(withBump, seeds...)
	withBump = append(withBump, []byte{bump})
	addr, err := CreateProgramAddress(withBump, programID)
	if err != nil {
		return false
	}
	return addr == expected
}
