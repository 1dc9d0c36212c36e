package creatorfund

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
)

const discriminatorLen = 8

var (
	postDiscriminator   = discriminator("Post")
	voteDiscriminator   = discriminator("Vote")
	walletDiscriminator = discriminator("CreatorWallet")
)

// discriminator tags a record body with its type: the first eight bytes of
// sha256("account:<Name>").
func discriminator(name string) []byte {
	sum := sha256.Sum256([]byte("account:" + name))
	return sum[:discriminatorLen]
}

func encodeRecord(tag []byte, v interface{}) ([]byte, error) {
	body, err := rlp.EncodeToBytes(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(tag)+len(body))
	out = append(out, tag...)
	return append(out, body...), nil
}

func decodeRecord(tag []byte, raw []byte, v interface{}) error {
	if len(raw) < discriminatorLen || !bytes.Equal(raw[:discriminatorLen], tag) {
		return ErrAccountDiscriminatorMismatch
	}
	if err := rlp.DecodeBytes(raw[discriminatorLen:], v); err != nil {
		return fmt.Errorf("creator fund: decode record: %w", err)
	}
	return nil
}

func encodePost(p *Post) ([]byte, error) { return encodeRecord(postDiscriminator, p) }

func decodePost(raw []byte) (*Post, error) {
	p := new(Post)
	if err := decodeRecord(postDiscriminator, raw, p); err != nil {
		return nil, err
	}
	return p, nil
}

func encodeVote(v *Vote) ([]byte, error) { return encodeRecord(voteDiscriminator, v) }

func decodeVote(raw []byte) (*Vote, error) {
	v := new(Vote)
	if err := decodeRecord(voteDiscriminator, raw, v); err != nil {
		return nil, err
	}
	return v, nil
}

// EncodeCreatorWallet serializes a wallet record for provisioning.
func EncodeCreatorWallet(w *CreatorWallet) ([]byte, error) {
	return encodeRecord(walletDiscriminator, w)
}

func decodeCreatorWallet(raw []byte) (*CreatorWallet, error) {
	w := new(CreatorWallet)
	if err := decodeRecord(walletDiscriminator, raw, w); err != nil {
		return nil, err
	}
	return w, nil
}
