package creatorfund

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"creatorfund/core/runtime"
	"creatorfund/core/state"
	"creatorfund/crypto"
	"creatorfund/observability/metrics"
)

// CreatePostParams carries the user supplied fields of a new post. Community is
// optional.
type CreatePostParams struct {
	Title     string
	Content   string
	Community crypto.Address
}

// ValidatePost applies the post field rules in order. Lengths are character
// counts.
func ValidatePost(title, content string) error {
	if title == "" {
		return ErrPostTitleRequired
	}
	if utf8.RuneCountInString(title) > PostTitleMaxLen {
		return ErrPostTitleTooLong
	}
	if content == "" {
		return ErrPostContentRequired
	}
	if utf8.RuneCountInString(content) > PostContentMaxLen {
		return ErrPostContentTooLong
	}
	return nil
}

// CreatePost publishes a post authored by author, who must sign. The post
// lives at PostAddress(params.Title, author); publishing the same title twice
// fails with ErrPostAlreadyExists.
func (e *Engine) CreatePost(ctx context.Context, author crypto.Address, params CreatePostParams) (crypto.Address, *Post, error) {
	if err := e.ready(); err != nil {
		return crypto.Address{}, nil, err
	}
	if err := ValidatePost(params.Title, params.Content); err != nil {
		return crypto.Address{}, nil, err
	}
	addr, bump, err := PostAddress(params.Title, author)
	if err != nil {
		return crypto.Address{}, nil, err
	}
	var created *Post
	tx := &runtime.Transaction{
		ProgramID:   ProgramID,
		Instruction: "create_post",
		Signers:     []crypto.Address{author},
		Accounts:    []runtime.AccountMeta{runtime.Writable(addr)},
	}
	err = e.exec.Execute(ctx, tx, func(rc *runtime.Context) error {
		if err := rc.RequireSigner(author); err != nil {
			return err
		}
		post := &Post{
			Title:     params.Title,
			Content:   params.Content,
			Author:    author,
			Community: params.Community,
			CreatedAt: uint64(rc.Now()),
			Bump:      bump,
		}
		encoded, err := encodePost(post)
		if err != nil {
			return err
		}
		if err := rc.Create(addr, encoded); err != nil {
			if errors.Is(err, state.ErrAccountInUse) {
				return fmt.Errorf("%w: %w", ErrPostAlreadyExists, err)
			}
			return err
		}
		rc.Emit(PostCreatedEvent(addr, post))
		created = post
		return nil
	})
	if err != nil {
		return crypto.Address{}, nil, err
	}
	metrics.Ledger().ObservePostCreated()
	return addr, created, nil
}
