package widgets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/blogs"
)

// ToggleState is what a follow or share button shows and the call pressing it sends.
type ToggleState struct {
	Active bool   `json:"active"`
	Label  string `json:"label"`
	Tx     string `json:"tx"`
}

type relation struct {
	key      string
	check    func(ctx context.Context, q blogs.Querier, acc blogs.AccountID) (bool, error)
	allowed  func(acc blogs.AccountID) error
	on, off  blogs.Call
	labelOn  string // shown while inactive
	labelOff string
}

// Toggle is a two-state relationship between the signer and one item.
type Toggle struct {
	w   *Widgets
	rel relation
}

func (w *Widgets) FollowBlog(id uint64) *Toggle {
	return &Toggle{w: w, rel: relation{
		key:      fmt.Sprintf("blog/%d", id),
		on:       blogs.FollowBlog(id),
		off:      blogs.UnfollowBlog(id),
		labelOn:  "Follow blog",
		labelOff: "Unfollow blog",
		check: func(ctx context.Context, q blogs.Querier, acc blogs.AccountID) (bool, error) {
			return blogs.IsBlogFollowed(ctx, q, acc, id)
		},
	}}
}

func (w *Widgets) FollowAccount(target blogs.AccountID) *Toggle {
	return &Toggle{w: w, rel: relation{
		key:      fmt.Sprintf("account/%x", target[:]),
		on:       blogs.FollowAccount(target),
		off:      blogs.UnfollowAccount(target),
		labelOn:  "Follow account",
		labelOff: "Unfollow account",
		check: func(ctx context.Context, q blogs.Querier, acc blogs.AccountID) (bool, error) {
			return blogs.IsAccountFollowed(ctx, q, acc, target)
		},
		allowed: func(acc blogs.AccountID) error {
			if acc == target {
				return ErrOwnAction
			}
			return nil
		},
	}}
}

func (w *Widgets) SharePost(id uint64) *Toggle {
	return &Toggle{w: w, rel: relation{
		key:      fmt.Sprintf("post/%d", id),
		on:       blogs.SharePostCall(id),
		off:      blogs.UnsharePostCall(id),
		labelOn:  "Share post",
		labelOff: "Unshare post",
		check: func(ctx context.Context, q blogs.Querier, acc blogs.AccountID) (bool, error) {
			return blogs.IsPostShared(ctx, q, acc, id)
		},
	}}
}

func (w *Widgets) ShareComment(id uint64) *Toggle {
	return &Toggle{w: w, rel: relation{
		key:      fmt.Sprintf("comment/%d", id),
		on:       blogs.ShareCommentCall(id),
		off:      blogs.UnshareCommentCall(id),
		labelOn:  "Share comment",
		labelOff: "Unshare comment",
		check: func(ctx context.Context, q blogs.Querier, acc blogs.AccountID) (bool, error) {
			return blogs.IsCommentShared(ctx, q, acc, id)
		},
	}}
}

// StateFor reads the relationship for acc.
func (t *Toggle) StateFor(ctx context.Context, acc blogs.AccountID) (ToggleState, error) {
	active, err := t.rel.check(ctx, t.w.q, acc)
	if err != nil {
		return ToggleState{}, fmt.Errorf("read %s: %w", t.rel.key, err)
	}
	if active {
		return ToggleState{Active: true, Label: t.rel.labelOff, Tx: t.rel.off.Name}, nil
	}
	return ToggleState{Label: t.rel.labelOn, Tx: t.rel.on.Name}, nil
}

// State reads the relationship for the signer.
func (t *Toggle) State(ctx context.Context) (ToggleState, error) {
	tx, err := t.w.signer()
	if err != nil {
		return ToggleState{}, err
	}
	return t.StateFor(ctx, tx.Account())
}

// Toggle sends the call the current state implies and returns the state read after inclusion.
func (t *Toggle) Toggle(ctx context.Context) (ToggleState, error) {
	tx, err := t.w.signer()
	if err != nil {
		return ToggleState{}, err
	}
	if t.rel.allowed != nil {
		if err := t.rel.allowed(tx.Account()); err != nil {
			return ToggleState{}, err
		}
	}
	release, err := t.w.guard.acquire(t.rel.key)
	if err != nil {
		return ToggleState{}, err
	}
	defer release()

	cur, err := t.StateFor(ctx, tx.Account())
	if err != nil {
		return ToggleState{}, err
	}
	call := t.rel.on
	if cur.Active {
		call = t.rel.off
	}
	if _, err := tx.Submit(ctx, call); err != nil {
		t.w.log.Info("toggle failed", zap.String("tx", call.Name), zap.Error(err))
		return cur, err
	}
	return t.StateFor(ctx, tx.Account())
}
