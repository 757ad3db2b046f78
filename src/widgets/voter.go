package widgets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/blogs"
)

// VoteState is the score of a post or comment and the reaction the account left on it, if any.
type VoteState struct {
	Score     int             `json:"score"`
	Upvotes   uint16          `json:"upvotes"`
	Downvotes uint16          `json:"downvotes"`
	Reaction  *blogs.Reaction `json:"reaction,omitempty"`
}

// Mine is the kind of the account's reaction, or "" when there is none.
func (s VoteState) Mine() string {
	if s.Reaction == nil {
		return ""
	}
	return s.Reaction.Kind.String()
}

type Voter struct {
	w      *Widgets
	target blogs.ReactionTarget
	id     uint64
}

func (w *Widgets) Voter(target blogs.ReactionTarget, id uint64) *Voter {
	return &Voter{w: w, target: target, id: id}
}

// VoteCall picks the call for pressing kind given the account's current reaction: create when
// there is none, update when it is the other kind, delete when it is the same kind.
func VoteCall(target blogs.ReactionTarget, id uint64, current *blogs.Reaction, kind blogs.ReactionKind) blogs.Call {
	switch {
	case current == nil:
		return blogs.CreateReaction(target, id, kind)
	case current.Kind != kind:
		return blogs.UpdateReaction(target, id, current.ID, kind)
	}
	return blogs.DeleteReaction(target, id, current.ID)
}

func (v *Voter) counts(ctx context.Context) (up, down uint16, err error) {
	switch v.target {
	case blogs.TargetComment:
		c, err := blogs.GetComment(ctx, v.w.q, v.id)
		if err != nil || c == nil {
			return 0, 0, notFound(err, "comment", v.id)
		}
		return c.UpvotesCount, c.DownvotesCount, nil
	default:
		p, err := blogs.GetPost(ctx, v.w.q, v.id)
		if err != nil || p == nil {
			return 0, 0, notFound(err, "post", v.id)
		}
		return p.UpvotesCount, p.DownvotesCount, nil
	}
}

func notFound(err error, kind string, id uint64) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}

// StateFor reads the score and the reaction acc left. A zero account reads only the score.
func (v *Voter) StateFor(ctx context.Context, acc blogs.AccountID) (VoteState, error) {
	up, down, err := v.counts(ctx)
	if err != nil {
		return VoteState{}, err
	}
	st := VoteState{Score: int(up) - int(down), Upvotes: up, Downvotes: down}
	if acc.IsZero() {
		return st, nil
	}

	rid, ok, err := blogs.ReactionIDByAccount(ctx, v.w.q, v.target, acc, v.id)
	if err != nil || !ok {
		return st, err
	}
	st.Reaction, err = blogs.GetReaction(ctx, v.w.q, rid)
	return st, err
}

func (v *Voter) State(ctx context.Context) (VoteState, error) {
	tx, err := v.w.signer()
	if err != nil {
		return VoteState{}, err
	}
	return v.StateFor(ctx, tx.Account())
}

// Press reacts with kind and returns the state read after inclusion.
func (v *Voter) Press(ctx context.Context, kind blogs.ReactionKind) (VoteState, error) {
	tx, err := v.w.signer()
	if err != nil {
		return VoteState{}, err
	}
	release, err := v.w.guard.acquire(fmt.Sprintf("vote/%s/%d", v.target, v.id))
	if err != nil {
		return VoteState{}, err
	}
	defer release()

	cur, err := v.StateFor(ctx, tx.Account())
	if err != nil {
		return VoteState{}, err
	}
	call := VoteCall(v.target, v.id, cur.Reaction, kind)
	if _, err := tx.Submit(ctx, call); err != nil {
		v.w.log.Info("vote failed", zap.String("tx", call.Name), zap.Uint64("id", v.id), zap.Error(err))
		return cur, err
	}
	return v.StateFor(ctx, tx.Account())
}
