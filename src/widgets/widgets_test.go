package widgets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/blogs/blogstest"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
	"github.com/stake-plus/df-blogs/src/widgets"
)

var (
	alice = blogstest.Account(1)
	bob   = blogstest.Account(2)
)

// pallet applies the subset of blogs calls these tests send.
func pallet(t *testing.T) func(c *blogstest.Chain, call blogs.Call) (*polkadot.TxResult, error) {
	nextReaction := uint64(1)
	return func(c *blogstest.Chain, call blogs.Call) (*polkadot.TxResult, error) {
		ctx := context.Background()
		acc := c.Account()
		switch call.Name {
		case "blogs.followBlog", "blogs.unfollowBlog":
			id := call.Args[0].(uint64)
			c.Set("blogFollowedByAccount", blogstest.Bool(call.Name == "blogs.followBlog"), acc[:], blogstest.ID(id))
		case "blogs.followAccount", "blogs.unfollowAccount":
			target := call.Args[0].(blogs.AccountID)
			c.Set("accountFollowedByAccount", blogstest.Bool(call.Name == "blogs.followAccount"), acc[:], target[:])
		case "blogs.createPostReaction":
			id, kind := call.Args[0].(uint64), call.Args[1].(blogs.ReactionKind)
			rid := nextReaction
			nextReaction++
			c.Set("reactionById", blogs.Reaction{ID: rid, Kind: kind}, blogstest.ID(rid))
			c.Set("postReactionIdByAccount", blogstest.U64(rid), acc[:], blogstest.ID(id))
			adjust(t, c, id, kind, 1)
		case "blogs.updatePostReaction":
			id, rid, kind := call.Args[0].(uint64), call.Args[1].(uint64), call.Args[2].(blogs.ReactionKind)
			old, err := blogs.GetReaction(ctx, c, rid)
			require.NoError(t, err)
			c.Set("reactionById", blogs.Reaction{ID: rid, Kind: kind}, blogstest.ID(rid))
			adjust(t, c, id, old.Kind, -1)
			adjust(t, c, id, kind, 1)
		case "blogs.deletePostReaction":
			id, rid := call.Args[0].(uint64), call.Args[1].(uint64)
			old, err := blogs.GetReaction(ctx, c, rid)
			require.NoError(t, err)
			c.Delete("reactionById", blogstest.ID(rid))
			c.Delete("postReactionIdByAccount", acc[:], blogstest.ID(id))
			adjust(t, c, id, old.Kind, -1)
		default:
			return nil, polkadot.ErrTxFailed
		}
		return &polkadot.TxResult{Block: "0x01"}, nil
	}
}

func adjust(t *testing.T, c *blogstest.Chain, postID uint64, kind blogs.ReactionKind, delta int) {
	p, err := blogs.GetPost(context.Background(), c, postID)
	require.NoError(t, err)
	require.NotNil(t, p)
	if kind == blogs.Upvote {
		p.UpvotesCount = uint16(int(p.UpvotesCount) + delta)
	} else {
		p.DownvotesCount = uint16(int(p.DownvotesCount) + delta)
	}
	c.Set("postById", *p, blogstest.ID(postID))
}

func TestFollowBlogRoundTrip(t *testing.T) {
	ctx := context.Background()
	chain := blogstest.NewChain(alice)
	chain.OnSubmit = pallet(t)
	w := widgets.New(chain, chain)

	follow := w.FollowBlog(7)
	st, err := follow.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, widgets.ToggleState{Label: "Follow blog", Tx: "blogs.followBlog"}, st)

	st, err = follow.Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, widgets.ToggleState{Active: true, Label: "Unfollow blog", Tx: "blogs.unfollowBlog"}, st)

	st, err = follow.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, st.Active)

	calls := chain.Submitted()
	require.Len(t, calls, 2)
	assert.Equal(t, blogs.FollowBlog(7), calls[0])
	assert.Equal(t, blogs.UnfollowBlog(7), calls[1])

	// another account's view is independent
	other, err := follow.StateFor(ctx, bob)
	require.NoError(t, err)
	assert.False(t, other.Active)
}

func TestFollowAccount(t *testing.T) {
	ctx := context.Background()
	chain := blogstest.NewChain(alice)
	chain.OnSubmit = pallet(t)
	w := widgets.New(chain, chain)

	st, err := w.FollowAccount(bob).Toggle(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Unfollow account", st.Label)

	_, err = w.FollowAccount(alice).Toggle(ctx)
	assert.ErrorIs(t, err, widgets.ErrOwnAction)
	assert.Len(t, chain.Submitted(), 1)
}

func TestToggleKeepsStateOnFailure(t *testing.T) {
	ctx := context.Background()
	chain := blogstest.NewChain(alice)
	chain.OnSubmit = func(c *blogstest.Chain, call blogs.Call) (*polkadot.TxResult, error) {
		return nil, polkadot.ErrTxCancelled
	}
	st, err := widgets.New(chain, chain).SharePost(3).Toggle(ctx)
	assert.ErrorIs(t, err, polkadot.ErrTxCancelled)
	assert.Equal(t, widgets.ToggleState{Label: "Share post", Tx: "blogs.sharePost"}, st)
}

func TestBusyRejectsSecondPress(t *testing.T) {
	ctx := context.Background()
	chain := blogstest.NewChain(alice)
	release := make(chan struct{})
	chain.OnSubmit = func(c *blogstest.Chain, call blogs.Call) (*polkadot.TxResult, error) {
		<-release
		return &polkadot.TxResult{Block: "0x01"}, nil
	}
	w := widgets.New(chain, chain)

	done := make(chan error, 1)
	go func() {
		_, err := w.FollowBlog(1).Toggle(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return len(chain.Submitted()) == 1 }, time.Second, 5*time.Millisecond)

	_, err := w.FollowBlog(1).Toggle(ctx)
	assert.ErrorIs(t, err, widgets.ErrBusy)

	// a different item is not blocked
	go func() { _, _ = w.FollowBlog(2).Toggle(ctx) }()
	require.Eventually(t, func() bool { return len(chain.Submitted()) == 2 }, time.Second, 5*time.Millisecond)

	close(release)
	require.NoError(t, <-done)

	_, err = w.FollowBlog(1).Toggle(ctx)
	assert.NoError(t, err)
}

func TestReadOnly(t *testing.T) {
	chain := blogstest.NewChain(alice)
	w := widgets.New(chain, nil)
	_, err := w.FollowBlog(1).Toggle(context.Background())
	assert.ErrorIs(t, err, widgets.ErrReadOnly)

	st, err := w.FollowBlog(1).StateFor(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, "Follow blog", st.Label)
}

func TestVoteCall(t *testing.T) {
	up := &blogs.Reaction{ID: 9, Kind: blogs.Upvote}
	tests := []struct {
		name    string
		current *blogs.Reaction
		press   blogs.ReactionKind
		want    blogs.Call
	}{
		{"none", nil, blogs.Upvote, blogs.CreateReaction(blogs.TargetPost, 4, blogs.Upvote)},
		{"other kind", up, blogs.Downvote, blogs.UpdateReaction(blogs.TargetPost, 4, 9, blogs.Downvote)},
		{"same kind", up, blogs.Upvote, blogs.DeleteReaction(blogs.TargetPost, 4, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, widgets.VoteCall(blogs.TargetPost, 4, tt.current, tt.press))
		})
	}
	assert.Equal(t, "blogs.createCommentReaction", widgets.VoteCall(blogs.TargetComment, 1, nil, blogs.Upvote).Name)
}

func TestVoterCycle(t *testing.T) {
	ctx := context.Background()
	chain := blogstest.NewChain(alice)
	chain.OnSubmit = pallet(t)
	chain.Set("postById", blogs.Post{ID: 4, UpvotesCount: 2, DownvotesCount: 1}, blogstest.ID(4))
	v := widgets.New(chain, chain).Voter(blogs.TargetPost, 4)

	st, err := v.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Score)
	assert.Equal(t, "", st.Mine())

	st, err = v.Press(ctx, blogs.Upvote)
	require.NoError(t, err)
	assert.Equal(t, 2, st.Score)
	assert.Equal(t, "Upvote", st.Mine())

	st, err = v.Press(ctx, blogs.Downvote)
	require.NoError(t, err)
	assert.Equal(t, 0, st.Score)
	assert.Equal(t, "Downvote", st.Mine())

	st, err = v.Press(ctx, blogs.Downvote)
	require.NoError(t, err)
	assert.Equal(t, 1, st.Score)
	assert.Nil(t, st.Reaction)

	names := make([]string, 0, 3)
	for _, c := range chain.Submitted() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"blogs.createPostReaction", "blogs.updatePostReaction", "blogs.deletePostReaction"}, names)
}

func TestVoterMissingTarget(t *testing.T) {
	chain := blogstest.NewChain(alice)
	_, err := widgets.New(chain, chain).Voter(blogs.TargetComment, 5).StateFor(context.Background(), alice)
	assert.True(t, errors.Is(err, widgets.ErrNotFound))
}
