package blogs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/blogs/blogstest"
)

func TestQueries(t *testing.T) {
	ctx := context.Background()
	alice, bob := blogstest.Account(1), blogstest.Account(2)
	chain := blogstest.NewChain(alice)

	chain.Set("blogById", blogs.Blog{ID: 1, Slug: "first", IpfsHash: "QmB", Created: blogs.Change{Account: alice}}, blogstest.ID(1))
	chain.Set("nextBlogId", blogstest.U64(2))
	chain.Set("postIdsByBlogId", blogstest.IDs{3, 4}, blogstest.ID(1))
	chain.Set("blogFollowers", blogstest.Accounts{bob}, blogstest.ID(1))
	chain.Set("blogFollowedByAccount", blogstest.Bool(true), bob[:], blogstest.ID(1))
	chain.Set("postReactionIdByAccount", blogstest.U64(9), alice[:], blogstest.ID(3))

	blog, err := blogs.GetBlog(ctx, chain, 1)
	require.NoError(t, err)
	require.NotNil(t, blog)
	assert.Equal(t, "first", blog.Slug)

	missing, err := blogs.GetBlog(ctx, chain, 2)
	require.NoError(t, err)
	assert.Nil(t, missing)

	next, err := blogs.NextBlogID(ctx, chain)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next)

	next, err = blogs.NextPostID(ctx, chain)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), next)

	posts, err := blogs.PostIDsByBlog(ctx, chain, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, posts)

	followers, err := blogs.BlogFollowers(ctx, chain, 1)
	require.NoError(t, err)
	assert.Equal(t, []blogs.AccountID{bob}, followers)

	following, err := blogs.IsBlogFollowed(ctx, chain, bob, 1)
	require.NoError(t, err)
	assert.True(t, following)

	following, err = blogs.IsBlogFollowed(ctx, chain, alice, 1)
	require.NoError(t, err)
	assert.False(t, following)

	rid, ok, err := blogs.ReactionIDByAccount(ctx, chain, blogs.TargetPost, alice, 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(9), rid)

	_, ok, err = blogs.ReactionIDByAccount(ctx, chain, blogs.TargetComment, alice, 3)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQueryDecodeError(t *testing.T) {
	chain := blogstest.NewChain(blogstest.Account(1))
	chain.SetRaw("postById", []byte{1, 2}, blogstest.ID(5))

	_, err := blogs.GetPost(context.Background(), chain, 5)
	assert.ErrorContains(t, err, "decode postById")
}
