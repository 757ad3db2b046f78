package views

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/loader"
)

var (
	owner    = blogs.AccountID{1}
	stranger = blogs.AccountID{2}
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		err  bool
	}{
		{"", Detail, false},
		{"detail", Detail, false},
		{"Preview", Preview, false},
		{"name", NameOnly, false},
		{"full", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "short", Summarize("short", 150))
	exact := strings.Repeat("a", 150)
	assert.Equal(t, exact, Summarize(exact, 150))
	assert.Equal(t, exact+"...", Summarize(exact+"b", 150))
	assert.Equal(t, "hé...", Summarize("héllo", 2))
	assert.Equal(t, "", Summarize("", 40))
}

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("**bold** text")
	assert.Contains(t, out, "<strong>bold</strong>")

	out = RenderMarkdown("hi <script>alert(1)</script> [x](javascript:alert(1))")
	assert.NotContains(t, out, "<script>")
	assert.NotContains(t, out, "javascript:")
}

func TestStatusViews(t *testing.T) {
	v := Anonymous(42)

	b := RenderBlog(BlogSnapshot{State: loader.Unresolved, ID: "3"}, Detail, v)
	assert.Equal(t, Header{State: "loading", Message: "Loading...", ID: "3"}, b.Header)
	assert.Nil(t, b.Preview)

	p := RenderPost(PostSnapshot{State: loader.Absent, ID: "4"}, Preview, v)
	assert.Equal(t, "not_found", p.State)
	assert.Equal(t, "Post not found", p.Message)

	c := RenderComment(CommentSnapshot{State: loader.Failed, ID: "5", Struct: &blogs.Comment{ID: 5}, Err: ipfs.ErrNotFound}, Detail, v)
	assert.Equal(t, "failed", c.State)
	assert.Equal(t, ipfs.ErrNotFound.Error(), c.Message)
	assert.False(t, c.Ready())
}

func blogSnap() BlogSnapshot {
	return BlogSnapshot{
		State: loader.Full,
		ID:    "1",
		Struct: &blogs.Blog{
			ID:             1,
			Created:        blogs.Change{Account: owner, Block: 10, Time: 1_600_000_000_000},
			Writers:        []blogs.AccountID{owner},
			Slug:           "my_blog",
			IpfsHash:       "QmNew",
			PostsCount:     2,
			FollowersCount: 5,
			EditHistory: []blogs.BlogHistoryRecord{
				{Edited: blogs.Change{Account: owner, Block: 11}, OldData: blogs.BlogUpdate{IpfsHash: ptr("QmOld")}},
				{Edited: blogs.Change{Account: owner, Block: 12}, OldData: blogs.BlogUpdate{Slug: ptr("old_slug")}},
			},
		},
		Content: &blogs.BlogContent{Name: "My blog", Desc: strings.Repeat("d", 200), Tags: []string{"go", "", "go"}},
	}
}

func ptr[T any](v T) *T { return &v }

func TestRenderBlogModes(t *testing.T) {
	s := blogSnap()

	name := RenderBlog(s, NameOnly, Anonymous(42))
	assert.Equal(t, Header{State: "full", ID: "1", Label: "My blog", Link: "/blogs/1"}, name.Header)
	assert.Nil(t, name.Preview)

	prev := RenderBlog(s, Preview, As(stranger, 42))
	require.NotNil(t, prev.Preview)
	assert.Nil(t, prev.Detail)
	assert.False(t, prev.Preview.IsMine)
	assert.Empty(t, prev.Preview.Actions)
	assert.Len(t, []rune(prev.Preview.Summary), 153)
	assert.Equal(t, owner.Address(42), prev.Preview.Owner)

	det := RenderBlog(s, Detail, As(owner, 42))
	require.NotNil(t, det.Detail)
	assert.True(t, det.Preview.IsMine)
	assert.Equal(t, []Action{{"Edit", "/blogs/1/edit"}, {"Write post", "/blogs/1/newPost"}}, det.Preview.Actions)
	assert.Equal(t, []string{"go"}, det.Detail.Tags)
	assert.Equal(t, int64(1_600_000_000), det.Detail.Created.Time.Unix())

	// the second edit only changed the slug; its hash carries forward
	require.Len(t, det.Detail.History, 2)
	assert.Equal(t, "QmOld", det.Detail.History[1].IpfsHash)
	assert.Equal(t, "old_slug", det.Detail.History[1].Slug)
	assert.Equal(t, "", det.Detail.History[0].Slug)
}

func TestRenderPartialFallsBackToSlug(t *testing.T) {
	s := blogSnap()
	s.State, s.Content = loader.Partial, nil
	v := RenderBlog(s, Preview, Anonymous(42))
	assert.Equal(t, "partial", v.State)
	assert.Equal(t, "my_blog", v.Label)
	assert.True(t, v.Ready())
}

func TestRenderPost(t *testing.T) {
	s := PostSnapshot{
		State:   loader.Full,
		Struct:  &blogs.Post{ID: 9, BlogID: 1, Created: blogs.Change{Account: owner}, UpvotesCount: 3, DownvotesCount: 5},
		Content: &blogs.PostContent{Title: "Hello", Body: "# Title\n\ntext"},
	}
	v := RenderPost(s, Detail, As(owner, 42))
	assert.Equal(t, "/blogs/posts/9", v.Link)
	assert.Equal(t, -2, v.Preview.Score)
	assert.Equal(t, []Action{{"Edit", "/blogs/posts/9/edit"}}, v.Preview.Actions)
	assert.Contains(t, v.Detail.Body, "<h1")
	assert.Empty(t, v.Preview.Unsupported)

	s.Struct.Extension = blogs.PostExtension{Kind: blogs.SharedComment, Target: 3}
	v = RenderPost(s, Preview, Anonymous(42))
	assert.Equal(t, UnsupportedSharedComment, v.Preview.Unsupported)
}

func TestRenderCommentLabel(t *testing.T) {
	parent := uint64(1)
	s := CommentSnapshot{
		State:   loader.Full,
		Struct:  &blogs.Comment{ID: 2, PostID: 9, ParentID: &parent},
		Content: &blogs.CommentContent{Body: strings.Repeat("x", 41)},
	}
	v := RenderComment(s, NameOnly, Anonymous(42))
	assert.Equal(t, strings.Repeat("x", 40)+"...", v.Label)
	assert.Equal(t, "/blogs/posts/9#comment-2", v.Link)

	v = RenderComment(s, Preview, Anonymous(42))
	assert.Equal(t, &parent, v.Preview.ParentID)
}

func TestRenderProfileWithoutProfile(t *testing.T) {
	addr := owner.Address(42)
	s := ProfileSnapshot{State: loader.Full, ID: addr, Struct: &blogs.SocialAccount{FollowersCount: 4}}

	v := RenderProfile(s, addr, Detail, As(owner, 42))
	assert.Equal(t, addr, v.Label)
	assert.False(t, v.Preview.HasProfile)
	assert.Equal(t, uint32(4), v.Preview.Followers)
	assert.Equal(t, []Action{{"Create profile", AccountEditPath(addr)}}, v.Preview.Actions)
	assert.Nil(t, v.Detail.Created)
	assert.Empty(t, v.Detail.Links)

	s.Struct.Profile = &blogs.Profile{Username: "alice_w"}
	s.Content = &blogs.ProfileContent{Github: "https://github.com/a"}
	v = RenderProfile(s, addr, Detail, Anonymous(42))
	assert.Equal(t, "alice_w", v.Label)
	assert.Equal(t, map[string]string{"github": "https://github.com/a"}, v.Detail.Links)
	assert.Empty(t, v.Preview.Actions)
}

func comment(id uint64, parent *uint64) CommentView {
	return CommentView{Header: Header{ID: idString(id)}, id: id, parentID: parent}
}

func TestBuildCommentTree(t *testing.T) {
	one, two, missing := uint64(1), uint64(2), uint64(99)
	tree := BuildCommentTree([]CommentView{
		comment(4, &two),
		comment(3, &missing),
		comment(2, &one),
		comment(1, nil),
		comment(5, &one),
	})

	require.Len(t, tree, 2)
	assert.Equal(t, "1", tree[0].Comment.ID)
	assert.Equal(t, "3", tree[1].Comment.ID)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, "2", tree[0].Replies[0].Comment.ID)
	assert.Equal(t, "5", tree[0].Replies[1].Comment.ID)
	require.Len(t, tree[0].Replies[0].Replies, 1)
	assert.Equal(t, "4", tree[0].Replies[0].Replies[0].Comment.ID)

	assert.Empty(t, BuildCommentTree(nil))
}

func TestBuildCommentTreeKeepsParentCycles(t *testing.T) {
	one, two, three, six := uint64(1), uint64(2), uint64(3), uint64(6)
	tree := BuildCommentTree([]CommentView{
		comment(6, &three),
		comment(3, &six),
		comment(1, &two),
		comment(2, &one),
		comment(4, nil),
		comment(5, &three),
	})

	require.Len(t, tree, 3)
	assert.Equal(t, "1", tree[0].Comment.ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, "2", tree[0].Replies[0].Comment.ID)
	assert.Empty(t, tree[0].Replies[0].Replies)

	assert.Equal(t, "3", tree[1].Comment.ID)
	require.Len(t, tree[1].Replies, 2)
	assert.Equal(t, "5", tree[1].Replies[0].Comment.ID)
	assert.Equal(t, "6", tree[1].Replies[1].Comment.ID)
	assert.Empty(t, tree[1].Replies[1].Replies)

	assert.Equal(t, "4", tree[2].Comment.ID)

	var count func(ns []*CommentNode) int
	count = func(ns []*CommentNode) int {
		n := len(ns)
		for _, c := range ns {
			n += count(c.Replies)
		}
		return n
	}
	assert.Equal(t, 6, count(tree))
}

func TestNotificationMessage(t *testing.T) {
	tests := map[string]string{
		ipfs.AccountFollowed:        "followed your account",
		ipfs.BlogFollowed:           "followed your blog",
		ipfs.CommentCreated:         "commented your post",
		ipfs.PostShared:             "shared your post",
		ipfs.PostReactionCreated:    "reacted to your post",
		ipfs.CommentReactionCreated: "reacted to your comment",
		ipfs.BlogCreated:            "created a blog",
		"Unknown":                   "",
	}
	for event, want := range tests {
		assert.Equal(t, want, NotificationMessage(event, false), event)
	}
	assert.Equal(t, "replied to your comment", NotificationMessage(ipfs.CommentCreated, true))
}

func TestActivityText(t *testing.T) {
	v := RenderActivity(ipfs.Activity{Account: "5Abc", Event: ipfs.BlogFollowed, AggCount: 3}, false, &Header{Label: "Go news"})
	assert.Equal(t, 2, v.Others)
	assert.Equal(t, "5Abc and 2 others followed your blog Go news", v.Text())

	v = RenderActivity(ipfs.Activity{Account: "5Abc", Event: ipfs.AccountFollowed, AggCount: 1}, false, nil)
	assert.Equal(t, "5Abc followed your account", v.Text())
}

func TestPaths(t *testing.T) {
	assert.Equal(t, "/blogs/7", BlogPath(7))
	assert.Equal(t, "/blogs/7/edit", BlogEditPath(7))
	assert.Equal(t, "/blogs/7/newPost", NewPostPath(7))
	assert.Equal(t, "/blogs/posts/8", PostPath(8))
	assert.Equal(t, "/blogs/posts/8/edit", PostEditPath(8))
	assert.Equal(t, "/blogs/accounts/5Abc", AccountPath("5Abc"))
	assert.Equal(t, "/blogs/accounts/5Abc/edit", AccountEditPath("5Abc"))
}

func TestViewerOwns(t *testing.T) {
	assert.False(t, Anonymous(42).Owns(blogs.AccountID{}))
	assert.True(t, As(owner, 42).Owns(owner))
	assert.False(t, As(owner, 42).Owns(stranger))
}
