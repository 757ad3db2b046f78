package blogs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

func strp(s string) *string { return &s }
func u64p(v uint64) *uint64 { return &v }

func sampleChange(b byte) Change {
	var a AccountID
	a[0] = b
	return Change{Account: a, Block: 100 + uint32(b), Time: 1_570_000_000_000}
}

func TestBlogCodec(t *testing.T) {
	updated := sampleChange(2)
	blog := Blog{
		ID:             7,
		Created:        sampleChange(1),
		Updated:        &updated,
		Writers:        []AccountID{sampleChange(3).Account},
		Slug:           "my_blog",
		IpfsHash:       "QmHash1",
		PostsCount:     3,
		FollowersCount: 9,
		EditHistory: []BlogHistoryRecord{
			{Edited: sampleChange(2), OldData: BlogUpdate{Slug: strp("old_slug")}},
		},
	}

	raw, err := Encode(blog)
	require.NoError(t, err)
	got, err := DecodeBlog(raw)
	require.NoError(t, err)
	assert.Equal(t, blog, *got)
	assert.Equal(t, sampleChange(1).Account, got.Owner())
}

func TestChangeLayout(t *testing.T) {
	raw, err := Encode(Change{Block: 1, Time: 2})
	require.NoError(t, err)
	require.Len(t, raw, 32+4+8)
	assert.Equal(t, byte(1), raw[32])
	assert.Equal(t, byte(2), raw[36])
}

func TestPostCodecWithExtension(t *testing.T) {
	post := Post{
		ID:             4,
		BlogID:         7,
		Created:        sampleChange(1),
		Extension:      PostExtension{Kind: SharedPost, Target: 2},
		Slug:           "shared",
		IpfsHash:       "QmPost",
		CommentsCount:  1,
		UpvotesCount:   5,
		DownvotesCount: 2,
		EditHistory:    []PostHistoryRecord{},
	}
	raw, err := Encode(post)
	require.NoError(t, err)
	got, err := DecodePost(raw)
	require.NoError(t, err)
	assert.Equal(t, post, *got)
	assert.Equal(t, 3, got.Score())
	assert.Nil(t, got.Updated)
}

func TestCommentCodecParent(t *testing.T) {
	c := Comment{ID: 3, ParentID: u64p(1), PostID: 4, Created: sampleChange(1), IpfsHash: "QmC", EditHistory: []CommentHistoryRecord{}}
	raw, err := Encode(c)
	require.NoError(t, err)
	got, err := DecodeComment(raw)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, uint64(1), *got.ParentID)
}

func TestSocialAccountWithoutProfile(t *testing.T) {
	raw, err := Encode(SocialAccount{FollowersCount: 2, FollowingAccountsCount: 1})
	require.NoError(t, err)
	got, err := DecodeSocialAccount(raw)
	require.NoError(t, err)
	assert.Nil(t, got.Profile)
	assert.Equal(t, uint32(2), got.FollowersCount)
	assert.Equal(t, "", ProfileHash(*got))
}

func TestDecodeRejectsBadEnum(t *testing.T) {
	raw, err := Encode(Reaction{ID: 1, Created: sampleChange(1), Kind: Downvote})
	require.NoError(t, err)
	raw[len(raw)-1] = 7
	_, err = DecodeReaction(raw)
	assert.Error(t, err)
}

func TestUpdateEncodingOmitsUnchanged(t *testing.T) {
	raw, err := Encode(PostUpdate{IpfsHash: strp("Qm")})
	require.NoError(t, err)
	// None blog_id, None slug, Some(text)
	assert.Equal(t, []byte{0, 0, 1, 2 << 2, 'Q', 'm'}, raw)
	assert.True(t, BlogUpdate{}.IsEmpty())
	assert.False(t, ProfileUpdate{Username: strp("x")}.IsEmpty())
}

func TestFillHistory(t *testing.T) {
	tests := []struct {
		name string
		in   []HistoryEntry
		want []HistoryEntry
	}{
		{"empty", nil, []HistoryEntry{}},
		{
			"carries hash and slug forward",
			[]HistoryEntry{{Slug: "a", IpfsHash: "h1"}, {}, {IpfsHash: "h2"}, {}},
			[]HistoryEntry{{Slug: "a", IpfsHash: "h1"}, {Slug: "a", IpfsHash: "h1"}, {Slug: "a", IpfsHash: "h2"}, {Slug: "a", IpfsHash: "h2"}},
		},
		{
			"leading entries stay empty",
			[]HistoryEntry{{}, {Slug: "b"}, {IpfsHash: "h"}},
			[]HistoryEntry{{}, {Slug: "b"}, {Slug: "b", IpfsHash: "h"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var before []HistoryEntry
			if tt.in != nil {
				before = append([]HistoryEntry{}, tt.in...)
			}
			assert.Equal(t, tt.want, FillHistory(tt.in))
			assert.Equal(t, before, tt.in)
		})
	}
}

func TestHistoryFromRecords(t *testing.T) {
	p := Profile{EditHistory: []ProfileHistoryRecord{
		{Edited: sampleChange(1), OldData: ProfileUpdate{Username: strp("alice"), IpfsHash: strp("h0")}},
		{Edited: sampleChange(2), OldData: ProfileUpdate{IpfsHash: strp("h1")}},
	}}
	h := FillHistory(p.History())
	assert.Equal(t, "alice", h[1].Slug)
	assert.Equal(t, "h1", h[1].IpfsHash)
}

func TestNewIDFromEvents(t *testing.T) {
	owner := sampleChange(1).Account

	id, err := NewEntityID([]polkadot.ChainEvent{
		{Name: "System.ExtrinsicSuccess"},
		{Name: "Blogs.PostCreated", Args: []any{owner, uint64(12)}},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(12), id)

	v, err := NewIDFromEvents([]polkadot.ChainEvent{
		{Name: "Blogs.AccountFollowed", Args: []any{owner, owner}},
		{Name: "Blogs.ProfileCreated", Args: []any{owner}},
	})
	require.NoError(t, err)
	assert.Equal(t, owner, v)

	_, err = NewIDFromEvents([]polkadot.ChainEvent{{Name: "Blogs.BlogUpdated", Args: []any{owner, 1}}})
	assert.ErrorIs(t, err, ErrNoCreatedEvent)

	_, err = NewIDFromEvents([]polkadot.ChainEvent{{Name: "Blogs.BlogCreated", Args: []any{owner}}})
	assert.Error(t, err)
}

func TestParseAccount(t *testing.T) {
	a, err := ParseAccount("5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY")
	require.NoError(t, err)
	assert.Equal(t, byte(0xd4), a[0])
	assert.Equal(t, "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", a.Address(42))

	b, err := ParseAccount("0xd43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = ParseAccount("nope")
	assert.Error(t, err)
}

func TestCalls(t *testing.T) {
	c := CreateComment(4, nil, "Qm")
	assert.Equal(t, "blogs.createComment", c.Name)
	assert.Equal(t, OptionalID{}, c.Args[1])

	assert.Equal(t, "blogs.updateCommentReaction", UpdateReaction(TargetComment, 1, 2, Upvote).Name)
	assert.Equal(t, "blogs.deletePostReaction", DeleteReaction(TargetPost, 1, 2).Name)
	assert.Equal(t, "blogs.createPostReaction", CreateReaction(TargetPost, 1, Downvote).Name)
}
