package discord

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/blogs/blogstest"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/views"
)

var (
	alice = blogstest.Account(1)
	bob   = blogstest.Account(2)
)

type activities struct {
	mu   sync.Mutex
	list []ipfs.Activity
	err  error
}

func (a *activities) Feed(context.Context, string, int, int) ([]ipfs.Activity, error) {
	return nil, nil
}

func (a *activities) Notifications(_ context.Context, _ string, offset, count int) ([]ipfs.Activity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return nil, a.err
	}
	if len(a.list) > count {
		return a.list[:count], nil
	}
	return a.list, nil
}

// push adds a record at the head, as the indexer serves newest first.
func (a *activities) push(act ipfs.Activity) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.list = append([]ipfs.Activity{act}, a.list...)
}

type poster struct {
	mu     sync.Mutex
	sent   []*discordgo.MessageSend
	failOn int
}

func (p *poster) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failOn > 0 && len(p.sent)+1 == p.failOn {
		return nil, errors.New("HTTP 500 Internal Server Error")
	}
	p.sent = append(p.sent, data)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (p *poster) contents() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.sent))
	for i, m := range p.sent {
		out[i] = m.Content
	}
	return out
}

type memCursor struct {
	mu sync.Mutex
	id string
}

func (c *memCursor) Load(context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id, nil
}

func (c *memCursor) Save(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.id = id
	return nil
}

func (c *memCursor) get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.id
}

func newRelay(t *testing.T) (*Relay, *activities, *poster, *memCursor) {
	t.Helper()
	chain := blogstest.NewChain(alice)
	store := ipfs.NewMemoryStore()
	hash, err := store.Add(context.Background(), blogs.BlogContent{Name: "Go news"})
	require.NoError(t, err)
	chain.Set("blogById", blogs.Blog{ID: 1, Created: blogs.Change{Account: alice}, Slug: "go_news", IpfsHash: hash}, blogstest.ID(1))

	src := &activities{}
	p := &poster{}
	cur := &memCursor{}
	r := &Relay{
		Source:    src,
		Renderer:  views.NewPages(chain, store),
		Poster:    p,
		Cursor:    cur,
		ChannelID: "chan",
		Account:   alice,
		Prefix:    42,
		SiteURL:   "https://blogs.example/",
		Interval:  10 * time.Millisecond,
	}
	return r, src, p, cur
}

func follow(id string) ipfs.Activity {
	return ipfs.Activity{ID: id, Account: bob.Address(42), Event: ipfs.BlogFollowed, BlogID: "1", Date: time.Unix(0, 0)}
}

func TestPollStartsAtHead(t *testing.T) {
	r, src, p, cur := newRelay(t)
	ctx := context.Background()

	n, err := r.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, cur.id)

	src.push(follow("a1"))
	src.push(follow("a2"))
	n, err = r.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "a2", cur.id)
	assert.Empty(t, p.contents())
}

func TestPollDeliversOldestFirst(t *testing.T) {
	r, src, p, cur := newRelay(t)
	ctx := context.Background()
	src.push(follow("a1"))
	cur.id = "a1"

	src.push(follow("a2"))
	src.push(ipfs.Activity{ID: "a3", Account: bob.Address(42), Event: ipfs.AccountFollowed, AggCount: 3})

	n, err := r.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "a3", cur.id)

	got := p.contents()
	require.Len(t, got, 2)
	assert.Equal(t, bob.Address(42)+" followed your blog Go news", got[0])
	assert.Equal(t, bob.Address(42)+" and 2 others followed your account", got[1])

	// nothing new
	n, err = r.Poll(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPollStopsAtFailedSend(t *testing.T) {
	r, src, p, cur := newRelay(t)
	src.push(follow("a1"))
	cur.id = "a1"
	src.push(follow("a2"))
	src.push(follow("a3"))
	p.failOn = 2

	n, err := r.Poll(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "a2", cur.id)

	p.failOn = 0
	n, err = r.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "a3", cur.id)
}

func TestBuildMessage(t *testing.T) {
	subject := &views.Header{Label: "Go news", Link: "/blogs/1"}
	msg := BuildMessage(views.ActivityView{Actor: "bob", Message: "followed your blog", Subject: subject}, "https://blogs.example/")

	assert.Equal(t, "bob followed your blog Go news", msg.Content)
	require.Len(t, msg.Components, 1)
	row := msg.Components[0].(discordgo.ActionsRow)
	button := row.Components[0].(discordgo.Button)
	assert.Equal(t, "https://blogs.example/blogs/1", button.URL)
	assert.Equal(t, discordgo.LinkButton, button.Style)

	plain := BuildMessage(views.ActivityView{Actor: "bob", Message: "followed your account"}, "https://blogs.example")
	assert.Empty(t, plain.Components)
}

func TestRunStopsWithContext(t *testing.T) {
	r, src, _, cur := newRelay(t)
	src.push(follow("a1"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return cur.get() == "a1" }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}

func TestWrapURLsNoEmbed(t *testing.T) {
	tests := []struct{ in, want string }{
		{"no links", "no links"},
		{"see https://a.example/x.", "see <https://a.example/x>."},
		{"already <https://a.example>", "already <https://a.example>"},
		{"two http://a.io, http://b.io", "two <http://a.io>, <http://b.io>"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WrapURLsNoEmbed(tt.in))
	}
	assert.Equal(t, "abc…", truncate("abcdef", 4))
}

type mockCursor struct {
	mock.Mock
}

func (m *mockCursor) Load(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockCursor) Save(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func TestPollCursorErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("load", func(t *testing.T) {
		r, src, p, _ := newRelay(t)
		src.push(follow("a1"))
		cur := &mockCursor{}
		cur.On("Load", ctx).Return("", errors.New("redis down"))
		r.Cursor = cur

		_, err := r.Poll(ctx)
		assert.ErrorContains(t, err, "load cursor")
		assert.Empty(t, p.contents())
		cur.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save", func(t *testing.T) {
		r, src, p, _ := newRelay(t)
		src.push(follow("a1"))
		src.push(follow("a2"))
		src.push(follow("a3"))
		cur := &mockCursor{}
		cur.On("Load", ctx).Return("a1", nil)
		cur.On("Save", ctx, "a2").Return(errors.New("redis down"))
		r.Cursor = cur

		n, err := r.Poll(ctx)
		assert.ErrorContains(t, err, "save cursor")
		assert.Equal(t, 1, n)
		assert.Len(t, p.contents(), 1)
		cur.AssertExpectations(t)
	})
}
