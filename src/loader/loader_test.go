package loader

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/blogs/blogstest"
	"github.com/stake-plus/df-blogs/src/ipfs"
)

type blogSnap = Snapshot[blogs.Blog, blogs.BlogContent]

func next(t *testing.T, ch <-chan blogSnap) blogSnap {
	t.Helper()
	select {
	case s, ok := <-ch:
		require.True(t, ok, "snapshot channel closed")
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return blogSnap{}
}

// gatedStore counts fetches and can hold a hash until released.
type gatedStore struct {
	*ipfs.MemoryStore
	mu      sync.Mutex
	fetches map[string]int
	gates   map[string]chan struct{}
}

func newGatedStore() *gatedStore {
	return &gatedStore{MemoryStore: ipfs.NewMemoryStore(), fetches: map[string]int{}, gates: map[string]chan struct{}{}}
}

func (g *gatedStore) hold(hash string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[hash] = ch
	return ch
}

func (g *gatedStore) GetRaw(ctx context.Context, hash string) ([]byte, error) {
	g.mu.Lock()
	g.fetches[hash]++
	gate := g.gates[hash]
	g.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.MemoryStore.GetRaw(ctx, hash)
}

func (g *gatedStore) count(hash string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetches[hash]
}

func TestRunTransitions(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chain := blogstest.NewChain(blogstest.Account(1))
	store := newGatedStore()
	h1, _ := store.Add(ctx, blogs.BlogContent{Name: "First"})
	h2, _ := store.Add(ctx, blogs.BlogContent{Name: "Second"})

	l := New[blogs.Blog, blogs.BlogContent]("blog:1", BlogSource(chain, 1), store, blogs.BlogHash)
	ch := l.Run(ctx)

	s := next(t, ch)
	assert.Equal(t, Unresolved, s.State)
	assert.Equal(t, "blog:1", s.ID)
	assert.Equal(t, Absent, next(t, ch).State)

	chain.Set("blogById", blogs.Blog{ID: 1, IpfsHash: h1}, blogstest.ID(1))
	s = next(t, ch)
	assert.Equal(t, Partial, s.State)
	require.NotNil(t, s.Struct)
	assert.Nil(t, s.Content)
	s = next(t, ch)
	require.Equal(t, Full, s.State)
	assert.Equal(t, "First", s.Content.Name)

	// same hash: struct refreshes, content is kept, nothing refetched
	chain.Set("blogById", blogs.Blog{ID: 1, IpfsHash: h1, PostsCount: 4}, blogstest.ID(1))
	s = next(t, ch)
	assert.Equal(t, Full, s.State)
	assert.Equal(t, uint16(4), s.Struct.PostsCount)
	assert.Equal(t, "First", s.Content.Name)
	assert.Equal(t, 1, store.count(h1))

	// edited content: new hash triggers a new fetch
	chain.Set("blogById", blogs.Blog{ID: 1, IpfsHash: h2}, blogstest.ID(1))
	assert.Equal(t, Partial, next(t, ch).State)
	s = next(t, ch)
	require.Equal(t, Full, s.State)
	assert.Equal(t, "Second", s.Content.Name)

	// unknown hash: visible failure, not endless loading
	chain.Set("blogById", blogs.Blog{ID: 1, IpfsHash: "QmMissing"}, blogstest.ID(1))
	assert.Equal(t, Partial, next(t, ch).State)
	s = next(t, ch)
	assert.Equal(t, Failed, s.State)
	assert.ErrorIs(t, s.Err, ipfs.ErrNotFound)
	assert.NotNil(t, s.Struct)

	chain.Delete("blogById", blogstest.ID(1))
	assert.Equal(t, Absent, next(t, ch).State)
}

func TestRunDropsStaleFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chain := blogstest.NewChain(blogstest.Account(1))
	store := newGatedStore()
	slow, _ := store.Add(ctx, blogs.BlogContent{Name: "Slow"})
	fast, _ := store.Add(ctx, blogs.BlogContent{Name: "Fast"})
	gate := store.hold(slow)

	chain.Set("blogById", blogs.Blog{ID: 1, IpfsHash: slow}, blogstest.ID(1))
	ch := New[blogs.Blog, blogs.BlogContent]("blog:1", BlogSource(chain, 1), store, blogs.BlogHash).Run(ctx)

	assert.Equal(t, Unresolved, next(t, ch).State)
	assert.Equal(t, Partial, next(t, ch).State)

	chain.Set("blogById", blogs.Blog{ID: 1, IpfsHash: fast}, blogstest.ID(1))
	assert.Equal(t, Partial, next(t, ch).State)
	s := next(t, ch)
	require.Equal(t, Full, s.State)
	assert.Equal(t, "Fast", s.Content.Name)

	close(gate)
	select {
	case s := <-ch:
		t.Fatalf("unexpected snapshot after stale fetch: %v", s.State)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	chain := blogstest.NewChain(blogstest.Account(1))
	ch := New[blogs.Blog, blogs.BlogContent]("blog:9", BlogSource(chain, 9), ipfs.NewMemoryStore(), blogs.BlogHash).Run(ctx)
	assert.Equal(t, Unresolved, next(t, ch).State)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("loader did not stop")
		}
	}
}

type failingSource struct{ err error }

func (f failingSource) Watch(ctx context.Context) (<-chan Update[blogs.Blog], error) {
	ch := make(chan Update[blogs.Blog], 1)
	ch <- Update[blogs.Blog]{Err: f.err}
	close(ch)
	return ch, nil
}

func (f failingSource) Get(ctx context.Context) (*blogs.Blog, error) { return nil, f.err }

func TestChainErrorsSurface(t *testing.T) {
	boom := errors.New("rpc closed")
	l := New[blogs.Blog, blogs.BlogContent]("blog:1", failingSource{boom}, ipfs.NewMemoryStore(), blogs.BlogHash)

	ch := l.Run(context.Background())
	assert.Equal(t, Unresolved, next(t, ch).State)
	s := next(t, ch)
	assert.Equal(t, Failed, s.State)
	assert.ErrorIs(t, s.Err, boom)

	snap := l.Load(context.Background())
	assert.Equal(t, Failed, snap.State)
	assert.ErrorIs(t, snap.Err, boom)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	alice := blogstest.Account(1)
	chain := blogstest.NewChain(alice)
	store := ipfs.NewMemoryStore()
	hash, _ := store.Add(ctx, blogs.CommentContent{Body: "hi"})

	comments := func(id uint64) Snapshot[blogs.Comment, blogs.CommentContent] {
		return New[blogs.Comment, blogs.CommentContent]("comment", CommentSource(chain, id), store, blogs.CommentHash).Load(ctx)
	}

	assert.Equal(t, Absent, comments(1).State)

	chain.Set("commentById", blogs.Comment{ID: 1, IpfsHash: hash}, blogstest.ID(1))
	s := comments(1)
	require.Equal(t, Full, s.State)
	assert.Equal(t, "hi", s.Content.Body)

	chain.Set("commentById", blogs.Comment{ID: 2, IpfsHash: "QmGone"}, blogstest.ID(2))
	s = comments(2)
	assert.Equal(t, Failed, s.State)
	assert.NotNil(t, s.Struct)

	// an account without a profile has nothing to fetch
	chain.Set("socialAccountById", blogs.SocialAccount{FollowersCount: 1}, alice[:])
	acc := New[blogs.SocialAccount, blogs.ProfileContent]("account", AccountSource(chain, alice), store, blogs.ProfileHash).Load(ctx)
	assert.Equal(t, Full, acc.State)
	assert.Nil(t, acc.Content)
}

func TestResolveCoversEveryCombination(t *testing.T) {
	want := map[ChainState]map[ContentState]State{
		ChainPending: {ContentPending: Unresolved, ContentResolved: Unresolved, ContentFailed: Unresolved},
		ChainEmpty:   {ContentPending: Absent, ContentResolved: Absent, ContentFailed: Absent},
		ChainPresent: {ContentPending: Partial, ContentResolved: Full, ContentFailed: Failed},
	}
	for chain, row := range want {
		for content, state := range row {
			assert.Equal(t, state, Resolve(chain, content), "chain=%d content=%d", chain, content)
		}
	}
	assert.Equal(t, "not_found", Absent.String())
	assert.Equal(t, "loading", Unresolved.String())
}
