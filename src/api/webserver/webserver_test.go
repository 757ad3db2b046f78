package webserver

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/df-blogs/src/api/config"
	"github.com/stake-plus/df-blogs/src/api/data"
	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/blogs/blogstest"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/keys"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
	"github.com/stake-plus/df-blogs/src/widgets"
)

var secret = []byte("test-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

type memNonces struct {
	mu sync.Mutex
	m  map[string]string
}

func (n *memNonces) SetNonce(_ context.Context, addr, nonce string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.m[addr] = nonce
	return nil
}

func (n *memNonces) TakeNonce(_ context.Context, addr string) (string, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	nonce, ok := n.m[addr]
	if !ok {
		return "", data.ErrNoNonce
	}
	delete(n.m, addr)
	return nonce, nil
}

type gateway struct {
	engine *gin.Engine
	chain  *blogstest.Chain
	store  *ipfs.MemoryStore
	signer *keys.Signer
	token  string
}

func newGateway(t *testing.T) *gateway {
	t.Helper()
	signer, err := keys.NewSignerFromHex("0x"+strings.Repeat("11", 32), 42)
	require.NoError(t, err)

	chain := blogstest.NewChain(signer.Account())
	store := ipfs.NewMemoryStore()
	hash, err := store.Add(context.Background(), blogs.BlogContent{Name: "Go news"})
	require.NoError(t, err)

	by := blogs.Change{Account: signer.Account(), Block: 1}
	chain.Set("blogById", blogs.Blog{ID: 1, Created: by, Slug: "go_news", IpfsHash: hash}, blogstest.ID(1))
	chain.Set("nextBlogId", blogstest.U64(2))

	engine := New(Deps{
		Config: config.Config{JWTSecret: string(secret), SS58Prefix: 42, FeedCount: 20},
		Chain:  chain,
		Store:  store,
		Nonces: &memNonces{m: map[string]string{}},
		Signer: chain,
	})
	token, err := issueJWT(signer.Address(), secret)
	require.NoError(t, err)
	return &gateway{engine: engine, chain: chain, store: store, signer: signer, token: token}
}

func (g *gateway) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	g.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	g := newGateway(t)
	w := g.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetBlog(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodGet, "/v1/blogs/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Go news", body["label"])
	assert.Equal(t, "full", body["state"])

	w = g.do(http.MethodGet, "/v1/blogs/1?mode=name", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w)["detail"])

	tests := []struct {
		path   string
		status int
		err    string
	}{
		{"/v1/blogs/9", http.StatusNotFound, "Blog not found"},
		{"/v1/blogs/abc", http.StatusBadRequest, `invalid id "abc"`},
		{"/v1/blogs/0", http.StatusBadRequest, `invalid id "0"`},
		{"/v1/blogs/1?mode=huge", http.StatusBadRequest, `unknown view mode "huge"`},
		{"/v1/accounts/nope", http.StatusBadRequest, "invalid ss58 address"},
	}
	for _, tt := range tests {
		w := g.do(http.MethodGet, tt.path, "", nil)
		assert.Equal(t, tt.status, w.Code, tt.path)
		assert.Contains(t, decode(t, w)["err"], tt.err, tt.path)
	}
}

func TestContentFailureIsBadGateway(t *testing.T) {
	g := newGateway(t)
	g.chain.Set("blogById", blogs.Blog{ID: 1, Slug: "go_news", IpfsHash: "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"}, blogstest.ID(1))

	w := g.do(http.MethodGet, "/v1/blogs/1", "", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestListBlogs(t *testing.T) {
	g := newGateway(t)
	w := g.do(http.MethodGet, "/v1/blogs?mode=name", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "/blogs/1", list[0]["link"])
}

func TestFeedWithoutActivitySource(t *testing.T) {
	g := newGateway(t)
	w := g.do(http.MethodGet, "/v1/accounts/"+g.signer.Address()+"/feed", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = g.do(http.MethodGet, "/v1/accounts/"+g.signer.Address()+"/feed?count=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthFlow(t *testing.T) {
	g := newGateway(t)
	addr := g.signer.Address()

	w := g.do(http.MethodPost, "/v1/auth/challenge", "", gin.H{"address": addr})
	require.Equal(t, http.StatusOK, w.Code)
	nonce := decode(t, w)["nonce"].(string)
	require.NotEmpty(t, nonce)

	sig, err := g.signer.Sign([]byte(nonce))
	require.NoError(t, err)
	w = g.do(http.MethodPost, "/v1/auth/verify", "", gin.H{"address": addr, "signature": "0x" + hex.EncodeToString(sig)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["token"].(string)

	got, ok := parseJWT("Bearer "+token, secret)
	assert.True(t, ok)
	assert.Equal(t, addr, got)

	// the nonce is single use
	w = g.do(http.MethodPost, "/v1/auth/verify", "", gin.H{"address": addr, "signature": "0x" + hex.EncodeToString(sig)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = g.do(http.MethodPost, "/v1/auth/challenge", "", gin.H{"address": addr})
	require.Equal(t, http.StatusOK, w.Code)
	w = g.do(http.MethodPost, "/v1/auth/verify", "", gin.H{"address": addr, "signature": "0x" + strings.Repeat("00", 64)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = g.do(http.MethodPost, "/v1/auth/challenge", "", gin.H{"address": "garbage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMutationsNeedSignerToken(t *testing.T) {
	g := newGateway(t)
	form := gin.H{"slug": "new_blog", "name": "New"}

	w := g.do(http.MethodPost, "/v1/blogs", "", form)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := issueJWT(blogstest.Account(9).Address(42), secret)
	require.NoError(t, err)
	w = g.do(http.MethodPost, "/v1/blogs", other, form)
	assert.Equal(t, http.StatusForbidden, w.Code)

	forged, err := issueJWT(g.signer.Address(), []byte("other-secret"))
	require.NoError(t, err)
	w = g.do(http.MethodPost, "/v1/blogs", forged, form)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Empty(t, g.chain.Submitted())
}

func TestCreateBlog(t *testing.T) {
	g := newGateway(t)
	g.chain.OnSubmit = func(c *blogstest.Chain, call blogs.Call) (*polkadot.TxResult, error) {
		return blogstest.Created("BlogCreated", c.Account(), 2), nil
	}

	w := g.do(http.MethodPost, "/v1/blogs", g.token, gin.H{"slug": "new_blog", "name": "New"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.EqualValues(t, 2, body["id"])
	assert.Equal(t, "/blogs/2", body["path"])

	calls := g.chain.Submitted()
	require.Len(t, calls, 1)
	assert.Equal(t, "blogs.createBlog", calls[0].Name)
}

func TestCreateBlogValidation(t *testing.T) {
	g := newGateway(t)
	w := g.do(http.MethodPost, "/v1/blogs", g.token, gin.H{"slug": "a b", "name": "New"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	fields, ok := decode(t, w)["fields"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, fields, "slug")
	assert.Empty(t, g.chain.Submitted())
	assert.Equal(t, 1, g.store.Len())
}

func TestUpdateBlog(t *testing.T) {
	g := newGateway(t)

	w := g.do(http.MethodPut, "/v1/blogs/1", g.token, gin.H{"slug": "go_news", "name": "Go news"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = g.do(http.MethodPut, "/v1/blogs/1", g.token, gin.H{"slug": "go_weekly", "name": "Go news"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	calls := g.chain.Submitted()
	require.Len(t, calls, 1)
	assert.Equal(t, "blogs.updateBlog", calls[0].Name)

	w = g.do(http.MethodPut, "/v1/blogs/5", g.token, gin.H{"slug": "go_weekly", "name": "Go news"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdatePostAndComment(t *testing.T) {
	g := newGateway(t)
	ctx := context.Background()
	postHash, err := g.store.Add(ctx, blogs.PostContent{Title: "Hello", Body: "world"})
	require.NoError(t, err)
	commentHash, err := g.store.Add(ctx, blogs.CommentContent{Body: "first"})
	require.NoError(t, err)
	g.chain.Set("postById", blogs.Post{ID: 4, BlogID: 1, Slug: "hello_post", IpfsHash: postHash}, blogstest.ID(4))
	g.chain.Set("commentById", blogs.Comment{ID: 9, PostID: 4, IpfsHash: commentHash}, blogstest.ID(9))

	w := g.do(http.MethodPut, "/v1/posts/4", g.token, gin.H{"slug": "hello_again", "title": "Hello", "body": "world"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	u := g.chain.Submitted()[0].Args[1].(blogs.PostUpdate)
	require.NotNil(t, u.Slug)
	assert.Equal(t, "hello_again", *u.Slug)
	assert.Nil(t, u.IpfsHash)

	w = g.do(http.MethodPut, "/v1/comments/9", g.token, gin.H{"body": "first"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = g.do(http.MethodPut, "/v1/comments/9", g.token, gin.H{"body": "second"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	calls := g.chain.Submitted()
	require.Len(t, calls, 2)
	assert.Equal(t, "blogs.updateComment", calls[1].Name)

	w = g.do(http.MethodPut, "/v1/posts/40", g.token, gin.H{"title": "t", "body": "b"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTransactionOutcomes(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{polkadot.ErrTxCancelled, http.StatusAccepted},
		{fmt.Errorf("%w: BadOrigin", polkadot.ErrTxFailed), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		g := newGateway(t)
		g.chain.OnSubmit = func(*blogstest.Chain, blogs.Call) (*polkadot.TxResult, error) { return nil, tt.err }

		w := g.do(http.MethodPost, "/v1/blogs", g.token, gin.H{"slug": "new_blog", "name": "New"})
		assert.Equal(t, tt.status, w.Code)
		// only the fixture blog document is left
		assert.Equal(t, 1, g.store.Len())
	}
}

func TestUnknownOutcomeKeepsUpload(t *testing.T) {
	g := newGateway(t)
	g.chain.OnSubmit = func(*blogstest.Chain, blogs.Call) (*polkadot.TxResult, error) {
		return nil, fmt.Errorf("%w: context canceled", polkadot.ErrTxUnknown)
	}

	w := g.do(http.MethodPost, "/v1/blogs", g.token, gin.H{"slug": "new_blog", "name": "New"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 2, g.store.Len())
	assert.Empty(t, g.store.Removed())
}

func TestFollowBlog(t *testing.T) {
	g := newGateway(t)
	g.chain.OnSubmit = func(c *blogstest.Chain, call blogs.Call) (*polkadot.TxResult, error) {
		acc := c.Account()
		c.Set("blogFollowedByAccount", blogstest.Bool(call.Name == "blogs.followBlog"), acc[:], blogstest.ID(1))
		return &polkadot.TxResult{Block: "0x01"}, nil
	}

	w := g.do(http.MethodPost, "/v1/follow/blog/1", g.token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["active"])

	w = g.do(http.MethodGet, "/v1/accounts/"+g.signer.Address()+"/follow/blog/1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["active"])
	assert.Equal(t, "Unfollow blog", body["label"])

	w = g.do(http.MethodPost, "/v1/follow/account/"+g.signer.Address(), g.token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReactRejectsUnknownKind(t *testing.T) {
	g := newGateway(t)
	w := g.do(http.MethodPost, "/v1/posts/1/react", g.token, gin.H{"kind": "meh"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = g.do(http.MethodPost, "/v1/posts/1/react", g.token, gin.H{"kind": "up"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadOnlyGateway(t *testing.T) {
	g := newGateway(t)
	g.engine = New(Deps{
		Config: config.Config{JWTSecret: string(secret), SS58Prefix: 42},
		Chain:  g.chain,
		Store:  g.store,
	})

	w := g.do(http.MethodPost, "/v1/follow/blog/1", g.token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = g.do(http.MethodPost, "/v1/auth/challenge", "", gin.H{"address": g.signer.Address()})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{forms.FieldErrors{"name": "Name is required"}, http.StatusBadRequest},
		{badRequest{fmt.Errorf("bad")}, http.StatusBadRequest},
		{notFound("Post"), http.StatusNotFound},
		{fmt.Errorf("read: %w", ipfs.ErrNotFound), http.StatusBadGateway},
		{&ipfs.HTTPError{StatusCode: 500}, http.StatusBadGateway},
		{forms.ErrNothingChanged, http.StatusConflict},
		{widgets.ErrBusy, http.StatusConflict},
		{polkadot.ErrTxCancelled, http.StatusAccepted},
		{polkadot.ErrTxUnknown, http.StatusAccepted},
		{polkadot.ErrTxFailed, http.StatusUnprocessableEntity},
		{widgets.ErrReadOnly, http.StatusServiceUnavailable},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusOf(tt.err), tt.err.Error())
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Unix(1000, 0)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))

	now = now.Add(time.Minute)
	assert.True(t, rl.Allow("a"))
	assert.NotContains(t, rl.requests, "b")

	assert.True(t, NewRateLimiter(0, time.Minute).Allow("a"))
}
