package api

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/df-blogs/src/api/config"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/keys"
	"github.com/stake-plus/df-blogs/src/widgets"
)

func TestReadOnlyApp(t *testing.T) {
	a := &App{Config: config.Config{SS58Prefix: 42}}
	assert.False(t, a.Viewer().SignedIn())

	_, err := a.Committer()
	assert.ErrorIs(t, err, widgets.ErrReadOnly)

	err = a.Serve(context.Background())
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestSignerViewer(t *testing.T) {
	signer, err := keys.NewSignerFromHex("0x"+strings.Repeat("22", 32), 42)
	require.NoError(t, err)
	a := &App{Config: config.Config{SS58Prefix: 42}, Signer: signer}

	v := a.Viewer()
	assert.True(t, v.SignedIn())
	assert.Equal(t, signer.Account(), v.Account)
}

func TestSweepUsesLedger(t *testing.T) {
	ctx := context.Background()
	store := ipfs.NewMemoryStore()
	hash, err := store.Add(ctx, map[string]string{"body": "orphan"})
	require.NoError(t, err)

	ledger := forms.NewMemoryLedger()
	_, err = ledger.Begin(ctx, forms.Upload{Hash: hash, Call: "blogs.createPost", Target: 3})
	require.NoError(t, err)

	a := &App{Config: config.Config{SweepAfter: -time.Minute}, Store: store, Ledger: ledger}
	n, err := a.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{hash}, store.Removed())
}

func TestRelayNeedsConfiguration(t *testing.T) {
	a := &App{Config: config.Config{SS58Prefix: 42}}
	_, err := a.Relay()
	assert.ErrorContains(t, err, "DISCORD_TOKEN")

	a.Config.DiscordToken, a.Config.DiscordChannelID = "token", "123"
	_, err = a.Relay()
	assert.ErrorContains(t, err, "REDIS_URL")

	a.Redis = redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer a.Redis.Close()
	_, err = a.Relay()
	assert.ErrorContains(t, err, "RELAY_ADDRESS")

	a.Config.RelayAddress = "5DfhGyQdFobKM8NsWvEeAKk5EQQgYe9AydgJ7rMB6E1EqRzV"
	r, err := a.Relay()
	require.NoError(t, err)
	assert.Equal(t, "123", r.ChannelID)
}
