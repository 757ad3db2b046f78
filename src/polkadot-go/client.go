package polkadot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	gsrpc "github.com/centrifuge/go-substrate-rpc-client/v4"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.uber.org/zap"
)

// Client is a blogs-chain RPC client
type Client struct {
	api      *gsrpc.SubstrateAPI
	metadata *types.Metadata
	items    map[string]StorageItem
	log      *zap.Logger

	// guards metadata refresh after a runtime upgrade
	metaMu sync.RWMutex
	// held from nonce read until the node accepts the extrinsic
	submitMu sync.Mutex
	nonces   nonceTracker

	ss58Prefix uint16
}

// NewClient connects to a node and loads the latest runtime metadata
func NewClient(url string, ss58Prefix uint16) (*Client, error) {
	api, err := gsrpc.NewSubstrateAPI(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	meta, err := api.RPC.State.GetMetadataLatest()
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	c := &Client{
		api:        api,
		log:        zap.L().Named("polkadot"),
		ss58Prefix: ss58Prefix,
	}
	c.setMetadata(meta)
	return c, nil
}

func (c *Client) setMetadata(meta *types.Metadata) {
	items, missing := ResolveItems(meta)
	if len(missing) > 0 {
		c.log.Warn("storage items not in runtime metadata, using default hashers", zap.Strings("items", missing))
	}
	c.metaMu.Lock()
	c.metadata = meta
	c.items = items
	c.metaMu.Unlock()
}

// itemKey builds a storage key with the hashers of the connected runtime.
func (c *Client) itemKey(name string, params ...[]byte) ([]byte, error) {
	name = strings.TrimPrefix(name, "blogs.")
	c.metaMu.RLock()
	item, ok := c.items[name]
	c.metaMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown storage item %q", name)
	}
	return item.Key(params...)
}

// SS58Prefix returns the address format used to render accounts
func (c *Client) SS58Prefix() uint16 {
	return c.ss58Prefix
}

// Close closes the connection
func (c *Client) Close() error {
	// gsrpc owns the websocket; subscriptions are torn down individually
	return nil
}

func (c *Client) meta() *types.Metadata {
	c.metaMu.RLock()
	defer c.metaMu.RUnlock()
	return c.metadata
}

// RefreshMetadata reloads metadata, needed after a runtime upgrade changes call indices
func (c *Client) RefreshMetadata() error {
	meta, err := c.api.RPC.State.GetMetadataLatest()
	if err != nil {
		return fmt.Errorf("failed to get metadata: %w", err)
	}
	c.setMetadata(meta)
	return nil
}

// Query reads a storage item once. present is false when the node answered with no value.
func (c *Client) Query(ctx context.Context, item string, params ...[]byte) ([]byte, bool, error) {
	key, err := c.itemKey(item, params...)
	if err != nil {
		return nil, false, err
	}

	type result struct {
		raw types.StorageDataRaw
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		var raw types.StorageDataRaw
		ok, err := c.api.RPC.State.GetStorageLatest(types.NewStorageKey(key), &raw)
		done <- result{raw, ok, err}
	}()

	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return nil, false, fmt.Errorf("query %s: %w", item, r.err)
		}
		if !r.ok || len(r.raw) == 0 {
			return nil, false, nil
		}
		return r.raw, true, nil
	}
}

// BestBlock returns the hex hash of the latest block
func (c *Client) BestBlock() (string, error) {
	h, err := c.api.RPC.Chain.GetBlockHashLatest()
	if err != nil {
		return "", err
	}
	return codec.HexEncodeToString(h[:]), nil
}
