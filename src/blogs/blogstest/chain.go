// Package blogstest provides an in-memory blogs chain for tests.
package blogstest

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/stake-plus/df-blogs/src/blogs"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

// Chain stores encoded values by storage key and records submitted calls.
// OnSubmit, when set, decides the outcome of each submission and may mutate storage.
type Chain struct {
	mu        sync.Mutex
	values    map[string][]byte
	subs      map[string][]chan polkadot.Update
	block     int
	submitted []blogs.Call
	account   blogs.AccountID

	OnSubmit func(c *Chain, call blogs.Call) (*polkadot.TxResult, error)
}

func NewChain(account blogs.AccountID) *Chain {
	return &Chain{
		values:  make(map[string][]byte),
		subs:    make(map[string][]chan polkadot.Update),
		account: account,
	}
}

func key(item string, params ...[]byte) string {
	k, err := polkadot.ItemKey(item, params...)
	if err != nil {
		panic(err)
	}
	return hex.EncodeToString(k)
}

// Set stores a value and notifies subscribers.
func (c *Chain) Set(item string, v interface{ Encode(scale.Encoder) error }, params ...[]byte) {
	raw, err := blogs.Encode(v)
	if err != nil {
		panic(fmt.Sprintf("encode %s: %v", item, err))
	}
	c.SetRaw(item, raw, params...)
}

func (c *Chain) SetRaw(item string, raw []byte, params ...[]byte) {
	k := key(item, params...)
	c.mu.Lock()
	if raw == nil {
		delete(c.values, k)
	} else {
		c.values[k] = raw
	}
	c.block++
	u := polkadot.Update{Block: fmt.Sprintf("0x%064x", c.block), Raw: raw, Present: raw != nil}
	defer c.mu.Unlock()

	for _, ch := range c.subs[k] {
		select {
		case ch <- u:
		default:
		}
	}
}

func (c *Chain) Delete(item string, params ...[]byte) {
	c.SetRaw(item, nil, params...)
}

func (c *Chain) Query(ctx context.Context, item string, params ...[]byte) ([]byte, bool, error) {
	k, err := polkadot.ItemKey(item, params...)
	if err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.values[hex.EncodeToString(k)]
	return raw, ok, nil
}

// Subscribe delivers the current value first and then every Set on the same key. Updates are
// buffered so tests can Set without a reader.
func (c *Chain) Subscribe(ctx context.Context, item string, params ...[]byte) (*polkadot.Subscription, error) {
	if _, err := polkadot.ItemKey(item, params...); err != nil {
		return nil, err
	}
	k := key(item, params...)
	ch := make(chan polkadot.Update, 64)
	errs := make(chan error, 1)

	c.mu.Lock()
	raw, ok := c.values[k]
	ch <- polkadot.Update{Block: fmt.Sprintf("0x%064x", c.block), Raw: raw, Present: ok}
	c.subs[k] = append(c.subs[k], ch)
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	out := polkadot.NewSubscription(ch, errs, cancel)
	go func() {
		<-ctx.Done()
		c.mu.Lock()
		list := c.subs[k]
		for i, s := range list {
			if s == ch {
				c.subs[k] = append(list[:i], list[i+1:]...)
				break
			}
		}
		c.mu.Unlock()
		close(ch)
	}()
	return out, nil
}

func (c *Chain) Submit(ctx context.Context, call blogs.Call) (*polkadot.TxResult, error) {
	c.mu.Lock()
	c.submitted = append(c.submitted, call)
	fn := c.OnSubmit
	c.mu.Unlock()
	if fn == nil {
		return &polkadot.TxResult{Block: "0x01"}, nil
	}
	return fn(c, call)
}

func (c *Chain) Account() blogs.AccountID { return c.account }

// Submitted returns the calls sent so far.
func (c *Chain) Submitted() []blogs.Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]blogs.Call(nil), c.submitted...)
}

// Created returns a TxResult carrying a "Blogs.<event>" with (owner, id) arguments.
func Created(event string, owner blogs.AccountID, id uint64) *polkadot.TxResult {
	return &polkadot.TxResult{
		Block:  "0x02",
		Events: []polkadot.ChainEvent{{Name: "Blogs." + event, Args: []any{owner, id}}},
	}
}

// Account builds a deterministic account id from a single byte.
func Account(b byte) blogs.AccountID {
	var a blogs.AccountID
	for i := range a {
		a[i] = b
	}
	return a
}

func ID(v uint64) []byte { return polkadot.EncodeU64(v) }
