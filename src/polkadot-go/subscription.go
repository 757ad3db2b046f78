package polkadot

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.uber.org/zap"
)

// Update is one observed value of a storage item. Present is false when the item was removed or
// never set.
type Update struct {
	Block   string
	Raw     []byte
	Present bool
}

// Subscription streams updates of a single storage item in block order.
type Subscription struct {
	updates chan Update
	errs    chan error
	cancel  func()
	once    sync.Once
}

// NewSubscription wires a subscription from externally produced channels. cancel is called once on
// Unsubscribe.
func NewSubscription(updates chan Update, errs chan error, cancel func()) *Subscription {
	return &Subscription{updates: updates, errs: errs, cancel: cancel}
}

func (s *Subscription) Chan() <-chan Update { return s.updates }

func (s *Subscription) Err() <-chan error { return s.errs }

func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// Subscribe watches a storage item. The node sends the current value first, then one update per
// block that changes it. The subscription ends when ctx is done or Unsubscribe is called.
func (c *Client) Subscribe(ctx context.Context, item string, params ...[]byte) (*Subscription, error) {
	key, err := c.itemKey(item, params...)
	if err != nil {
		return nil, err
	}

	sub, err := c.api.RPC.State.SubscribeStorageRaw([]types.StorageKey{types.NewStorageKey(key)})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", item, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	updates := make(chan Update)
	errs := make(chan error, 1)
	out := NewSubscription(updates, errs, cancel)

	go func() {
		defer sub.Unsubscribe()
		defer close(updates)
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-sub.Err():
				if !ok {
					return
				}
				c.log.Warn("storage subscription failed", zap.String("item", item), zap.Error(err))
				errs <- err
				return
			case set, ok := <-sub.Chan():
				if !ok {
					return
				}
				u, found := changeFor(set, key)
				if !found {
					continue
				}
				select {
				case updates <- u:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

func changeFor(set types.StorageChangeSet, key []byte) (Update, bool) {
	for _, ch := range set.Changes {
		if !bytes.Equal(ch.StorageKey, key) {
			continue
		}
		u := Update{Block: codec.HexEncodeToString(set.Block[:])}
		if ch.HasStorageData && len(ch.StorageData) > 0 {
			u.Raw = ch.StorageData
			u.Present = true
		}
		return u, true
	}
	return Update{}, false
}
