package loader

import (
	"context"

	"github.com/stake-plus/df-blogs/src/blogs"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

// Update is one observation of an on-chain value. Value is nil when the entity does not exist.
type Update[S any] struct {
	Value *S
	Err   error
}

// Source yields the on-chain struct of one entity.
type Source[S any] interface {
	// Watch streams the current value and every later change, in block order.
	Watch(ctx context.Context) (<-chan Update[S], error)
	// Get reads the current value once.
	Get(ctx context.Context) (*S, error)
}

// Watcher is the chain surface a ChainSource needs. *polkadot.Client implements it.
type Watcher interface {
	blogs.Querier
	Subscribe(ctx context.Context, item string, params ...[]byte) (*polkadot.Subscription, error)
}

// ChainSource reads one storage entry and decodes it with decode.
type ChainSource[S any] struct {
	chain  Watcher
	item   string
	params [][]byte
	decode func([]byte) (*S, error)
}

func FromChain[S any](chain Watcher, decode func([]byte) (*S, error), item string, params ...[]byte) *ChainSource[S] {
	return &ChainSource[S]{chain: chain, item: item, params: params, decode: decode}
}

func (s *ChainSource[S]) Get(ctx context.Context) (*S, error) {
	raw, ok, err := s.chain.Query(ctx, s.item, s.params...)
	if err != nil || !ok {
		return nil, err
	}
	return s.decode(raw)
}

func (s *ChainSource[S]) Watch(ctx context.Context) (<-chan Update[S], error) {
	sub, err := s.chain.Subscribe(ctx, s.item, s.params...)
	if err != nil {
		return nil, err
	}

	out := make(chan Update[S])
	go func() {
		defer close(out)
		defer sub.Unsubscribe()

		send := func(u Update[S]) bool {
			select {
			case out <- u:
				return true
			case <-ctx.Done():
				return false
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case err := <-sub.Err():
				send(Update[S]{Err: err})
				return
			case u, ok := <-sub.Chan():
				if !ok {
					return
				}
				var next Update[S]
				if u.Present {
					next.Value, next.Err = s.decode(u.Raw)
				}
				if !send(next) {
					return
				}
			}
		}
	}()
	return out, nil
}

// Sources for the blogs entities.

func BlogSource(chain Watcher, id uint64) *ChainSource[blogs.Blog] {
	return FromChain(chain, blogs.DecodeBlog, "blogById", polkadot.EncodeU64(id))
}

func PostSource(chain Watcher, id uint64) *ChainSource[blogs.Post] {
	return FromChain(chain, blogs.DecodePost, "postById", polkadot.EncodeU64(id))
}

func CommentSource(chain Watcher, id uint64) *ChainSource[blogs.Comment] {
	return FromChain(chain, blogs.DecodeComment, "commentById", polkadot.EncodeU64(id))
}

func AccountSource(chain Watcher, acc blogs.AccountID) *ChainSource[blogs.SocialAccount] {
	return FromChain(chain, blogs.DecodeSocialAccount, "socialAccountById", acc[:])
}
