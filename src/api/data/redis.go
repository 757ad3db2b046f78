package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	noncePrefix  = "nonce:"
	cursorPrefix = "relay:cursor:"

	NonceTTL = 5 * time.Minute
)

// ErrNoNonce means the challenge expired or was already used.
var ErrNoNonce = errors.New("challenge expired")

func Redis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return redis.NewClient(opt), nil
}

// Nonces keeps auth challenges in Redis, one per address.
type Nonces struct {
	rdb *redis.Client
}

func NewNonces(rdb *redis.Client) *Nonces {
	return &Nonces{rdb: rdb}
}

func (n *Nonces) SetNonce(ctx context.Context, addr, nonce string) error {
	return n.rdb.Set(ctx, noncePrefix+addr, nonce, NonceTTL).Err()
}

// TakeNonce returns the pending challenge of addr and deletes it.
func (n *Nonces) TakeNonce(ctx context.Context, addr string) (string, error) {
	nonce, err := n.rdb.GetDel(ctx, noncePrefix+addr).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoNonce
	}
	return nonce, err
}

// Cursor remembers the last relayed activity id per relay key.
type Cursor struct {
	rdb *redis.Client
	key string
}

func NewCursor(rdb *redis.Client, key string) *Cursor {
	return &Cursor{rdb: rdb, key: cursorPrefix + key}
}

func (c *Cursor) Load(ctx context.Context) (string, error) {
	v, err := c.rdb.Get(ctx, c.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (c *Cursor) Save(ctx context.Context, id string) error {
	return c.rdb.Set(ctx, c.key, id, 0).Err()
}
