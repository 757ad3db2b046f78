// Package widgets implements the follow, share and vote actions shown next to blogs, posts,
// comments and accounts. Each action reads its state from the chain, submits the transaction
// the state implies and reads the state again.
package widgets

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/blogs"
)

var (
	ErrBusy      = errors.New("another action on this item is in progress")
	ErrReadOnly  = errors.New("no signer configured")
	ErrNotFound  = errors.New("item not found")
	ErrOwnAction = errors.New("cannot follow your own account")
)

// Widgets builds actions for one account. Actions built from the same Widgets share the
// in-flight guard, so a second press on the same item fails with ErrBusy until the first is done.
type Widgets struct {
	q     blogs.Querier
	tx    blogs.Submitter
	guard *guard
	log   *zap.Logger
}

// New returns widgets acting through tx. tx may be nil for read-only use.
func New(q blogs.Querier, tx blogs.Submitter) *Widgets {
	return &Widgets{
		q:     q,
		tx:    tx,
		guard: &guard{inFlight: make(map[string]struct{})},
		log:   zap.L().Named("widgets"),
	}
}

func (w *Widgets) signer() (blogs.Submitter, error) {
	if w.tx == nil {
		return nil, ErrReadOnly
	}
	return w.tx, nil
}

type guard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func (g *guard) acquire(key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inFlight[key]; ok {
		return nil, fmt.Errorf("%w: %s", ErrBusy, key)
	}
	g.inFlight[key] = struct{}{}
	return func() {
		g.mu.Lock()
		delete(g.inFlight, key)
		g.mu.Unlock()
	}, nil
}
