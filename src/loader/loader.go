package loader

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/metrics"
)

// Snapshot is the merged view of an entity at one point in time.
type Snapshot[S, C any] struct {
	State   State
	ID      string
	Struct  *S
	Content *C
	Err     error
}

// Loader follows one entity: its on-chain struct and the off-chain document it references.
type Loader[S, C any] struct {
	id     string
	source Source[S]
	store  ipfs.Store
	hashOf func(S) string
	log    *zap.Logger
}

// New builds a loader. hashOf returns the content hash of a struct, or "" when it has no content.
func New[S, C any](id string, source Source[S], store ipfs.Store, hashOf func(S) string) *Loader[S, C] {
	return &Loader[S, C]{
		id:     id,
		source: source,
		store:  store,
		hashOf: hashOf,
		log:    zap.L().Named("loader").With(zap.String("entity", id)),
	}
}

type fetched[C any] struct {
	gen     int
	content *C
	err     error
}

// Run follows the entity until ctx is done. It emits Unresolved first and then one snapshot per
// transition. The content fetch is keyed by hash: a new hash cancels the running fetch and starts
// another, an unchanged hash keeps the content already loaded. The channel closes when ctx ends or
// the chain subscription fails (after a Failed snapshot).
func (l *Loader[S, C]) Run(ctx context.Context) <-chan Snapshot[S, C] {
	out := make(chan Snapshot[S, C])

	go func() {
		defer close(out)
		metrics.ActiveSubscriptions.Inc()
		defer metrics.ActiveSubscriptions.Dec()

		emit := func(s Snapshot[S, C]) bool {
			s.ID = l.id
			select {
			case out <- s:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit(Snapshot[S, C]{State: Unresolved}) {
			return
		}

		updates, err := l.source.Watch(ctx)
		if err != nil {
			l.log.Warn("subscribe failed", zap.Error(err))
			emit(Snapshot[S, C]{State: Failed, Err: err})
			return
		}

		var (
			cur      *S
			hash     string
			content  *C
			fetchErr error
			pending  bool
			gen      int
		)
		cancel := context.CancelFunc(func() {})
		defer func() { cancel() }()
		results := make(chan fetched[C], 1)

		snapshot := func() Snapshot[S, C] {
			switch {
			case cur == nil:
				return Snapshot[S, C]{State: Absent}
			case pending:
				return Snapshot[S, C]{State: Partial, Struct: cur}
			case fetchErr != nil:
				return Snapshot[S, C]{State: Failed, Struct: cur, Err: fetchErr}
			}
			return Snapshot[S, C]{State: Full, Struct: cur, Content: content}
		}

		for {
			select {
			case <-ctx.Done():
				return

			case u, ok := <-updates:
				if !ok {
					return
				}
				if u.Err != nil {
					l.log.Warn("chain update failed", zap.Error(u.Err))
					emit(Snapshot[S, C]{State: Failed, Struct: cur, Content: content, Err: u.Err})
					return
				}

				cur = u.Value
				next := ""
				if cur != nil {
					next = l.hashOf(*cur)
				}
				if cur == nil || next != hash {
					cancel()
					cancel = func() {}
					gen++
					hash, content, fetchErr, pending = next, nil, nil, false

					if next != "" {
						pending = true
						var fctx context.Context
						fctx, cancel = context.WithCancel(ctx)
						go l.fetch(fctx, gen, next, results)
					}
				}
				if !emit(snapshot()) {
					return
				}

			case r := <-results:
				if r.gen != gen {
					// superseded by a newer hash
					continue
				}
				pending = false
				content, fetchErr = r.content, r.err
				if r.err != nil {
					l.log.Warn("content fetch failed", zap.String("hash", hash), zap.Error(r.err))
				}
				if !emit(snapshot()) {
					return
				}
			}
		}
	}()

	return out
}

func (l *Loader[S, C]) fetch(ctx context.Context, gen int, hash string, results chan<- fetched[C]) {
	c, err := ipfs.Fetch[C](ctx, l.store, hash)
	if ctx.Err() != nil {
		return
	}
	select {
	case results <- fetched[C]{gen: gen, content: c, err: err}:
	case <-ctx.Done():
	}
}

// Load resolves the struct once and then its content, returning the final snapshot.
func (l *Loader[S, C]) Load(ctx context.Context) Snapshot[S, C] {
	v, err := l.source.Get(ctx)
	if err != nil {
		return Snapshot[S, C]{ID: l.id, State: Failed, Err: fmt.Errorf("load %s: %w", l.id, err)}
	}
	if v == nil {
		return Snapshot[S, C]{ID: l.id, State: Absent}
	}

	hash := l.hashOf(*v)
	if hash == "" {
		return Snapshot[S, C]{ID: l.id, State: Full, Struct: v}
	}
	c, err := ipfs.Fetch[C](ctx, l.store, hash)
	if err != nil {
		l.log.Warn("content fetch failed", zap.String("hash", hash), zap.Error(err))
		return Snapshot[S, C]{ID: l.id, State: Failed, Struct: v, Err: err}
	}
	return Snapshot[S, C]{ID: l.id, State: Full, Struct: v, Content: c}
}
