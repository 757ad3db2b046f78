package forms

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/metrics"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

// Committer runs the upload-then-transact sequence for one signer.
type Committer struct {
	store  ipfs.Store
	tx     blogs.Submitter
	ledger Ledger
	log    *zap.Logger
}

// NewCommitter returns a committer. A nil ledger keeps the ledger in memory.
func NewCommitter(store ipfs.Store, tx blogs.Submitter, ledger Ledger) *Committer {
	if ledger == nil {
		ledger = NewMemoryLedger()
	}
	return &Committer{store: store, tx: tx, ledger: ledger, log: zap.L().Named("forms")}
}

// Commit uploads doc, builds the call from its hash and submits it. When doc is nil nothing is
// uploaded and build receives "". If the submission fails the upload is removed; a successful
// submission never removes it. When the outcome is unknown the upload stays pending and Sweep
// settles it against the chain later.
func (c *Committer) Commit(ctx context.Context, doc any, build func(hash string) blogs.Call) (*polkadot.TxResult, error) {
	if doc == nil {
		res, err := c.tx.Submit(ctx, build(""))
		return res, err
	}

	hash, err := c.store.Add(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("upload content: %w", err)
	}
	call := build(hash)

	entry, err := c.ledger.Begin(ctx, Upload{Hash: hash, Call: call.Name, Target: target(call)})
	if err != nil {
		c.compensate(ctx, hash, 0, "ledger")
		return nil, err
	}

	res, err := c.tx.Submit(ctx, call)
	if errors.Is(err, polkadot.ErrTxUnknown) {
		c.log.Warn("transaction outcome unknown, upload left pending",
			zap.String("hash", hash), zap.String("call", call.Name), zap.Uint64("upload", entry), zap.Error(err))
		return nil, err
	}
	if err != nil {
		c.compensate(ctx, hash, entry, reason(err))
		return nil, err
	}

	if err := c.ledger.Finish(ctx, entry, UploadCommitted); err != nil {
		c.log.Warn("ledger update failed", zap.Uint64("upload", entry), zap.Error(err))
	}
	return res, nil
}

// target is the first id argument of a call: the entity an update changes or the parent a
// create lands under.
func target(call blogs.Call) uint64 {
	if len(call.Args) > 0 {
		if id, ok := call.Args[0].(uint64); ok {
			return id
		}
	}
	return 0
}

func reason(err error) string {
	switch {
	case errors.Is(err, polkadot.ErrTxCancelled):
		return "cancelled"
	case errors.Is(err, polkadot.ErrTxFailed):
		return "failed"
	}
	return "error"
}

// compensate removes an upload whose transaction did not go through. It runs with a context
// detached from the caller's, which may be what cancelled the transaction.
func (c *Committer) compensate(ctx context.Context, hash string, entry uint64, why string) {
	ctx = context.WithoutCancel(ctx)
	metrics.ContentCompensations.WithLabelValues(why).Inc()
	if err := c.store.Remove(ctx, hash); err != nil {
		// left pending so Sweep retries it
		c.log.Warn("remove upload failed", zap.String("hash", hash), zap.String("reason", why), zap.Error(err))
		return
	}
	if entry == 0 {
		return
	}
	if err := c.ledger.Finish(ctx, entry, UploadCompensated); err != nil {
		c.log.Warn("ledger update failed", zap.Uint64("upload", entry), zap.Error(err))
	}
}

// Outcome identifies what a committed form created or changed.
type Outcome struct {
	ID      uint64 `json:"id,omitempty"`
	Address string `json:"address,omitempty"`
	Path    string `json:"path"`
	Block   string `json:"block"`
}
