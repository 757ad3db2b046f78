package polkadot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/centrifuge/go-substrate-rpc-client/v4/registry/retriever"
	"github.com/centrifuge/go-substrate-rpc-client/v4/rpc/author"
	regstate "github.com/centrifuge/go-substrate-rpc-client/v4/registry/state"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types"
	"github.com/centrifuge/go-substrate-rpc-client/v4/types/codec"
	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/metrics"
)

var (
	// ErrTxCancelled means the transaction never made it into a block
	ErrTxCancelled = errors.New("transaction cancelled")
	// ErrTxFailed means the transaction was included but dispatch failed
	ErrTxFailed = errors.New("transaction failed")
	// ErrTxUnknown means the transaction reached the node but its outcome was not observed;
	// it may still be included
	ErrTxUnknown = errors.New("transaction outcome unknown")
)

// ChainEvent is a decoded event emitted by the submitted extrinsic.
type ChainEvent struct {
	Name string
	Args []any
}

// TxResult describes a transaction included in a block.
type TxResult struct {
	Block  string
	Events []ChainEvent
}

// CallName converts "blogs.createBlog" into the metadata form "Blogs.create_blog".
func CallName(call string) (string, error) {
	module, method, ok := strings.Cut(call, ".")
	if !ok || module == "" || method == "" {
		return "", fmt.Errorf("malformed call %q", call)
	}

	var b strings.Builder
	for i, r := range method {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(module[:1]) + module[1:] + "." + b.String(), nil
}

// Submit signs and submits a call, waits for block inclusion and returns the events emitted by it.
func (c *Client) Submit(ctx context.Context, kp signature.KeyringPair, call string, args ...any) (*TxResult, error) {
	res, err := c.submit(ctx, kp, call, args...)
	switch {
	case err == nil:
		metrics.TxTotal.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrTxFailed):
		metrics.TxTotal.WithLabelValues("failed").Inc()
	case errors.Is(err, ErrTxUnknown):
		metrics.TxTotal.WithLabelValues("unknown").Inc()
	default:
		metrics.TxTotal.WithLabelValues("cancelled").Inc()
	}
	return res, err
}

func (c *Client) submit(ctx context.Context, kp signature.KeyringPair, call string, args ...any) (*TxResult, error) {
	name, err := CallName(call)
	if err != nil {
		return nil, err
	}
	meta := c.meta()

	tc, err := types.NewCall(meta, name, args...)
	if err != nil {
		return nil, fmt.Errorf("build call %s: %w", name, err)
	}
	ext := types.NewExtrinsic(tc)

	sub, encoded, nonce, err := c.signAndWatch(meta, kp, ext, name)
	if err != nil {
		return nil, err
	}
	defer sub.Unsubscribe()

	c.log.Info("extrinsic submitted", zap.String("call", name), zap.Uint32("nonce", nonce))

	for {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrTxUnknown, name, ctx.Err())
		case err := <-sub.Err():
			return nil, fmt.Errorf("%w: watch %s: %v", ErrTxUnknown, name, err)
		case status := <-sub.Chan():
			switch {
			case status.IsDropped, status.IsInvalid, status.IsUsurped:
				c.releaseNonce(kp.PublicKey, nonce)
				return nil, fmt.Errorf("%w: %s status %s", ErrTxCancelled, name, statusName(status))
			case status.IsInBlock:
				return c.inBlock(status.AsInBlock, encoded, name)
			}
		}
	}
}

// signAndWatch signs ext with the signer's next nonce and hands it to the node. Submissions
// are serialized per client so two calls never sign with the same nonce.
func (c *Client) signAndWatch(meta *types.Metadata, kp signature.KeyringPair, ext types.Extrinsic, name string) (*author.ExtrinsicStatusSubscription, string, uint32, error) {
	c.submitMu.Lock()
	defer c.submitMu.Unlock()

	rv, err := c.api.RPC.State.GetRuntimeVersionLatest()
	if err != nil {
		return nil, "", 0, fmt.Errorf("runtime version: %w", err)
	}
	genesis, err := c.api.RPC.Chain.GetBlockHash(0)
	if err != nil {
		return nil, "", 0, fmt.Errorf("genesis hash: %w", err)
	}
	var acc [32]byte
	copy(acc[:], kp.PublicKey)
	chainNonce, err := c.nonce(meta, acc)
	if err != nil {
		return nil, "", 0, err
	}
	nonce := c.nonces.next(acc, chainNonce)

	opts := types.SignatureOptions{
		BlockHash:          genesis,
		Era:                types.ExtrinsicEra{IsMortalEra: false},
		GenesisHash:        genesis,
		Nonce:              types.NewUCompactFromUInt(uint64(nonce)),
		SpecVersion:        rv.SpecVersion,
		Tip:                types.NewUCompactFromUInt(0),
		TransactionVersion: rv.TransactionVersion,
	}
	if err := ext.Sign(kp, opts); err != nil {
		return nil, "", 0, fmt.Errorf("sign %s: %w", name, err)
	}
	encoded, err := codec.EncodeToHex(ext)
	if err != nil {
		return nil, "", 0, fmt.Errorf("encode %s: %w", name, err)
	}

	sub, err := c.api.RPC.Author.SubmitAndWatchExtrinsic(ext)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: submit %s: %v", ErrTxCancelled, name, err)
	}
	c.nonces.used(acc, nonce)
	return sub, encoded, nonce, nil
}

// nonceTracker remembers the last nonce each account signed with, so a chain nonce that lags
// behind the pool is never reused. Callers hold Client.submitMu.
type nonceTracker struct {
	last map[[32]byte]uint32
}

func (t *nonceTracker) next(acc [32]byte, chain uint32) uint32 {
	if last, ok := t.last[acc]; ok && last >= chain {
		return last + 1
	}
	return chain
}

func (t *nonceTracker) used(acc [32]byte, nonce uint32) {
	if t.last == nil {
		t.last = make(map[[32]byte]uint32)
	}
	t.last[acc] = nonce
}

// release forgets nonce when it is still the latest, so the next submission does not leave a
// gap behind a transaction the pool threw away.
func (t *nonceTracker) release(acc [32]byte, nonce uint32) {
	if last, ok := t.last[acc]; ok && last == nonce {
		delete(t.last, acc)
	}
}

func (c *Client) releaseNonce(pub []byte, nonce uint32) {
	var acc [32]byte
	copy(acc[:], pub)
	c.submitMu.Lock()
	c.nonces.release(acc, nonce)
	c.submitMu.Unlock()
}

func statusName(s types.ExtrinsicStatus) string {
	switch {
	case s.IsDropped:
		return "dropped"
	case s.IsInvalid:
		return "invalid"
	case s.IsUsurped:
		return "usurped"
	}
	return "unknown"
}

// nonce asks the node for the account's next index, which counts transactions still in the
// pool. Nodes without that RPC fall back to the nonce in System.Account.
func (c *Client) nonce(meta *types.Metadata, acc [32]byte) (uint32, error) {
	var next uint64
	err := c.api.Client.Call(&next, "system_accountNextIndex", SS58Encode(acc, c.ss58Prefix))
	if err == nil {
		return uint32(next), nil
	}
	c.log.Debug("system_accountNextIndex unavailable", zap.Error(err))

	key, err := types.CreateStorageKey(meta, "System", "Account", acc[:])
	if err != nil {
		return 0, fmt.Errorf("account key: %w", err)
	}
	var info types.AccountInfo
	ok, err := c.api.RPC.State.GetStorageLatest(key, &info)
	if err != nil {
		return 0, fmt.Errorf("account info: %w", err)
	}
	if !ok {
		return 0, nil
	}
	return uint32(info.Nonce), nil
}

func (c *Client) inBlock(hash types.Hash, encoded, name string) (*TxResult, error) {
	blockHex := codec.HexEncodeToString(hash[:])

	block, err := c.api.RPC.Chain.GetBlock(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: get block %s: %v", ErrTxUnknown, blockHex, err)
	}
	index := -1
	for i, x := range block.Block.Extrinsics {
		if h, err := codec.EncodeToHex(x); err == nil && h == encoded {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, fmt.Errorf("%w: extrinsic %s not found in block %s", ErrTxUnknown, name, blockHex)
	}

	r, err := retriever.NewDefaultEventRetriever(regstate.NewEventProvider(c.api.RPC.State), c.api.RPC.State)
	if err != nil {
		return nil, fmt.Errorf("%w: event retriever: %v", ErrTxUnknown, err)
	}
	events, err := r.GetEvents(hash)
	if err != nil {
		return nil, fmt.Errorf("%w: events %s: %v", ErrTxUnknown, blockHex, err)
	}

	res := &TxResult{Block: blockHex}
	failed := false
	for _, ev := range events {
		if ev.Phase == nil || !ev.Phase.IsApplyExtrinsic || int(ev.Phase.AsApplyExtrinsic) != index {
			continue
		}
		ce := ChainEvent{Name: ev.Name}
		for _, f := range ev.Fields {
			ce.Args = append(ce.Args, f.Value)
		}
		if ev.Name == "System.ExtrinsicFailed" {
			failed = true
		}
		res.Events = append(res.Events, ce)
	}

	if failed {
		c.log.Warn("extrinsic failed", zap.String("call", name), zap.String("block", blockHex))
		return res, fmt.Errorf("%w: %s in block %s", ErrTxFailed, name, blockHex)
	}
	c.log.Info("extrinsic in block", zap.String("call", name), zap.String("block", blockHex), zap.Int("events", len(res.Events)))
	return res, nil
}
