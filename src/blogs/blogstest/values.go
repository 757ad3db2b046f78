package blogstest

import (
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/stake-plus/df-blogs/src/blogs"
)

// Encodable storage values that have no pallet struct of their own.

type Bool bool

func (b Bool) Encode(e scale.Encoder) error {
	if b {
		return e.PushByte(1)
	}
	return e.PushByte(0)
}

type U64 uint64

func (v U64) Encode(e scale.Encoder) error { return e.Encode(uint64(v)) }

type IDs []uint64

func (l IDs) Encode(e scale.Encoder) error {
	if err := e.EncodeUintCompact(*big.NewInt(int64(len(l)))); err != nil {
		return err
	}
	for _, id := range l {
		if err := e.Encode(id); err != nil {
			return err
		}
	}
	return nil
}

type Accounts []blogs.AccountID

func (l Accounts) Encode(e scale.Encoder) error {
	if err := e.EncodeUintCompact(*big.NewInt(int64(len(l)))); err != nil {
		return err
	}
	for _, a := range l {
		if err := a.Encode(e); err != nil {
			return err
		}
	}
	return nil
}
