package blogs

import (
	"context"

	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"

	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

// Submitter sends a pallet call on behalf of one account.
type Submitter interface {
	Submit(ctx context.Context, call Call) (*polkadot.TxResult, error)
	Account() AccountID
}

// KeyringSigner is the sr25519 key used to sign extrinsics.
type KeyringSigner interface {
	KeyringPair() signature.KeyringPair
}

// Transactor submits calls through a chain client with a fixed signer.
type Transactor struct {
	client *polkadot.Client
	signer KeyringSigner
}

func NewTransactor(client *polkadot.Client, signer KeyringSigner) *Transactor {
	return &Transactor{client: client, signer: signer}
}

func (t *Transactor) Submit(ctx context.Context, call Call) (*polkadot.TxResult, error) {
	return t.client.Submit(ctx, t.signer.KeyringPair(), call.Name, call.Args...)
}

func (t *Transactor) Account() AccountID {
	var a AccountID
	copy(a[:], t.signer.KeyringPair().PublicKey)
	return a
}
