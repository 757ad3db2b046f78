package keys

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tyler-smith/go-bip39"
	"go.uber.org/zap"
)

var ErrWorkerClosed = errors.New("mnemonic worker closed")

// NewAccount is a freshly generated key.
type NewAccount struct {
	Mnemonic string `json:"mnemonic"`
	Address  string `json:"address"`
}

type mnemonicRequest struct {
	prefix uint16
	reply  chan mnemonicReply
}

type mnemonicReply struct {
	account NewAccount
	err     error
}

// MnemonicWorker generates 12 word mnemonics on its own goroutine. Callers only exchange messages
// with it.
type MnemonicWorker struct {
	requests chan mnemonicRequest
	done     chan struct{}
	stopped  chan struct{}
	once     sync.Once
	log      *zap.Logger
}

func NewMnemonicWorker() *MnemonicWorker {
	w := &MnemonicWorker{
		requests: make(chan mnemonicRequest),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		log:      zap.L().Named("keys"),
	}
	go w.loop()
	return w
}

func (w *MnemonicWorker) loop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.done:
			return
		case req := <-w.requests:
			acc, err := GenerateAccount(req.prefix)
			if err != nil {
				w.log.Error("generate mnemonic failed", zap.Error(err))
			}
			req.reply <- mnemonicReply{account: acc, err: err}
		}
	}
}

// Generate asks the worker for a new account.
func (w *MnemonicWorker) Generate(ctx context.Context, prefix uint16) (NewAccount, error) {
	req := mnemonicRequest{prefix: prefix, reply: make(chan mnemonicReply, 1)}
	select {
	case w.requests <- req:
	case <-w.done:
		return NewAccount{}, ErrWorkerClosed
	case <-ctx.Done():
		return NewAccount{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.account, r.err
	case <-ctx.Done():
		return NewAccount{}, ctx.Err()
	}
}

// Close stops the worker and waits for it to exit. It is safe to call more than once.
func (w *MnemonicWorker) Close() {
	w.once.Do(func() { close(w.done) })
	<-w.stopped
}

// GenerateAccount creates a 12 word mnemonic and the address it derives.
func GenerateAccount(prefix uint16) (NewAccount, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return NewAccount{}, fmt.Errorf("entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return NewAccount{}, fmt.Errorf("mnemonic: %w", err)
	}
	s, err := NewSignerFromMnemonic(mnemonic, prefix)
	if err != nil {
		return NewAccount{}, err
	}
	return NewAccount{Mnemonic: mnemonic, Address: s.Address()}, nil
}
