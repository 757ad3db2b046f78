// Package keys holds sr25519 account keys: signing, signature checks and new mnemonics.
package keys

import (
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ChainSafe/go-schnorrkel"
	"github.com/centrifuge/go-substrate-rpc-client/v4/signature"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/pbkdf2"

	"github.com/stake-plus/df-blogs/src/blogs"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

var ErrNoSeed = errors.New("no signer seed configured")

// signingContext is the schnorrkel context substrate wallets sign raw messages with.
var signingContext = []byte("substrate")

// Signer is an sr25519 account key.
type Signer struct {
	secret  *schnorrkel.SecretKey
	public  [32]byte
	address string
	pair    signature.KeyringPair
}

// NewSigner accepts a 12 or 24 word mnemonic or a 0x-prefixed 32 byte mini secret.
func NewSigner(seed string, prefix uint16) (*Signer, error) {
	seed = strings.TrimSpace(seed)
	switch {
	case seed == "":
		return nil, ErrNoSeed
	case strings.HasPrefix(seed, "0x"):
		return NewSignerFromHex(seed, prefix)
	}
	return NewSignerFromMnemonic(seed, prefix)
}

// NewSignerFromMnemonic derives the key the way substrate wallets do: the mini secret is
// PBKDF2 of the mnemonic entropy, not of the phrase itself.
func NewSignerFromMnemonic(mnemonic string, prefix uint16) (*Signer, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("invalid seed phrase: %w", err)
	}
	seed := pbkdf2.Key(entropy, []byte("mnemonic"), 2048, 64, sha512.New)

	var mini [32]byte
	copy(mini[:], seed[:32])
	return newSigner(mini, prefix)
}

func NewSignerFromHex(hexKey string, prefix uint16) (*Signer, error) {
	raw, err := polkadot.DecodeHex(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode hex key: %w", err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("invalid key length: expected 32 bytes, got %d", len(raw))
	}
	var mini [32]byte
	copy(mini[:], raw)
	return newSigner(mini, prefix)
}

func newSigner(mini [32]byte, prefix uint16) (*Signer, error) {
	miniKey, err := schnorrkel.NewMiniSecretKeyFromRaw(mini)
	if err != nil {
		return nil, fmt.Errorf("create mini secret key: %w", err)
	}
	secret := miniKey.ExpandEd25519()
	pub, err := secret.Public()
	if err != nil {
		return nil, fmt.Errorf("get public key: %w", err)
	}

	pair, err := signature.KeyringPairFromSecret("0x"+hex.EncodeToString(mini[:]), prefix)
	if err != nil {
		return nil, fmt.Errorf("keyring pair: %w", err)
	}

	s := &Signer{secret: secret, public: pub.Encode(), pair: pair}
	s.address = polkadot.SS58Encode(s.public, prefix)
	return s, nil
}

// Sign signs message with the substrate signing context.
func (s *Signer) Sign(message []byte) ([]byte, error) {
	sig, err := s.secret.Sign(schnorrkel.NewSigningContext(signingContext, message))
	if err != nil {
		return nil, fmt.Errorf("sign message: %w", err)
	}
	encoded := sig.Encode()
	return encoded[:], nil
}

func (s *Signer) Address() string { return s.address }

func (s *Signer) Account() blogs.AccountID { return blogs.AccountID(s.public) }

// KeyringPair is the same key in the form the chain client signs extrinsics with.
func (s *Signer) KeyringPair() signature.KeyringPair { return s.pair }
