package keys

import (
	"errors"
	"fmt"

	"github.com/ChainSafe/go-schnorrkel"

	"github.com/stake-plus/df-blogs/src/blogs"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

var ErrBadSignature = errors.New("signature verification failed")

// Verify checks an sr25519 signature of message by address. Browser wallets sign raw payloads
// wrapped in <Bytes>...</Bytes>; both forms are accepted.
func Verify(address, sigHex, message string) error {
	acc, err := blogs.ParseAccount(address)
	if err != nil {
		return err
	}

	sigBytes, err := polkadot.DecodeHex(sigHex)
	if err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}
	if len(sigBytes) != 64 {
		return fmt.Errorf("invalid signature length: %d", len(sigBytes))
	}

	var pk schnorrkel.PublicKey
	if err := pk.Decode(acc); err != nil {
		return fmt.Errorf("decode public key: %w", err)
	}
	var sigRaw [64]byte
	copy(sigRaw[:], sigBytes)
	var sig schnorrkel.Signature
	if err := sig.Decode(sigRaw); err != nil {
		return fmt.Errorf("decode signature: %w", err)
	}

	for _, m := range []string{message, "<Bytes>" + message + "</Bytes>"} {
		ok, err := pk.Verify(&sig, schnorrkel.NewSigningContext(signingContext, []byte(m)))
		if err == nil && ok {
			return nil
		}
	}
	return ErrBadSignature
}
