package polkadot

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

// DefaultSS58Prefix is the generic Substrate address format.
const DefaultSS58Prefix uint16 = 42

var ErrInvalidAddress = errors.New("invalid ss58 address")

func ss58PrefixBytes(prefix uint16) []byte {
	if prefix < 64 {
		return []byte{byte(prefix)}
	}
	// two byte form
	first := byte((prefix&0xfc)>>2) | 0x40
	second := byte(prefix>>8) | byte((prefix&0x03)<<6)
	return []byte{first, second}
}

func ss58Checksum(payload []byte) []byte {
	h, _ := blake2b.New512(nil)
	h.Write([]byte("SS58PRE"))
	h.Write(payload)
	return h.Sum(nil)[:2]
}

// SS58Encode converts a 32-byte public key to an SS58 address
func SS58Encode(pub [32]byte, prefix uint16) string {
	payload := append(ss58PrefixBytes(prefix), pub[:]...)
	return base58.Encode(append(payload, ss58Checksum(payload)...))
}

// SS58Decode returns the public key and network prefix of an address
func SS58Decode(address string) ([32]byte, uint16, error) {
	var pub [32]byte

	raw, err := base58.Decode(address)
	if err != nil {
		return pub, 0, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if len(raw) < 35 {
		return pub, 0, fmt.Errorf("%w: length %d", ErrInvalidAddress, len(raw))
	}

	prefixLen := 1
	prefix := uint16(raw[0])
	if raw[0]&0x40 != 0 {
		prefixLen = 2
		lower := (raw[0]&0x3f)<<2 | raw[1]>>6
		upper := raw[1] & 0x3f
		prefix = uint16(lower) | uint16(upper)<<8
	}
	if len(raw) != prefixLen+32+2 {
		return pub, 0, fmt.Errorf("%w: length %d", ErrInvalidAddress, len(raw))
	}

	payload := raw[:prefixLen+32]
	if !bytes.Equal(ss58Checksum(payload), raw[prefixLen+32:]) {
		return pub, 0, fmt.Errorf("%w: bad checksum", ErrInvalidAddress)
	}
	copy(pub[:], raw[prefixLen:prefixLen+32])
	return pub, prefix, nil
}
