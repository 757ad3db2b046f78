package polkadot

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/crypto/blake2b"
)

// StorageItem describes one storage entry of a pallet and the hashers applied to its keys.
type StorageItem struct {
	Pallet  string
	Name    string
	Hashers []Hasher
}

// Key builds the full storage key for the item. Each param is an already SCALE-encoded key part.
// An item declared with a single hasher but queried with several params is a tuple-keyed map:
// the parts are concatenated and hashed together.
func (s StorageItem) Key(params ...[]byte) ([]byte, error) {
	key := append(Twox128([]byte(s.Pallet)), Twox128([]byte(s.Name))...)

	switch {
	case len(params) == len(s.Hashers):
		for i, p := range params {
			key = append(key, s.Hashers[i].Hash(p)...)
		}
	case len(s.Hashers) == 1 && len(params) > 1:
		var tuple []byte
		for _, p := range params {
			tuple = append(tuple, p...)
		}
		key = append(key, s.Hashers[0].Hash(tuple)...)
	default:
		return nil, fmt.Errorf("%s.%s: expected %d key params, got %d", s.Pallet, s.Name, len(s.Hashers), len(params))
	}
	return key, nil
}

// StorageKey creates a hex storage key for a plain (unkeyed) item
func StorageKey(pallet, item string) string {
	key := append(Twox128([]byte(pallet)), Twox128([]byte(item))...)
	return "0x" + hex.EncodeToString(key)
}

// Twox128 implements the TwoX 128-bit hash
func Twox128(data []byte) []byte {
	hash1 := xxhash.NewS64(0)
	hash1.Write(data)
	hash2 := xxhash.NewS64(1)
	hash2.Write(data)

	out := make([]byte, 16)
	binary.LittleEndian.PutUint64(out[0:], hash1.Sum64())
	binary.LittleEndian.PutUint64(out[8:], hash2.Sum64())
	return out
}

// Twox256 implements the TwoX 256-bit hash
func Twox256(data []byte) []byte {
	out := make([]byte, 32)
	for i := 0; i < 4; i++ {
		h := xxhash.NewS64(uint64(i))
		h.Write(data)
		binary.LittleEndian.PutUint64(out[i*8:], h.Sum64())
	}
	return out
}

// Twox64 implements the TwoX 64-bit hash
func Twox64(data []byte) []byte {
	hash := xxhash.NewS64(0)
	hash.Write(data)
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, hash.Sum64())
	return out
}

// Blake2_128 implements Blake2b 128-bit hash
func Blake2_128(data []byte) []byte {
	// only fails for sizes outside 1..64
	h, _ := blake2b.New(16, nil)
	h.Write(data)
	return h.Sum(nil)
}

// Blake2_256 implements Blake2b 256-bit hash
func Blake2_256(data []byte) []byte {
	sum := blake2b.Sum256(data)
	return sum[:]
}

// Hasher transforms an encoded key part into its storage-key form.
type Hasher interface {
	Hash(data []byte) []byte
}

type Blake2_128Concat struct{}

func (Blake2_128Concat) Hash(data []byte) []byte {
	return append(Blake2_128(data), data...)
}

type Twox64Concat struct{}

func (Twox64Concat) Hash(data []byte) []byte {
	return append(Twox64(data), data...)
}

// HashFunc adapts a plain, non-reversible hash to a Hasher.
type HashFunc func([]byte) []byte

func (f HashFunc) Hash(data []byte) []byte { return f(data) }

// Identity hasher (no hashing)
type Identity struct{}

func (Identity) Hash(data []byte) []byte {
	return data
}

// EncodeU64 returns the SCALE encoding of an id key part.
func EncodeU64(v uint64) []byte {
	out := make([]byte, 8)
	binary.LittleEndian.PutUint64(out, v)
	return out
}

// EncodeU32 returns the SCALE encoding of a u32 key part.
func EncodeU32(v uint32) []byte {
	out := make([]byte, 4)
	binary.LittleEndian.PutUint32(out, v)
	return out
}

// EncodeAccount decodes an SS58 address into its 32-byte key part.
func EncodeAccount(address string) ([]byte, error) {
	pub, _, err := SS58Decode(address)
	if err != nil {
		return nil, err
	}
	return pub[:], nil
}
