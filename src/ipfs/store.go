package ipfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

var ErrNotFound = errors.New("content not found")

// Store is a content-addressed document store. Documents are JSON; Get returns the exact bytes
// that were added under the hash.
type Store interface {
	Add(ctx context.Context, doc any) (string, error)
	GetRaw(ctx context.Context, hash string) ([]byte, error)
	Remove(ctx context.Context, hash string) error
}

// HTTPError represents a non-2xx response from the content API
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	if len(e.Body) > 0 && len(e.Body) < 200 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Get fetches a document and unmarshals it into out.
func Get(ctx context.Context, s Store, hash string, out any) error {
	raw, err := s.GetRaw(ctx, hash)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", hash, err)
	}
	return nil
}

// Fetch is the typed form of Get.
func Fetch[T any](ctx context.Context, s Store, hash string) (*T, error) {
	var v T
	if err := Get(ctx, s, hash, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Encode returns the canonical bytes stored for doc.
func Encode(doc any) ([]byte, error) {
	switch d := doc.(type) {
	case json.RawMessage:
		return d, nil
	case []byte:
		return d, nil
	}
	return json.Marshal(doc)
}

// HashOf computes the CIDv0 ("Qm...") of content bytes.
func HashOf(raw []byte) (string, error) {
	mh, err := multihash.Sum(raw, multihash.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return cid.NewCidV0(mh).String(), nil
}

// ValidHash reports whether s parses as a content identifier.
func ValidHash(s string) bool {
	_, err := cid.Decode(s)
	return err == nil
}
