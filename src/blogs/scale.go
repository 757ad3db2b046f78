package blogs

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// small helpers over the gsrpc scale decoder/encoder for the shapes the pallet uses

func readOption(d scale.Decoder) (bool, error) {
	b, err := d.ReadOneByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("invalid option byte %d", b)
}

func writeOption(e scale.Encoder, present bool) error {
	if present {
		return e.PushByte(1)
	}
	return e.PushByte(0)
}

func readLen(d scale.Decoder) (int, error) {
	n, err := d.DecodeUintCompact()
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || n.Int64() > 1<<24 {
		return 0, fmt.Errorf("sequence length %s too large", n)
	}
	return int(n.Int64()), nil
}

func writeLen(e scale.Encoder, n int) error {
	return e.EncodeUintCompact(*big.NewInt(int64(n)))
}

func readText(d scale.Decoder) (string, error) {
	n, err := readLen(d)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if err := d.Read(buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func writeText(e scale.Encoder, s string) error {
	if err := writeLen(e, len(s)); err != nil {
		return err
	}
	return e.Write([]byte(s))
}

func readOptionalText(d scale.Decoder) (*string, error) {
	ok, err := readOption(d)
	if err != nil || !ok {
		return nil, err
	}
	s, err := readText(d)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func writeOptionalText(e scale.Encoder, s *string) error {
	if err := writeOption(e, s != nil); err != nil || s == nil {
		return err
	}
	return writeText(e, *s)
}

func readOptionalU64(d scale.Decoder) (*uint64, error) {
	ok, err := readOption(d)
	if err != nil || !ok {
		return nil, err
	}
	var v uint64
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	return &v, nil
}

func writeOptionalU64(e scale.Encoder, v *uint64) error {
	if err := writeOption(e, v != nil); err != nil || v == nil {
		return err
	}
	return e.Encode(*v)
}

func readAccounts(d scale.Decoder) ([]AccountID, error) {
	n, err := readLen(d)
	if err != nil {
		return nil, err
	}
	out := make([]AccountID, n)
	for i := range out {
		if err := out[i].Decode(d); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func writeAccounts(e scale.Encoder, accs []AccountID) error {
	if err := writeLen(e, len(accs)); err != nil {
		return err
	}
	for _, a := range accs {
		if err := a.Encode(e); err != nil {
			return err
		}
	}
	return nil
}

type decodable[T any] interface {
	*T
	Decode(scale.Decoder) error
}

// decodeValue decodes raw storage bytes into a value with a Decode method.
func decodeValue[T any, P decodable[T]](raw []byte) (*T, error) {
	var v T
	d := scale.NewDecoder(bytes.NewReader(raw))
	if err := P(&v).Decode(*d); err != nil {
		return nil, err
	}
	return &v, nil
}

type encodable interface {
	Encode(scale.Encoder) error
}

func encodeValue(v encodable) ([]byte, error) {
	var buf bytes.Buffer
	if err := v.Encode(*scale.NewEncoder(&buf)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
