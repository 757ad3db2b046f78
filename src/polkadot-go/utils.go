package polkadot

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"
)

// DecodeHex decodes a hex string to bytes
func DecodeHex(hexStr string) ([]byte, error) {
	cleaned := strings.TrimPrefix(hexStr, "0x")
	return hex.DecodeString(cleaned)
}

// AsUint64 converts a decoded event field (types.U64, uint32, ...) into a uint64
func AsUint64(v any) (uint64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return 0, fmt.Errorf("negative value %d", rv.Int())
		}
		return uint64(rv.Int()), nil
	}
	return 0, fmt.Errorf("value of type %T is not an integer", v)
}
