package store

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Chain metadata lives in the scalar value namespace under reserved keys.
// Only the helpers below may write them.
var heightKey = []byte("height")

var reservedKeys = [][]byte{heightKey}

func isReservedKey(key []byte) bool {
	for _, reserved := range reservedKeys {
		if bytes.Equal(key, reserved) {
			return true
		}
	}
	return false
}

func encodeHeight(height uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, height)
	return b
}

func decodeHeight(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("%w: expected 8 bytes, got %d", ErrCorruptHeight, len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}
