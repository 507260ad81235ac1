package types

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// FeltLength is the size of a felt in its fixed-width big-endian form.
const FeltLength = 32

// feltPrime is the Stark field modulus, 2^251 + 17*2^192 + 1.
var feltPrime = uint256.MustFromHex("0x800000000000011000000000000000000000000000000000000000000000001")

// Felt is a Starknet field element. Hashes, addresses and most
// transaction fields are felts.
type Felt struct {
	v uint256.Int
}

func NewFelt(n uint64) Felt {
	var f Felt
	f.v.SetUint64(n)
	return f
}

// FeltFromHex parses a hex string with or without the "0x" prefix.
// Leading zeros are accepted.
func FeltFromHex(s string) (Felt, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return Felt{}, fmt.Errorf("invalid felt: empty hex string")
	}
	s = strings.TrimLeft(s, "0")
	if s == "" {
		s = "0"
	}
	v, err := uint256.FromHex("0x" + s)
	if err != nil {
		return Felt{}, fmt.Errorf("invalid felt %q: %w", s, err)
	}
	if !v.Lt(feltPrime) {
		return Felt{}, fmt.Errorf("invalid felt %q: value exceeds field modulus", s)
	}
	return Felt{v: *v}, nil
}

// FeltFromBytes decodes a big-endian value of at most 32 bytes.
func FeltFromBytes(b []byte) (Felt, error) {
	if len(b) > FeltLength {
		return Felt{}, fmt.Errorf("felt length must be at most %d bytes, got %d", FeltLength, len(b))
	}
	var f Felt
	f.v.SetBytes(b)
	if !f.v.Lt(feltPrime) {
		return Felt{}, fmt.Errorf("felt %s exceeds field modulus", f.v.Hex())
	}
	return f, nil
}

func (f Felt) IsZero() bool {
	return f.v.IsZero()
}

func (f Felt) Equal(other Felt) bool {
	return f.v.Eq(&other.v)
}

// Bytes returns the 32 byte big-endian form, used as a storage key.
func (f Felt) Bytes() []byte {
	b := f.v.Bytes32()
	return b[:]
}

// Uint64 returns the low 64 bits and whether the value fits in them.
func (f Felt) Uint64() (uint64, bool) {
	return f.v.Uint64(), f.v.IsUint64()
}

func (f Felt) String() string {
	return f.v.Hex()
}

func (f Felt) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("\"%s\"", f.String())), nil
}

func (f *Felt) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid felt json string: %s", data)
	}
	parsed, err := FeltFromHex(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// RandomFelt returns a uniformly random 248 bit felt.
func RandomFelt() Felt {
	b := make([]byte, FeltLength-1)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	f, err := FeltFromBytes(b)
	if err != nil {
		panic(err)
	}
	return f
}
