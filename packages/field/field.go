// Copyright 2020 IOTA Stiftung
// SPDX-License-Identifier: Apache-2.0

// Package field implements the fixed-width field values accepted by the
// profile-sharing contract interface, and the one-way encoding of display
// strings into such values.
//
// Values live in the BN254 scalar field: every Value is strictly less than
// Modulus(). On the contract wire they travel as ABI uint256.
package field

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/holiman/uint256"

	"github.com/iotaledger/hive.go/ierrors"
)

// Size is the byte length of the fixed-width representation of a Value.
const Size = 32

// ErrEncodingOverflow is returned when a value does not fit below the field modulus.
var ErrEncodingOverflow = ierrors.New("encoding overflow: value not below field modulus")

var modulus = fr.Modulus()

// Modulus returns a copy of the field modulus.
func Modulus() *big.Int {
	return new(big.Int).Set(modulus)
}

// Value is an element of the contract's native numeric field.
// The zero Value is the field element 0.
type Value struct {
	n uint256.Int
}

// Zero is the field element 0.
var Zero = Value{}

func FromUint64(x uint64) Value {
	var v Value
	v.n.SetUint64(x)
	return v
}

// FromBig range-checks b and converts it into a Value.
func FromBig(b *big.Int) (Value, error) {
	if b == nil {
		return Value{}, ierrors.New("nil field value")
	}
	if b.Sign() < 0 {
		return Value{}, ierrors.Wrapf(ErrEncodingOverflow, "negative value %s", b.String())
	}
	if b.Cmp(modulus) >= 0 {
		return Value{}, ierrors.Wrapf(ErrEncodingOverflow, "value 0x%s has %d bits", b.Text(16), b.BitLen())
	}
	var v Value
	v.n.SetFromBig(b)
	return v, nil
}

// FromHex parses a base-16 integer, with or without a 0x prefix.
func FromHex(s string) (Value, error) {
	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" {
		return Value{}, ierrors.New("empty hex literal")
	}
	b, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return Value{}, ierrors.Errorf("invalid hex literal %q", s)
	}
	return FromBig(b)
}

// FromBytes interprets b as a big-endian unsigned integer.
func FromBytes(b []byte) (Value, error) {
	return FromBig(new(big.Int).SetBytes(b))
}

// Encode maps a display string onto a field value: the UTF-8 bytes of s are
// rendered as hex and read back as a base-16 integer. The empty string is
// substituted by a single zero byte, so it encodes to 0.
//
// Strings of up to 31 bytes always fit. Longer strings fail with
// ErrEncodingOverflow once the integer reaches the modulus; they are never truncated.
func Encode(s string) (Value, error) {
	raw := []byte(s)
	if len(raw) == 0 {
		raw = []byte{0}
	}
	v, err := FromHex(hex.EncodeToString(raw))
	if err != nil {
		return Value{}, ierrors.Wrapf(err, "encoding %d-byte string", len(raw))
	}
	return v, nil
}

// MustEncode is Encode for compile-time constants. It panics on overflow.
func MustEncode(s string) Value {
	v, err := Encode(s)
	if err != nil {
		panic(err)
	}
	return v
}

// DecodeString reverses Encode for display purposes only. Leading NUL bytes
// of the original string cannot be recovered, so the result is exact only for
// strings that do not start with one. The on-ledger value is never the source
// of truth for display strings.
func DecodeString(v Value) string {
	b := v.n.Bytes()
	return string(b)
}

// Random returns a uniformly random field element, used as record nonce.
func Random() (Value, error) {
	var e fr.Element
	if _, err := e.SetRandom(); err != nil {
		return Value{}, ierrors.Wrap(err, "failed to sample random field element")
	}
	return FromBig(e.BigInt(new(big.Int)))
}

func (v Value) Big() *big.Int {
	return v.n.ToBig()
}

// Bytes32 returns the fixed-width big-endian representation.
func (v Value) Bytes32() [Size]byte {
	return v.n.Bytes32()
}

func (v Value) IsZero() bool {
	return v.n.IsZero()
}

func (v Value) Equal(other Value) bool {
	return v.n.Eq(&other.n)
}

// String returns the 0x-prefixed hex form without leading zeros.
func (v Value) String() string {
	return v.n.Hex()
}

func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Value) UnmarshalText(text []byte) error {
	parsed, err := FromHex(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
